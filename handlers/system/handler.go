package system

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"modcase-bot/commands"
	"modcase-bot/utils"
)

// Gauges are live counters reported by the stats command.
type Gauges struct {
	PendingProofs func() int
	PageSessions  func() int
}

type Handler struct {
	started time.Time
	dbPaths []string
	prefix  string
	gauges  Gauges
}

func NewHandler(commandPrefix string, dbPaths []string, gauges Gauges) *Handler {
	return &Handler{started: time.Now(), dbPaths: dbPaths, prefix: commandPrefix, gauges: gauges}
}

func (h *Handler) Commands() map[string]func(inv *utils.Invocation) {
	return map[string]func(inv *utils.Invocation){
		"stats":       h.Stats,
		"membercount": h.MemberCount,
		"help":        h.Help,
	}
}

func fileSizeMB(paths []string) float64 {
	var total int64
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil {
			total += fi.Size()
		}
	}
	return float64(total) / 1024 / 1024
}

func gauge(f func() int) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%d", f())
}

// FormatUptime renders d as "3d 4h 5m".
func FormatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// Stats reports host and process statistics.
func (h *Handler) Stats(inv *utils.Invocation) {
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, err := cpu.Percent(0, false)
	if err != nil || len(cpuPercent) == 0 {
		cpuPercent = []float64{0}
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read memory stats")
		vm = &mem.VirtualMemoryStat{}
	}
	hostInfo, err := host.Info()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read host info")
		hostInfo = &host.InfoStat{}
	}
	var rssMB uint64
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			rssMB = mi.RSS / 1024 / 1024
		}
	}

	embed := &discordgo.MessageEmbed{
		Title: "System information",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion), Inline: true},
			{Name: "🔧 Kernel", Value: hostInfo.KernelVersion, Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU usage", Value: fmt.Sprintf("%.1f%%", cpuPercent[0]), Inline: true},
			{Name: "🧠 System memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024), Inline: true},
			{Name: "📦 Process memory", Value: fmt.Sprintf("%d MB", rssMB), Inline: true},
			{Name: "🗃️ Database size", Value: fmt.Sprintf("%.2f MB", fileSizeMB(h.dbPaths)), Inline: true},
			{Name: "⏱️ Gateway latency", Value: inv.Session.HeartbeatLatency().String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "🌍 Guilds", Value: fmt.Sprintf("%d", len(inv.Session.State.Guilds)), Inline: true},
			{Name: "⏳ Uptime", Value: FormatUptime(time.Since(h.started)), Inline: true},
			{Name: "📎 Pending proofs", Value: gauge(h.gauges.PendingProofs), Inline: true},
			{Name: "📄 Page sessions", Value: gauge(h.gauges.PageSessions), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "System monitor · " + time.Now().Format("15:04"),
		},
	}
	if _, err := inv.ReplyEmbed(embed, nil); err != nil {
		log.Error().Err(err).Msg("failed to send stats")
	}
}

// MemberCount shows the guild's member count.
func (h *Handler) MemberCount(inv *utils.Invocation) {
	if inv.GuildID == "" {
		inv.ReplyError("This command only works in a server.")
		return
	}
	guild, err := inv.Session.State.Guild(inv.GuildID)
	if err != nil || guild.MemberCount == 0 {
		guild, err = inv.Session.GuildWithCounts(inv.GuildID)
		if err != nil {
			log.Error().Err(err).Str("guild_id", inv.GuildID).Msg("failed to fetch guild")
			inv.ReplyError("Could not fetch the member count.")
			return
		}
	}
	count := guild.MemberCount
	if count == 0 {
		count = guild.ApproximateMemberCount
	}
	embed := &discordgo.MessageEmbed{
		Title:       guild.Name,
		Description: fmt.Sprintf("👥 **%d** members", count),
		Color:       utils.ColorInfo,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if icon := guild.IconURL("128"); icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: icon}
	}
	if _, err := inv.ReplyEmbed(embed, nil); err != nil {
		log.Error().Err(err).Msg("failed to send member count")
	}
}

// Help lists every command, or describes one.
func (h *Handler) Help(inv *utils.Invocation) {
	name := inv.Args
	if inv.IsSlash() {
		name = inv.OptionString(commands.OptCommand)
	}
	embed := commands.HelpEmbed(h.prefix)
	if name != "" {
		c, ok := commands.Lookup(name)
		if !ok {
			inv.ReplyError(fmt.Sprintf("Unknown command `%s`.", name))
			return
		}
		embed = commands.CommandEmbed(c, h.prefix)
	}
	if _, err := inv.ReplyEmbed(embed, nil); err != nil {
		log.Error().Err(err).Msg("failed to send help")
	}
}
