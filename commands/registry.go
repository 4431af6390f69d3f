package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"modcase-bot/model"
)

type Category string

const (
	CategoryModeration    Category = "Moderation"
	CategoryConfiguration Category = "Configuration"
	CategoryUtility       Category = "Utility"
)

// Categories lists categories in help order.
var Categories = []Category{CategoryModeration, CategoryConfiguration, CategoryUtility}

// Command describes one bot command. Slash registration, prefix dispatch and the help listing
// all read from the same entry.
type Command struct {
	Name        string
	Aliases     []string
	Category    Category
	Description string
	Usage       string
	// Kind is set for commands that create cases.
	Kind model.CaseKind
	// MaxTargets is the number of users a punishment command accepts.
	MaxTargets int
	SlashOnly  bool
	OwnerOnly  bool
	Slash      *discordgo.ApplicationCommand
}

var registry = []*Command{
	{
		Name: "warn", Aliases: []string{"w"}, Category: CategoryModeration, Kind: model.KindWarn, MaxTargets: 5,
		Description: "Warn users (up to 5)",
		Usage:       "{prefix}warn @user [@user...] ?r [reason]",
		Slash:       Warn,
	},
	{
		Name: "kick", Aliases: []string{"k"}, Category: CategoryModeration, Kind: model.KindKick, MaxTargets: 5,
		Description: "Kick users (up to 5, hourly limit)",
		Usage:       "{prefix}kick @user [@user...] ?r [reason]",
		Slash:       Kick,
	},
	{
		Name: "ban", Aliases: []string{"b"}, Category: CategoryModeration, Kind: model.KindBan, MaxTargets: 5,
		Description: "Ban users (up to 5, hourly limit)",
		Usage:       "{prefix}ban @user [@user...] ?r [reason]",
		Slash:       Ban,
	},
	{
		Name: "timeout", Aliases: []string{"t", "mute"}, Category: CategoryModeration, Kind: model.KindTimeout, MaxTargets: 5,
		Description: "Timeout users for a duration of at most 28 days",
		Usage:       "{prefix}timeout @user [@user...] <duration> ?r [reason]",
		Slash:       Timeout,
	},
	{
		Name: "unban", Aliases: []string{"ub"}, Category: CategoryModeration, Kind: model.KindUnban, MaxTargets: 1,
		Description: "Unban a user",
		Usage:       "{prefix}unban <user_id> ?r [reason]",
		Slash:       Unban,
	},
	{
		Name: "banrequest", Aliases: []string{"br", "request-ban"}, Category: CategoryModeration, Kind: model.KindRequestBan, MaxTargets: 5,
		Description: "Request a ban for a moderator to approve",
		Usage:       "{prefix}banrequest @user [@user...] ?r <reason>",
		Slash:       BanRequest,
	},
	{
		Name: "case", Aliases: []string{"cases", "c"}, Category: CategoryModeration,
		Description: "View a case by id, a user's cases, or every case in the server",
		Usage:       "{prefix}case [case_id | @user]",
		Slash:       Case,
	},
	{
		Name: "modcases", Aliases: []string{"mymodcases", "mycases", "mc"}, Category: CategoryModeration,
		Description: "View cases you issued, or cases issued by another moderator",
		Usage:       "{prefix}modcases [@user]",
		Slash:       ModCases,
	},
	{
		Name: "editcase", Aliases: []string{"editc"}, Category: CategoryModeration,
		Description: "Edit the reason of a case or delete it",
		Usage:       "{prefix}editcase <case_id>",
		Slash:       EditCase,
	},
	{
		Name: "attachproofs", Category: CategoryModeration, SlashOnly: true,
		Description: "Attach proof images to a case you issued",
		Usage:       "/attachproofs <case_id>",
		Slash:       AttachProofs,
	},
	{
		Name: "punishment-panel", Category: CategoryModeration, SlashOnly: true,
		Description: "Post a panel for issuing punishments from a menu",
		Usage:       "/punishment-panel",
		Slash:       PunishmentPanel,
	},
	{
		Name: "config", Category: CategoryConfiguration, SlashOnly: true,
		Description: "Configure moderation roles and channels",
		Usage:       "/config",
		Slash:       Config,
	},
	{
		Name: "help", Aliases: []string{"h"}, Category: CategoryUtility,
		Description: "List commands",
		Usage:       "{prefix}help [command]",
		Slash:       Help,
	},
	{
		Name: "afk", Aliases: []string{"away"}, Category: CategoryUtility,
		Description: "Set an AFK status shown to people who mention you",
		Usage:       "{prefix}afk [status]",
		Slash:       AFK,
	},
	{
		Name: "membercount", Aliases: []string{"members"}, Category: CategoryUtility,
		Description: "Show the server member count",
		Usage:       "{prefix}membercount",
		Slash:       MemberCount,
	},
	{
		Name: "stats", Category: CategoryUtility, OwnerOnly: true,
		Description: "Show host and process statistics",
		Usage:       "{prefix}stats",
		Slash:       Stats,
	},
}

var index = buildIndex(registry)

func buildIndex(cmds []*Command) map[string]*Command {
	idx := make(map[string]*Command, len(cmds)*2)
	for _, c := range cmds {
		idx[c.Name] = c
		for _, a := range c.Aliases {
			idx[a] = c
		}
	}
	return idx
}

// All returns every command in registration order.
func All() []*Command {
	return registry
}

// Lookup finds a command by name or alias, ignoring case.
func Lookup(name string) (*Command, bool) {
	c, ok := index[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// InCategory returns the commands of one category in registration order.
func InCategory(cat Category) []*Command {
	var out []*Command
	for _, c := range registry {
		if c.Category == cat {
			out = append(out, c)
		}
	}
	return out
}

// UsageFor renders the usage line for a prefix.
func (c *Command) UsageFor(prefix string) string {
	return strings.ReplaceAll(c.Usage, "{prefix}", prefix)
}
