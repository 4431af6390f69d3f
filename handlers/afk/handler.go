package afk

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/commands"
	"modcase-bot/model"
	mod "modcase-bot/moderation"
	"modcase-bot/utils"
)

const (
	DefaultStatus   = "AFK"
	MaxStatusLength = 100
	MentionPageSize = 5
	MentionTimeout  = 300 * time.Second
)

var (
	ErrStatusLink     = errors.New("AFK status cannot contain links")
	ErrStatusRole     = errors.New("AFK status cannot contain role mentions")
	ErrStatusEveryone = errors.New("AFK status cannot contain @everyone or @here")
	ErrStatusLength   = fmt.Errorf("AFK status must be %d characters or less", MaxStatusLength)
)

// Store persists AFK statuses.
type Store interface {
	Set(status model.AFKStatus) error
	Get(userID string) (*model.AFKStatus, error)
	Clear(userID string) (*model.AFKStatus, error)
	AddMention(userID string, m model.AFKMention) (bool, error)
}

// ValidateStatus checks a requested status and returns the one to store.
func ValidateStatus(status string) (string, error) {
	status = strings.TrimSpace(status)
	switch {
	case status == "":
		return DefaultStatus, nil
	case strings.Contains(status, "http://") || strings.Contains(status, "https://"):
		return "", ErrStatusLink
	case strings.Contains(status, "<@&"):
		return "", ErrStatusRole
	case strings.Contains(status, "@everyone") || strings.Contains(status, "@here"):
		return "", ErrStatusEveryone
	case len([]rune(status)) > MaxStatusLength:
		return "", ErrStatusLength
	}
	return status, nil
}

// FormatAway renders how long someone has been away as "2h 5m" or "5m".
func FormatAway(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

type Handler struct {
	store Store
	pages *utils.Paginator
	now   func() time.Time
}

func NewHandler(store Store, pages *utils.Paginator) *Handler {
	return &Handler{store: store, pages: pages, now: time.Now}
}

func (h *Handler) Commands() map[string]func(inv *utils.Invocation) {
	return map[string]func(inv *utils.Invocation){
		"afk": h.SetAFK,
	}
}

// SetAFK marks the caller as away.
func (h *Handler) SetAFK(inv *utils.Invocation) {
	raw := inv.Args
	if inv.IsSlash() {
		raw = inv.OptionString(commands.OptStatus)
	}
	status, err := ValidateStatus(raw)
	if err != nil {
		inv.ReplyError(err.Error() + ".")
		return
	}
	err = h.store.Set(model.AFKStatus{UserID: inv.UserID(), Status: status, Since: h.now()})
	if err != nil {
		log.Error().Err(err).Str("user_id", inv.UserID()).Msg("failed to store AFK status")
		inv.ReplyError("Could not set your AFK status.")
		return
	}
	inv.Reply(fmt.Sprintf("✅ <@%s>, I've set your AFK status: %s", inv.UserID(), status))
}

// Notice is an AFK reply for a mentioned user.
type Notice struct {
	UserID string
	Text   string
}

// Return clears the author's status. It returns nil if they were not away.
func (h *Handler) Return(authorID string) (*model.AFKStatus, error) {
	return h.store.Clear(authorID)
}

// Mentioned records the mention for every away user in mentioned and returns their notices.
func (h *Handler) Mentioned(author *discordgo.User, mentioned []*discordgo.User, link string) []Notice {
	var notices []Notice
	seen := make(map[string]bool)
	for _, u := range mentioned {
		if u == nil || u.Bot || u.ID == author.ID || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		st, err := h.store.Get(u.ID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", u.ID).Msg("failed to read AFK status")
			continue
		}
		if st == nil {
			continue
		}
		notices = append(notices, Notice{
			UserID: u.ID,
			Text:   fmt.Sprintf("⭐ %s is currently AFK: %s (%s ago)", displayName(u), st.Status, FormatAway(h.now().Sub(st.Since))),
		})
		_, err = h.store.AddMention(u.ID, model.AFKMention{AuthorID: author.ID, AuthorName: author.Username, At: h.now(), Link: link})
		if err != nil {
			log.Warn().Err(err).Str("user_id", u.ID).Msg("failed to record AFK mention")
		}
	}
	return notices
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// MentionsEmbed renders one page of the mentions received while away.
func (h *Handler) MentionsEmbed(mentions []model.AFKMention, page, pages, total int) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, m := range mentions {
		fmt.Fprintf(&b, "%s · %s ago\n**Jump:** %s\n\n", m.AuthorName, FormatAway(h.now().Sub(m.At)), m.Link)
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("You have %d mention(s)", total),
		Description: b.String(),
		Color:       utils.ColorNeutral,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d/%d", page+1, pages)},
	}
}

// HandleMessage clears the author's AFK status and answers mentions of away users.
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	st, err := h.Return(m.Author.ID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", m.Author.ID).Msg("failed to clear AFK status")
	}
	if st != nil {
		reply(s, m, fmt.Sprintf("👋 Welcome back <@%s>! I removed your AFK. You were AFK for %s.", m.Author.ID, FormatAway(h.now().Sub(st.Since))), nil, nil)
		if len(st.Mentions) > 0 {
			h.sendMentions(s, m, st.Mentions)
		}
	}

	link := fmt.Sprintf("https://discord.com/channels/%s/%s/%s", m.GuildID, m.ChannelID, m.ID)
	for _, n := range h.Mentioned(m.Author, m.Mentions, link) {
		reply(s, m, n.Text, nil, nil)
	}
}

func (h *Handler) sendMentions(s *discordgo.Session, m *discordgo.MessageCreate, mentions []model.AFKMention) {
	pager := mod.NewPager(mentions, MentionPageSize)
	render := func(page int) *discordgo.MessageEmbed {
		return h.MentionsEmbed(pager.Page(page), page, pager.Pages(), pager.Len())
	}

	var sent *discordgo.Message
	onEnd := func(last *discordgo.MessageEmbed) {
		if sent == nil {
			return
		}
		embeds := []*discordgo.MessageEmbed{last}
		components := []discordgo.MessageComponent{}
		_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{ID: sent.ID, Channel: sent.ChannelID, Embeds: &embeds, Components: &components})
		if err != nil {
			log.Warn().Err(err).Msg("failed to remove AFK mention controls")
		}
	}
	_, view := h.pages.Start(m.Author.ID, pager.Pages(), MentionTimeout, render, onEnd)
	sent = reply(s, m, "", view.Embed, view.Components)
}

func reply(s *discordgo.Session, m *discordgo.MessageCreate, content string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) *discordgo.Message {
	send := &discordgo.MessageSend{
		Content:         content,
		Components:      components,
		Reference:       m.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{embed}
	}
	msg, err := s.ChannelMessageSendComplex(m.ChannelID, send)
	if err != nil {
		log.Warn().Err(err).Str("channel_id", m.ChannelID).Msg("failed to send AFK reply")
		return nil
	}
	return msg
}
