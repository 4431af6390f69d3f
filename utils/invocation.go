package utils

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Invocation is one command call, made either as a slash command or as a prefix message.
// Replies go back the same way the command came in.
type Invocation struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Message     *discordgo.MessageCreate

	GuildID   string
	ChannelID string
	Author    *discordgo.User
	Member    *discordgo.Member
	// Args is the text after the command name of a prefix invocation.
	Args string

	deferred bool
	reply    *discordgo.Message
}

func NewSlashInvocation(s *discordgo.Session, i *discordgo.InteractionCreate) *Invocation {
	inv := &Invocation{
		Session:     s,
		Interaction: i,
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		Member:      i.Member,
		Author:      i.User,
	}
	if i.Member != nil {
		inv.Author = i.Member.User
	}
	return inv
}

func NewPrefixInvocation(s *discordgo.Session, m *discordgo.MessageCreate, args string) *Invocation {
	inv := &Invocation{
		Session:   s,
		Message:   m,
		Args:      args,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Author:    m.Author,
		Member:    m.Member,
	}
	if inv.Member != nil && inv.Member.User == nil {
		inv.Member.User = m.Author
	}
	return inv
}

func (inv *Invocation) IsSlash() bool {
	return inv.Interaction != nil
}

// UserID is the invoking user's id.
func (inv *Invocation) UserID() string {
	if inv.Author == nil {
		return ""
	}
	return inv.Author.ID
}

// Option returns a top-level slash option by name, or nil.
func (inv *Invocation) Option(name string) *discordgo.ApplicationCommandInteractionDataOption {
	if !inv.IsSlash() || inv.Interaction.Type != discordgo.InteractionApplicationCommand {
		return nil
	}
	for _, opt := range inv.Interaction.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

// OptionString returns a string option, or "" when absent.
func (inv *Invocation) OptionString(name string) string {
	if opt := inv.Option(name); opt != nil && opt.Type == discordgo.ApplicationCommandOptionString {
		return opt.StringValue()
	}
	return ""
}

// OptionUserID returns the id of a user option, or "" when absent.
func (inv *Invocation) OptionUserID(name string) string {
	if opt := inv.Option(name); opt != nil && opt.Type == discordgo.ApplicationCommandOptionUser {
		if u := opt.UserValue(nil); u != nil {
			return u.ID
		}
	}
	return ""
}

// Roles lists the invoking member's role ids.
func (inv *Invocation) Roles() []string {
	if inv.Member == nil {
		return nil
	}
	return inv.Member.Roles
}

// Defer acknowledges a slash command so the reply can take longer than the interaction deadline.
// For prefix commands it shows the typing indicator.
func (inv *Invocation) Defer() {
	if inv.IsSlash() {
		if inv.deferred {
			return
		}
		if err := DeferResponse(inv.Session, inv.Interaction, false); err != nil {
			log.Error().Err(err).Msg("error deferring interaction")
			return
		}
		inv.deferred = true
		return
	}
	_ = inv.Session.ChannelTyping(inv.ChannelID)
}

// Reply sends a plain text reply.
func (inv *Invocation) Reply(content string) {
	if _, err := inv.send(content, nil, nil); err != nil {
		log.Error().Err(err).Str("channel_id", inv.ChannelID).Msg("error sending reply")
	}
}

// ReplyError sends an error reply prefixed with ❌.
func (inv *Invocation) ReplyError(message string) {
	inv.Reply("❌ " + message)
}

// ReplyEmbed sends an embed with optional components and returns the sent message.
func (inv *Invocation) ReplyEmbed(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (*discordgo.Message, error) {
	return inv.send("", []*discordgo.MessageEmbed{embed}, components)
}

func (inv *Invocation) send(content string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) (*discordgo.Message, error) {
	var (
		msg *discordgo.Message
		err error
	)
	switch {
	case inv.IsSlash() && inv.deferred:
		edit := &discordgo.WebhookEdit{Content: &content}
		if embeds != nil {
			edit.Embeds = &embeds
		}
		if components != nil {
			edit.Components = &components
		}
		msg, err = inv.Session.InteractionResponseEdit(inv.Interaction.Interaction, edit)
	case inv.IsSlash():
		err = inv.Session.InteractionRespond(inv.Interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    content,
				Embeds:     embeds,
				Components: components,
			},
		})
		if err == nil {
			inv.deferred = true
			msg, err = inv.Session.InteractionResponse(inv.Interaction.Interaction)
		}
	default:
		msg, err = inv.Session.ChannelMessageSendComplex(inv.ChannelID, &discordgo.MessageSend{
			Content:         content,
			Embeds:          embeds,
			Components:      components,
			Reference:       inv.Message.Reference(),
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		})
	}
	if err != nil {
		return nil, err
	}
	inv.reply = msg
	return msg, nil
}

// Edit replaces the embed and components of the reply sent earlier.
func (inv *Invocation) Edit(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	embeds := []*discordgo.MessageEmbed{embed}
	if inv.IsSlash() {
		_, err := inv.Session.InteractionResponseEdit(inv.Interaction.Interaction, &discordgo.WebhookEdit{
			Embeds:     &embeds,
			Components: &components,
		})
		return err
	}
	if inv.reply == nil {
		return nil
	}
	_, err := inv.Session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         inv.reply.ID,
		Channel:    inv.reply.ChannelID,
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}
