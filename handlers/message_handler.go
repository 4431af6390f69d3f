package handlers

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/bot"
	"modcase-bot/commands"
	"modcase-bot/handlers/afk"
	"modcase-bot/handlers/moderation"
	"modcase-bot/utils"
)

// messageRouter feeds guild messages to AFK tracking, proof correlation and prefix commands.
type messageRouter struct {
	b      *bot.Bot
	afk    *afk.Handler
	proofs *moderation.Handler
}

func (m *messageRouter) handleMessageCreate(s *discordgo.Session, msg *discordgo.MessageCreate) {
	defer recoverHandler(s, m.b, "message")

	if msg.Author == nil || msg.Author.Bot || msg.GuildID == "" {
		return
	}
	m.afk.HandleMessage(s, msg)
	m.proofs.HandleUpload(s, msg)

	cfg := m.b.GetConfig()
	pc, ok := utils.ParsePrefixCommand(msg.Content, cfg.CommandPrefix)
	if !ok {
		return
	}
	cmd, ok := commands.Lookup(pc.Name)
	if !ok || cmd.SlashOnly {
		return
	}
	if cmd.OwnerOnly && !cfg.IsOwner(msg.Author.ID) {
		return
	}
	h, ok := m.b.CommandHandlers[cmd.Name]
	if !ok {
		return
	}
	log.Debug().Str("command", cmd.Name).Str("guild_id", msg.GuildID).Str("user_id", msg.Author.ID).Msg("prefix command")
	h(utils.NewPrefixInvocation(s, msg, pc.Args))
}
