package handlers

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/bot"
	"modcase-bot/handlers/afk"
	"modcase-bot/handlers/moderation"
	"modcase-bot/handlers/settings"
	"modcase-bot/handlers/system"
)

// Register wires every feature handler into the bot and subscribes to gateway events.
func Register(b *bot.Bot) {
	cfg := b.GetConfig()

	modHandler := moderation.NewHandler(b.Service, b.Proofs, b.Platform, b.Pages, cfg.PageTimeout)
	settingsHandler := settings.NewHandler(b.Service, cfg.CommandPrefix)
	afkHandler := afk.NewHandler(b.AFK, b.Pages)
	systemHandler := system.NewHandler(cfg.CommandPrefix, []string{cfg.DatabasePath, cfg.AFKDatabasePath}, system.Gauges{
		PendingProofs: b.Proofs.Pending,
		PageSessions:  b.Pages.Active,
	})

	b.AddCommands(modHandler.Commands())
	b.AddCommands(settingsHandler.Commands())
	b.AddCommands(afkHandler.Commands())
	b.AddCommands(systemHandler.Commands())

	b.AddClickables(modHandler.Clickables()...)
	b.AddClickables(settingsHandler.Clickables()...)
	b.AddClickables(pageButtons{b.Pages})
	b.AddSubmittables(modHandler.Submittables()...)

	m := &messageRouter{b: b, afk: afkHandler, proofs: modHandler}
	addHandlers(b, m)
}

func addHandlers(b *bot.Bot, m *messageRouter) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("logged in")
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b)
	})
	b.Session.AddHandler(m.handleMessageCreate)
}
