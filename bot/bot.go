package bot

import (
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/commands"
	hmod "modcase-bot/handlers/moderation"
	"modcase-bot/model"
	mod "modcase-bot/moderation"
	"modcase-bot/utils"
	"modcase-bot/utils/database"
)

// PagePrefix is the custom id prefix of every paginated message.
const PagePrefix = "page"

// CommandHandler runs one command for either invocation style.
type CommandHandler func(inv *utils.Invocation)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	config             atomic.Value // *model.Config

	Store    *database.Store
	AFK      *database.AFKStore
	Platform *hmod.Platform
	Service  *mod.Service
	Proofs   *mod.Correlator
	Pages    *utils.Paginator

	CommandHandlers map[string]CommandHandler
	Clickables      map[string]utils.Clickable
	Submittables    map[string]utils.Submittable

	scheduler *Scheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func New(cfg *model.Config, store *database.Store, afk *database.AFKStore) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	// Guild and role state is needed to resolve administrator permissions of prefix callers.
	dg.StateEnabled = true

	platform := hmod.NewPlatform(dg)
	svc := mod.NewService(mod.Deps{
		Configs:  store,
		Cases:    store,
		Members:  platform,
		Enforcer: platform,
		Notifier: platform,
		Limiter:  mod.NewLimiter(cfg.KickLimit, cfg.BanLimit, cfg.RateWindow),
	})
	svc.SetLogScanLimit(cfg.LogScanLimit)

	b := &Bot{
		Session:         dg,
		Store:           store,
		AFK:             afk,
		Platform:        platform,
		Service:         svc,
		Proofs:          mod.NewCorrelator(svc, cfg.ProofTimeout),
		Pages:           utils.NewPaginator(PagePrefix),
		CommandHandlers: make(map[string]CommandHandler),
		Clickables:      make(map[string]utils.Clickable),
		Submittables:    make(map[string]utils.Submittable),
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

// AddCommands registers command handlers by command name.
func (b *Bot) AddCommands(handlers map[string]func(inv *utils.Invocation)) {
	for name, h := range handlers {
		if _, ok := commands.Lookup(name); !ok {
			log.Warn().Str("command", name).Msg("handler for unregistered command")
		}
		b.CommandHandlers[name] = h
	}
}

func (b *Bot) AddClickables(cs ...utils.Clickable) {
	for _, c := range cs {
		b.Clickables[c.Prefix()] = c
	}
}

func (b *Bot) AddSubmittables(ss ...utils.Submittable) {
	for _, s := range ss {
		b.Submittables[s.Prefix()] = s
	}
}

// RefreshCommands overwrites the slash commands, in the dev guild when one is configured.
func (b *Bot) RefreshCommands() {
	cfg := b.GetConfig()
	cmds := commands.GenerateCommands()
	log.Info().Int("count", len(cmds)).Str("guild_id", cfg.DevGuildID).Msg("registering commands")
	registered, err := b.Session.ApplicationCommandBulkOverwrite(cfg.AppID, cfg.DevGuildID, cmds)
	if err != nil {
		log.Error().Err(err).Msg("cannot register commands")
		return
	}
	b.RegisteredCommands = registered
}

// UnregisterCommands removes the commands registered by RefreshCommands.
func (b *Bot) UnregisterCommands() {
	cfg := b.GetConfig()
	for _, c := range b.RegisteredCommands {
		if err := b.Session.ApplicationCommandDelete(cfg.AppID, cfg.DevGuildID, c.ID); err != nil {
			log.Warn().Err(err).Str("command", c.Name).Msg("cannot delete command")
		}
	}
	b.RegisteredCommands = nil
}

func (b *Bot) Close() {
	log.Info().Msg("gracefully shutting down")
	b.scheduler.Stop()
	b.Pages.Stop()
	b.Proofs.Stop()
	b.Service.Drain()
	if err := b.Session.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing session")
	}
}
