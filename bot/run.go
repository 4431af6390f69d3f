package bot

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"modcase-bot/utils"
)

// Run connects, registers commands and blocks until SIGINT or SIGTERM.
func (b *Bot) Run() error {
	if err := b.Session.Open(); err != nil {
		return err
	}

	b.RefreshCommands()
	b.scheduler.Start()

	cfg := b.GetConfig()
	log.Info().Str("prefix", cfg.CommandPrefix).Msg("bot is now running, press CTRL-C to exit")
	if err := utils.LogInfo(b.Session, cfg.LogChannelID, "System", "Startup", "Bot has started successfully."); err != nil {
		log.Warn().Err(err).Msg("cannot post startup message")
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if !cfg.DisableCommandUnregister {
		b.UnregisterCommands()
	}
	b.Close()
	return nil
}
