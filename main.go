package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"modcase-bot/bot"
	"modcase-bot/config"
	"modcase-bot/handlers"
	"modcase-bot/utils"
	"modcase-bot/utils/database"
)

func main() {
	cfg, err := config.Load(config.DefaultConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}
	utils.InitLogger(cfg.LogLevel, cfg.Environment)

	for _, p := range []string{cfg.DatabasePath, cfg.AFKDatabasePath} {
		if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
			log.Fatal().Err(err).Str("path", p).Msg("failed to create data directory")
		}
	}

	store, err := database.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing database")
	}
	defer store.Close()

	afkStore, err := database.OpenAFKStore(cfg.AFKDatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening AFK store")
	}
	defer afkStore.Close()

	b, err := bot.New(cfg, store, afkStore)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating bot")
	}
	handlers.Register(b)

	if err := b.Run(); err != nil {
		log.Error().Err(err).Msg("bot stopped with an error")
	}
}
