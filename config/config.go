package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"modcase-bot/model"
	"modcase-bot/moderation"
	"modcase-bot/utils/validate"
)

// DefaultConfigFile is the optional YAML file read on top of the defaults.
const DefaultConfigFile = "data/bot_config.yaml"

var defaults = map[string]any{
	"BOT_TOKEN":                  "",
	"APP_ID":                     "",
	"COMMAND_PREFIX":             ".",
	"DATABASE_PATH":              "data/moderation.db",
	"AFK_DB_PATH":                "data/afk.db",
	"LOG_LEVEL":                  "info",
	"ENVIRONMENT":                "production",
	"LOG_CHANNEL_ID":             "",
	"OWNER_IDS":                  "",
	"DEV_GUILD_ID":               "",
	"DISABLE_COMMAND_UNREGISTER": false,
	"KICK_LIMIT":                 moderation.DefaultActionLimit,
	"BAN_LIMIT":                  moderation.DefaultActionLimit,
	"RATE_WINDOW":                moderation.DefaultRateWindow,
	"PROOF_TIMEOUT":              moderation.DefaultProofTimeout,
	"PAGE_TIMEOUT":               60 * time.Second,
	"LOG_SCAN_LIMIT":             moderation.DefaultLogScanLimit,
}

// Load reads .env, the environment and the optional YAML file at configFile, in increasing
// order of precedence: defaults, YAML, environment.
func Load(configFile string) (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg(".env file not found, relying on environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", configFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", configFile, err)
		}
	}

	cfg := &model.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.OwnerIDs = cleanIDs(cfg.OwnerIDs)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.LogChannelID == "" {
		log.Warn().Msg("LOG_CHANNEL_ID not set, ops logging to Discord is disabled")
	}
	return cfg, nil
}

func cleanIDs(ids []string) []string {
	var out []string
	for _, raw := range ids {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}
