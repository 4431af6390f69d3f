package model

import "time"

// Config holds the process-level settings loaded at startup.
type Config struct {
	BotToken                 string        `mapstructure:"BOT_TOKEN" validate:"required"`
	AppID                    string        `mapstructure:"APP_ID" validate:"required,numeric"`
	CommandPrefix            string        `mapstructure:"COMMAND_PREFIX" validate:"required,max=5"`
	DatabasePath             string        `mapstructure:"DATABASE_PATH" validate:"required"`
	AFKDatabasePath          string        `mapstructure:"AFK_DB_PATH" validate:"required"`
	LogLevel                 string        `mapstructure:"LOG_LEVEL"`
	Environment              string        `mapstructure:"ENVIRONMENT"`
	LogChannelID             string        `mapstructure:"LOG_CHANNEL_ID"`
	OwnerIDs                 []string      `mapstructure:"OWNER_IDS"`
	DevGuildID               string        `mapstructure:"DEV_GUILD_ID"`
	DisableCommandUnregister bool          `mapstructure:"DISABLE_COMMAND_UNREGISTER"`
	KickLimit                int           `mapstructure:"KICK_LIMIT" validate:"min=1"`
	BanLimit                 int           `mapstructure:"BAN_LIMIT" validate:"min=1"`
	RateWindow               time.Duration `mapstructure:"RATE_WINDOW" validate:"min=1s"`
	ProofTimeout             time.Duration `mapstructure:"PROOF_TIMEOUT" validate:"min=1s"`
	PageTimeout              time.Duration `mapstructure:"PAGE_TIMEOUT" validate:"min=1s"`
	LogScanLimit             int           `mapstructure:"LOG_SCAN_LIMIT" validate:"min=1,max=1000"`
}

// IsOwner reports whether userID may run owner-only commands.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ConfigField names a settable moderation configuration field.
type ConfigField string

const (
	FieldWarnMuteRequestRole ConfigField = "warn_mute_request_role"
	FieldKickBanRole         ConfigField = "kick_ban_role"
	FieldWhitelistRole       ConfigField = "whitelist_role"
	FieldLogChannel          ConfigField = "log_channel"
	FieldBanRequestChannel   ConfigField = "ban_request_channel"
	FieldActionProofsChannel ConfigField = "action_proofs_channel"
)

// ConfigFields lists every settable field.
var ConfigFields = []ConfigField{
	FieldWarnMuteRequestRole,
	FieldKickBanRole,
	FieldWhitelistRole,
	FieldLogChannel,
	FieldBanRequestChannel,
	FieldActionProofsChannel,
}

// Valid reports whether f is one of ConfigFields.
func (f ConfigField) Valid() bool {
	for _, field := range ConfigFields {
		if f == field {
			return true
		}
	}
	return false
}

// Label is the display name used in the config panel.
func (f ConfigField) Label() string {
	switch f {
	case FieldWarnMuteRequestRole:
		return "Warn/Mute/Request Role"
	case FieldKickBanRole:
		return "Kick/Ban Role"
	case FieldWhitelistRole:
		return "Staff Role"
	case FieldLogChannel:
		return "Log Channel"
	case FieldBanRequestChannel:
		return "Ban Request Channel"
	case FieldActionProofsChannel:
		return "Action Proofs Channel"
	}
	return string(f)
}

// IsChannel reports whether the field holds a channel id rather than a role id.
func (f ConfigField) IsChannel() bool {
	return f == FieldLogChannel || f == FieldBanRequestChannel || f == FieldActionProofsChannel
}

// GuildModerationConfig is the per-guild moderation setup. Stored in 'guild_moderation'.
type GuildModerationConfig struct {
	GuildID             string `db:"guild_id"`
	WarnMuteRequestRole string `db:"warn_mute_request_role"`
	KickBanRole         string `db:"kick_ban_role"`
	WhitelistRole       string `db:"whitelist_role"`
	LogChannel          string `db:"log_channel"`
	BanRequestChannel   string `db:"ban_request_channel"`
	ActionProofsChannel string `db:"action_proofs_channel"`
}

// Configured is true once all three role tiers are set.
func (c *GuildModerationConfig) Configured() bool {
	return c != nil && c.WarnMuteRequestRole != "" && c.KickBanRole != "" && c.WhitelistRole != ""
}

// Get returns the value of a field.
func (c *GuildModerationConfig) Get(f ConfigField) string {
	switch f {
	case FieldWarnMuteRequestRole:
		return c.WarnMuteRequestRole
	case FieldKickBanRole:
		return c.KickBanRole
	case FieldWhitelistRole:
		return c.WhitelistRole
	case FieldLogChannel:
		return c.LogChannel
	case FieldBanRequestChannel:
		return c.BanRequestChannel
	case FieldActionProofsChannel:
		return c.ActionProofsChannel
	}
	return ""
}

// MissingChannels lists the channel fields that are unset.
func (c *GuildModerationConfig) MissingChannels() []ConfigField {
	var missing []ConfigField
	for _, f := range []ConfigField{FieldLogChannel, FieldBanRequestChannel, FieldActionProofsChannel} {
		if c.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}
