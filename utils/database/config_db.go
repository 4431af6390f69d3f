package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modcase-bot/model"
)

// GetModerationConfig returns the guild's moderation config, or nil if it was never set.
func (s *Store) GetModerationConfig(ctx context.Context, guildID string) (*model.GuildModerationConfig, error) {
	var cfg model.GuildModerationConfig
	err := s.db.GetContext(ctx, &cfg, `SELECT * FROM guild_moderation WHERE guild_id = ?`, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get moderation config for guild %s: %w", guildID, err)
	}
	return &cfg, nil
}

// SetModerationField upserts one field of the guild's moderation config.
func (s *Store) SetModerationField(ctx context.Context, guildID string, field model.ConfigField, value string) error {
	if !field.Valid() {
		return fmt.Errorf("unknown moderation config field %q", field)
	}
	// field is one of the whitelisted column names above.
	query := fmt.Sprintf(`INSERT INTO guild_moderation (guild_id, %[1]s) VALUES (?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET %[1]s = excluded.%[1]s`, string(field))
	if _, err := s.db.ExecContext(ctx, query, guildID, value); err != nil {
		return fmt.Errorf("failed to set %s for guild %s: %w", field, guildID, err)
	}
	return nil
}
