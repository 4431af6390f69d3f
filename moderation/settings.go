package moderation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"modcase-bot/model"
	"modcase-bot/utils/validate"
)

// GuildConfig returns the guild's moderation setup, or an empty one if it was never configured.
func (s *Service) GuildConfig(ctx context.Context, guildID string) (*model.GuildModerationConfig, error) {
	cfg, err := s.configs.GetModerationConfig(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("load moderation config: %w", err)
	}
	if cfg == nil {
		cfg = &model.GuildModerationConfig{GuildID: guildID}
	}
	return cfg, nil
}

// SetConfigField stores one role or channel of the guild's setup. Administrators and members
// with Manage Server may change it.
func (s *Service) SetConfigField(ctx context.Context, actor model.Actor, field model.ConfigField, value string) (*model.GuildModerationConfig, error) {
	if !actor.Administrator && !actor.ManageGuild {
		return nil, fmt.Errorf("%w: changing the moderation setup needs Manage Server", ErrForbidden)
	}
	if !field.Valid() {
		return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidInput, field)
	}
	if !validate.IsSnowflake(value) {
		return nil, fmt.Errorf("%w: %q is not an id", ErrInvalidInput, value)
	}
	if err := s.configs.SetModerationField(ctx, actor.GuildID, field, value); err != nil {
		return nil, fmt.Errorf("save moderation config: %w", err)
	}
	log.Info().Str("guild_id", actor.GuildID).Str("field", string(field)).Str("value", value).Str("by", actor.UserID).Msg("moderation config updated")
	return s.GuildConfig(ctx, actor.GuildID)
}
