package moderation

import (
	"context"
	"errors"
	"testing"

	"modcase-bot/model"
)

func TestGuildConfigUnconfigured(t *testing.T) {
	h := newHarness()
	cfg, err := h.svc.GuildConfig(context.Background(), testGuild)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GuildID != testGuild || cfg.Configured() {
		t.Errorf("got %+v, want an empty config for %s", cfg, testGuild)
	}
}

func TestSetConfigField(t *testing.T) {
	admin := model.Actor{GuildID: testGuild, UserID: modID, Administrator: true}

	tests := []struct {
		name    string
		actor   model.Actor
		field   model.ConfigField
		value   string
		wantErr error
	}{
		{"admin sets role", admin, model.FieldKickBanRole, roleTier2, nil},
		{"admin sets channel", admin, model.FieldLogChannel, logChannel, nil},
		{"manager", model.Actor{GuildID: testGuild, UserID: otherModID, ManageGuild: true}, model.FieldWhitelistRole, roleStaff, nil},
		{"moderator", moderator(modID, roleTier2), model.FieldKickBanRole, roleTier2, ErrForbidden},
		{"unknown field", admin, model.ConfigField("prefix"), roleTier2, ErrInvalidInput},
		{"not an id", admin, model.FieldLogChannel, "#logs", ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			cfg, err := h.svc.SetConfigField(context.Background(), tt.actor, tt.field, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && cfg.Get(tt.field) != tt.value {
				t.Errorf("%s = %q, want %q", tt.field, cfg.Get(tt.field), tt.value)
			}
		})
	}
}

func TestSetConfigFieldCompletesSetup(t *testing.T) {
	h := newHarness()
	admin := model.Actor{GuildID: testGuild, UserID: modID, Administrator: true}
	ctx := context.Background()

	var cfg *model.GuildModerationConfig
	for field, value := range map[model.ConfigField]string{
		model.FieldWarnMuteRequestRole: roleTier1,
		model.FieldKickBanRole:         roleTier2,
		model.FieldWhitelistRole:       roleStaff,
	} {
		var err error
		if cfg, err = h.svc.SetConfigField(ctx, admin, field, value); err != nil {
			t.Fatal(err)
		}
	}
	if !cfg.Configured() {
		t.Fatalf("config not complete after setting all roles: %+v", cfg)
	}
	if len(cfg.MissingChannels()) != 3 {
		t.Errorf("missing channels = %v, want all three", cfg.MissingChannels())
	}
}
