package settings

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"modcase-bot/model"
	"modcase-bot/utils"
)

func TestOverviewEmbed(t *testing.T) {
	cfg := &model.GuildModerationConfig{
		GuildID:     "100000000000000001",
		KickBanRole: "200000000000000002",
		LogChannel:  "300000000000000001",
	}
	e := OverviewEmbed(cfg)
	if len(e.Fields) != len(model.ConfigFields) {
		t.Fatalf("fields = %d, want %d", len(e.Fields), len(model.ConfigFields))
	}
	values := map[string]string{}
	for _, f := range e.Fields {
		values[f.Name] = f.Value
	}
	if got := values[model.FieldKickBanRole.Label()]; got != "<@&200000000000000002>" {
		t.Errorf("role = %q", got)
	}
	if got := values[model.FieldLogChannel.Label()]; got != "<#300000000000000001>" {
		t.Errorf("channel = %q", got)
	}
	if got := values[model.FieldWhitelistRole.Label()]; got != "Not set" {
		t.Errorf("unset = %q", got)
	}
	if e.Color != utils.ColorWarning || e.Footer == nil {
		t.Errorf("incomplete setup should be flagged: %+v", e)
	}
}

func TestValueMenuType(t *testing.T) {
	for _, f := range model.ConfigFields {
		menu := ValueMenu(f).Components[0].(discordgo.SelectMenu)
		want := discordgo.RoleSelectMenu
		if f.IsChannel() {
			want = discordgo.ChannelSelectMenu
		}
		if menu.MenuType != want {
			t.Errorf("%s: menu type = %v, want %v", f, menu.MenuType, want)
		}
		if !strings.HasSuffix(menu.CustomID, ":"+string(f)) || utils.CustomIDPrefix(menu.CustomID) != valuePrefix {
			t.Errorf("%s: custom id = %q", f, menu.CustomID)
		}
	}
}

func TestFieldMenuIncludesCommands(t *testing.T) {
	menu := FieldMenu().Components[0].(discordgo.SelectMenu)
	if len(menu.Options) != len(model.ConfigFields)+1 {
		t.Fatalf("options = %d", len(menu.Options))
	}
	if last := menu.Options[len(menu.Options)-1]; last.Value != viewCommands {
		t.Errorf("last option = %q, want %q", last.Value, viewCommands)
	}
}
