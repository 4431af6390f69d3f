package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/commands"
	hmod "modcase-bot/handlers/moderation"
	"modcase-bot/model"
	mod "modcase-bot/moderation"
	"modcase-bot/utils"
)

const (
	panelPrefix = "cfgpanel"
	valuePrefix = "cfgset"

	viewCommands = "commands"
)

// Handler serves the /config panel.
type Handler struct {
	svc    *mod.Service
	prefix string
}

func NewHandler(svc *mod.Service, commandPrefix string) *Handler {
	return &Handler{svc: svc, prefix: commandPrefix}
}

func (h *Handler) Commands() map[string]func(inv *utils.Invocation) {
	return map[string]func(inv *utils.Invocation){
		"config": h.Config,
	}
}

func (h *Handler) Clickables() []utils.Clickable {
	return []utils.Clickable{fieldSelect{h}, valueSelect{h}}
}

func display(f model.ConfigField, value string) string {
	if value == "" {
		return "Not set"
	}
	if f.IsChannel() {
		return "<#" + value + ">"
	}
	return "<@&" + value + ">"
}

// OverviewEmbed shows every field of the guild's setup.
func OverviewEmbed(cfg *model.GuildModerationConfig) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       "Moderation setup",
		Description: "Pick a setting below to change it.",
		Color:       utils.ColorInfo,
	}
	for _, f := range model.ConfigFields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Label(), Value: display(f, cfg.Get(f)), Inline: true})
	}
	if !cfg.Configured() {
		e.Color = utils.ColorWarning
		e.Footer = &discordgo.MessageEmbedFooter{Text: "Moderation commands stay disabled until all three roles are set."}
	}
	return e
}

// FieldMenu lists the settable fields plus the command listing.
func FieldMenu() discordgo.ActionsRow {
	options := make([]discordgo.SelectMenuOption, 0, len(model.ConfigFields)+1)
	for _, f := range model.ConfigFields {
		options = append(options, discordgo.SelectMenuOption{Label: f.Label(), Value: string(f)})
	}
	options = append(options, discordgo.SelectMenuOption{Label: "View commands", Value: viewCommands})
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    panelPrefix + ":field",
				Placeholder: "Choose a setting",
				Options:     options,
			},
		},
	}
}

// ValueMenu is a role or channel picker for one field.
func ValueMenu(f model.ConfigField) discordgo.ActionsRow {
	menu := discordgo.SelectMenu{
		MenuType:    discordgo.RoleSelectMenu,
		CustomID:    valuePrefix + ":" + string(f),
		Placeholder: "Select the " + strings.ToLower(f.Label()),
	}
	if f.IsChannel() {
		menu.MenuType = discordgo.ChannelSelectMenu
		menu.ChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildText}
	}
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}}
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// Config opens the setup panel for the caller.
func (h *Handler) Config(inv *utils.Invocation) {
	actor := hmod.ActorFromInteraction(inv.Interaction)
	if !actor.Administrator && !actor.ManageGuild {
		inv.ReplyError("You need Manage Server to change the moderation setup.")
		return
	}
	ctx, cancel := commandContext()
	defer cancel()

	cfg, err := h.svc.GuildConfig(ctx, inv.GuildID)
	if err != nil {
		inv.ReplyError(hmod.ErrorMessage(err))
		return
	}
	utils.SendEphemeralEmbed(inv.Session, inv.Interaction, OverviewEmbed(cfg), []discordgo.MessageComponent{FieldMenu()})
}

type (
	fieldSelect struct{ *Handler }
	valueSelect struct{ *Handler }
)

func (fieldSelect) Prefix() string { return panelPrefix }
func (valueSelect) Prefix() string { return valuePrefix }

func (h fieldSelect) Click(s *discordgo.Session, i *discordgo.InteractionCreate) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	if values[0] == viewCommands {
		utils.UpdateMessage(s, i, "", []*discordgo.MessageEmbed{commands.HelpEmbed(h.prefix)}, []discordgo.MessageComponent{FieldMenu()})
		return
	}
	field := model.ConfigField(values[0])
	if !field.Valid() {
		utils.SendErrorResponse(s, i, "Unknown setting.")
		return
	}

	ctx, cancel := commandContext()
	defer cancel()
	cfg, err := h.svc.GuildConfig(ctx, i.GuildID)
	if err != nil {
		utils.SendErrorResponse(s, i, hmod.ErrorMessage(err))
		return
	}
	utils.UpdateMessage(s, i, fmt.Sprintf("Choose the new **%s**.", field.Label()),
		[]*discordgo.MessageEmbed{OverviewEmbed(cfg)},
		[]discordgo.MessageComponent{FieldMenu(), ValueMenu(field)})
}

func (h valueSelect) Click(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	field := model.ConfigField(strings.TrimPrefix(data.CustomID, valuePrefix+":"))
	if len(data.Values) == 0 {
		return
	}

	ctx, cancel := commandContext()
	defer cancel()
	cfg, err := h.svc.SetConfigField(ctx, hmod.ActorFromInteraction(i), field, data.Values[0])
	if err != nil {
		utils.SendErrorResponse(s, i, hmod.ErrorMessage(err))
		return
	}
	log.Debug().Str("guild_id", i.GuildID).Str("field", string(field)).Msg("config panel updated")
	utils.UpdateMessage(s, i, fmt.Sprintf("✅ **%s** set to %s.", field.Label(), display(field, data.Values[0])),
		[]*discordgo.MessageEmbed{OverviewEmbed(cfg)},
		[]discordgo.MessageComponent{FieldMenu()})
}
