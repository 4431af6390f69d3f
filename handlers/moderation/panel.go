package moderation

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/model"
	mod "modcase-bot/moderation"
	"modcase-bot/utils"
)

const (
	panelPrefix = "punishpanel"
	panelModal  = "punishmodal"

	actionSelect = "select"

	panelUserInput     = "user_id"
	panelReasonInput   = "reason"
	panelDurationInput = "duration"
)

var panelEmoji = map[model.CaseKind]string{
	model.KindWarn:       "⚠️",
	model.KindTimeout:    "🔇",
	model.KindKick:       "👢",
	model.KindBan:        "🔨",
	model.KindUnban:      "🔓",
	model.KindRequestBan: "📝",
}

// PanelComponents is the kind selector shown on a punishment panel.
func PanelComponents() []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(model.CaseKinds))
	for _, k := range model.CaseKinds {
		options = append(options, discordgo.SelectMenuOption{
			Label: k.Title(),
			Value: string(k),
			Emoji: &discordgo.ComponentEmoji{Name: panelEmoji[k]},
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    panelPrefix + ":" + actionSelect + ":kind",
					Placeholder: "Choose an action",
					Options:     options,
				},
			},
		},
	}
}

// PunishmentPanel posts a persistent panel for issuing single-target punishments.
func (h *Handler) PunishmentPanel(inv *utils.Invocation) {
	if !h.actor(inv).Administrator {
		inv.ReplyError("Only administrators can post the punishment panel.")
		return
	}
	_, err := inv.Session.ChannelMessageSendComplex(inv.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Punishment panel",
			Description: "Pick an action, then fill in the target and reason. Your roles decide which actions you can use.",
			Color:       utils.ColorInfo,
		}},
		Components: PanelComponents(),
	})
	if err != nil {
		inv.ReplyError("Could not post the panel here.")
		log.Error().Err(err).Str("channel_id", inv.ChannelID).Msg("failed to post punishment panel")
		return
	}
	if inv.IsSlash() {
		utils.SendSimpleResponse(inv.Session, inv.Interaction, "✅ Panel posted.")
	}
}

func textRow(customID, label string, style discordgo.TextInputStyle, required bool, maxLength int, placeholder string) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    customID,
				Label:       label,
				Style:       style,
				Required:    required,
				MaxLength:   maxLength,
				Placeholder: placeholder,
			},
		},
	}
}

type (
	panelSelect struct{ *Handler }
	panelForm   struct{ *Handler }
)

func (panelSelect) Prefix() string { return panelPrefix }
func (panelForm) Prefix() string   { return panelModal }

func (h panelSelect) Click(s *discordgo.Session, i *discordgo.InteractionCreate) {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	kind, ok := model.ParseCaseKind(values[0])
	if !ok {
		utils.SendErrorResponse(s, i, "Unknown action.")
		return
	}

	rows := []discordgo.MessageComponent{
		textRow(panelUserInput, "User ID", discordgo.TextInputShort, true, 32, "123456789012345678"),
		textRow(panelReasonInput, "Reason", discordgo.TextInputParagraph, kind == model.KindRequestBan, mod.MaxReasonLength, ""),
	}
	if kind == model.KindTimeout {
		rows = append(rows, textRow(panelDurationInput, "Duration", discordgo.TextInputShort, true, 10, "30m, 2h, 1d"))
	}
	if err := utils.OpenModal(s, i, panelModal+":"+actionSelect+":"+string(kind), kind.Title(), rows); err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Msg("failed to open punishment modal")
	}
}

func (h panelForm) Submit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	_, rawKind, ok := splitCustomID(data.CustomID)
	if !ok {
		return
	}
	kind, ok := model.ParseCaseKind(rawKind)
	if !ok {
		return
	}

	target := modalValue(data, panelUserInput)
	if id, ok := utils.ExtractUserID(target); ok {
		target = id
	}
	var duration time.Duration
	if kind == model.KindTimeout {
		d, err := mod.ParseDuration(modalValue(data, panelDurationInput))
		if err != nil {
			utils.SendErrorResponse(s, i, ErrorMessage(err))
			return
		}
		duration = d
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Error().Err(err).Msg("failed to defer panel submit")
		return
	}
	res, err := h.punishOne(ActorFromInteraction(i), kind, target, modalValue(data, panelReasonInput), duration)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, ErrorMessage(err))
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, BatchResultEmbed(res))
}
