package moderation

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/utils"
)

// Custom id prefixes. Ids have the form prefix:action:argument.
const (
	banRequestPrefix = "banreq"
	editCasePrefix   = "editcase"
	deletePrefix     = "delcase"
	editReasonModal  = "editreason"

	actionApprove = "approve"
	actionAbort   = "abort"
	actionReason  = "reason"
	actionDelete  = "delete"
	actionConfirm = "confirm"
	actionCancel  = "cancel"

	reasonInputID = "reason"
)

// Clickables lists the button and select handlers of the moderation commands.
func (h *Handler) Clickables() []utils.Clickable {
	return []utils.Clickable{banRequestButtons{h}, editCaseButtons{h}, deleteButtons{h}, panelSelect{h}}
}

// Submittables lists the modal handlers of the moderation commands.
func (h *Handler) Submittables() []utils.Submittable {
	return []utils.Submittable{editReasonForm{h}, panelForm{h}}
}

type (
	banRequestButtons struct{ *Handler }
	editCaseButtons   struct{ *Handler }
	deleteButtons     struct{ *Handler }
	editReasonForm    struct{ *Handler }
)

func (banRequestButtons) Prefix() string { return banRequestPrefix }
func (editCaseButtons) Prefix() string   { return editCasePrefix }
func (deleteButtons) Prefix() string     { return deletePrefix }
func (editReasonForm) Prefix() string    { return editReasonModal }

func splitCustomID(customID string) (action, arg string, ok bool) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func EditCaseComponents(caseID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Edit reason",
					Style:    discordgo.PrimaryButton,
					CustomID: editCasePrefix + ":" + actionReason + ":" + caseID,
				},
				discordgo.Button{
					Label:    "Delete case",
					Style:    discordgo.DangerButton,
					CustomID: editCasePrefix + ":" + actionDelete + ":" + caseID,
				},
			},
		},
	}
}

func deleteConfirmComponents(token string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Confirm delete",
					Style:    discordgo.DangerButton,
					CustomID: deletePrefix + ":" + actionConfirm + ":" + token,
				},
				discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.SecondaryButton,
					CustomID: deletePrefix + ":" + actionCancel + ":" + token,
				},
			},
		},
	}
}

func (h banRequestButtons) Click(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, caseID, ok := splitCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Error().Err(err).Msg("failed to defer ban request click")
		return
	}
	ctx, cancel := commandContext()
	defer cancel()

	actor := ActorFromInteraction(i)
	switch action {
	case actionApprove:
		c, err := h.svc.ApproveBanRequest(ctx, actor, caseID)
		if err != nil {
			utils.SendFollowUpError(s, i.Interaction, ErrorMessage(err))
			return
		}
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Approved. <@%s> has been banned (case `%s`).", c.TargetUserID, c.CaseID))
	case actionAbort:
		c, err := h.svc.AbortBanRequest(ctx, actor, caseID)
		if err != nil {
			utils.SendFollowUpError(s, i.Interaction, ErrorMessage(err))
			return
		}
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("🚫 Ban request `%s` aborted.", c.CaseID))
	}
}

func (h editCaseButtons) Click(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, caseID, ok := splitCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	ctx, cancel := commandContext()
	defer cancel()
	actor := ActorFromInteraction(i)

	switch action {
	case actionReason:
		c, err := h.svc.Case(ctx, i.GuildID, caseID)
		if err != nil {
			utils.SendErrorResponse(s, i, ErrorMessage(err))
			return
		}
		err = utils.OpenModal(s, i, editReasonModal+":"+actionReason+":"+c.CaseID, "Edit reason of "+c.CaseID, []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  reasonInputID,
						Label:     "New reason",
						Style:     discordgo.TextInputParagraph,
						Value:     c.Reason,
						Required:  true,
						MaxLength: 1000,
					},
				},
			},
		})
		if err != nil {
			log.Error().Err(err).Str("case_id", caseID).Msg("failed to open edit reason modal")
		}
	case actionDelete:
		p, err := h.svc.ProposeDelete(ctx, actor, caseID)
		if err != nil {
			utils.SendErrorResponse(s, i, ErrorMessage(err))
			return
		}
		utils.SendEphemeralEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "Delete case " + p.CaseID + "?",
			Description: fmt.Sprintf("This cannot be undone. Confirm <t:%d:R>.", p.ExpiresAt.Unix()),
			Color:       utils.ColorWarning,
		}, deleteConfirmComponents(p.Token))
	}
}

func (h deleteButtons) Click(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, token, ok := splitCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	switch action {
	case actionCancel:
		h.svc.CancelDelete(token)
		utils.UpdateMessage(s, i, "Delete cancelled.", []*discordgo.MessageEmbed{}, nil)
	case actionConfirm:
		ctx, cancel := commandContext()
		defer cancel()
		c, err := h.svc.ConfirmDelete(ctx, ActorFromInteraction(i), token)
		if err != nil {
			utils.UpdateMessage(s, i, "❌ "+ErrorMessage(err), []*discordgo.MessageEmbed{}, nil)
			return
		}
		utils.UpdateMessage(s, i, fmt.Sprintf("🗑️ Case `%s` deleted.", c.CaseID), []*discordgo.MessageEmbed{}, nil)
	}
}

func (h editReasonForm) Submit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	_, caseID, ok := splitCustomID(data.CustomID)
	if !ok {
		return
	}
	reason := modalValue(data, reasonInputID)

	ctx, cancel := commandContext()
	defer cancel()
	c, err := h.svc.EditReason(ctx, ActorFromInteraction(i), caseID, reason)
	if err != nil {
		utils.SendErrorResponse(s, i, ErrorMessage(err))
		return
	}
	utils.SendEphemeralEmbed(s, i, CaseEmbed(*c), nil)
}

// modalValue returns the text of the input with the given custom id.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range ar.Components {
			if in, ok := comp.(*discordgo.TextInput); ok && in.CustomID == customID {
				return strings.TrimSpace(in.Value)
			}
		}
	}
	return ""
}

