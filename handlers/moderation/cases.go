package moderation

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/commands"
	"modcase-bot/model"
	mod "modcase-bot/moderation"
	"modcase-bot/utils"
)

// CasePageSize is how many cases one page of a listing shows.
const CasePageSize = 10

// ViewCase shows one case by id, every case against a user, or every case in the guild.
func (h *Handler) ViewCase(inv *utils.Invocation) {
	query := strings.TrimSpace(inv.Args)
	if inv.IsSlash() {
		query = strings.TrimSpace(inv.OptionString(commands.OptQuery))
	}

	inv.Defer()
	ctx, cancel := commandContext()
	defer cancel()

	if query == "" {
		h.listCases(inv, model.CaseFilter{GuildID: inv.GuildID}, "Server cases")
		return
	}
	if userID, ok := utils.ExtractUserID(query); ok {
		title := "Cases against user " + userID
		if n, err := h.svc.CaseCount(ctx, inv.GuildID, userID); err == nil {
			title = fmt.Sprintf("Cases against user %s (%d total)", userID, n)
		}
		h.listCases(inv, model.CaseFilter{GuildID: inv.GuildID, TargetUserID: userID}, title)
		return
	}

	c, err := h.svc.Case(ctx, inv.GuildID, query)
	if err != nil {
		inv.ReplyError(ErrorMessage(err))
		return
	}
	if _, err := inv.ReplyEmbed(CaseEmbed(*c), nil); err != nil {
		log.Error().Err(err).Str("case_id", c.CaseID).Msg("failed to send case")
	}
}

// ModCases lists the cases issued by a moderator, the caller by default.
func (h *Handler) ModCases(inv *utils.Invocation) {
	issuerID := inv.UserID()
	if inv.IsSlash() {
		if id := inv.OptionUserID(commands.OptUser); id != "" {
			issuerID = id
		}
	} else if targets, _ := utils.ParseTargets(inv.Args); len(targets) > 0 {
		issuerID = targets[0]
	}

	inv.Defer()
	h.listCases(inv, model.CaseFilter{GuildID: inv.GuildID, IssuerID: issuerID}, "Cases issued by moderator "+issuerID)
}

// listCases replies with a paginated listing. The controls disappear when the session ends.
func (h *Handler) listCases(inv *utils.Invocation, filter model.CaseFilter, title string) {
	ctx, cancel := commandContext()
	defer cancel()

	pager, err := h.svc.ListCases(ctx, filter, CasePageSize)
	if err != nil {
		inv.ReplyError(ErrorMessage(err))
		return
	}
	render := func(page int) *discordgo.MessageEmbed {
		return CaseListEmbed(title, pager.Page(page), page, pager.Pages(), pager.Len())
	}
	onEnd := func(last *discordgo.MessageEmbed) {
		if err := inv.Edit(last, nil); err != nil {
			log.Warn().Err(err).Msg("failed to remove pagination controls")
		}
	}

	_, view := h.pages.Start(inv.UserID(), pager.Pages(), h.pageTimeout, render, onEnd)
	if _, err := inv.ReplyEmbed(view.Embed, view.Components); err != nil {
		log.Error().Err(err).Msg("failed to send case list")
	}
}

// EditCase shows a case with buttons to edit its reason or delete it.
func (h *Handler) EditCase(inv *utils.Invocation) {
	caseID := inv.OptionString(commands.OptCaseID)
	if !inv.IsSlash() {
		caseID, _ = utils.NextToken(inv.Args)
	}
	caseID = mod.NormalizeCaseID(caseID)
	if !mod.ValidCaseID(caseID) {
		inv.ReplyError("Give a valid 6 character case id.")
		return
	}

	ctx, cancel := commandContext()
	defer cancel()

	c, err := h.svc.Case(ctx, inv.GuildID, caseID)
	if err != nil {
		inv.ReplyError(ErrorMessage(err))
		return
	}
	actor := h.actor(inv)
	if c.IssuerID != actor.UserID {
		cfg, err := h.svc.GuildConfig(ctx, inv.GuildID)
		if err != nil || !mod.IsStaff(actor, cfg) {
			inv.ReplyError(ErrorMessage(mod.ErrForbidden))
			return
		}
	}

	if _, err := inv.ReplyEmbed(CaseEmbed(*c), EditCaseComponents(c.CaseID)); err != nil {
		log.Error().Err(err).Str("case_id", c.CaseID).Msg("failed to send edit panel")
	}
}
