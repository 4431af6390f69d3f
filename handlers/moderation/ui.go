package moderation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/model"
	mod "modcase-bot/moderation"
	"modcase-bot/utils"
)

// FooterPrefix precedes the case id in every audit-log and ban request footer.
const FooterPrefix = "Punishment ID: "

var kindColors = map[model.CaseKind]string{
	model.KindWarn:       "#F1C40F",
	model.KindTimeout:    "#E67E22",
	model.KindKick:       "#E74C3C",
	model.KindBan:        "#992D22",
	model.KindUnban:      "#2ECC71",
	model.KindRequestBan: "#9B59B6",
}

func kindColor(k model.CaseKind) int {
	return utils.ParseHexColor(kindColors[k])
}

func mention(id string) string {
	if id == "" {
		return "-"
	}
	return fmt.Sprintf("<@%s> (`%s`)", id, id)
}

func caseTime(c model.Case) string {
	return fmt.Sprintf("<t:%d:f>", c.CreatedAt)
}

func caseDuration(c model.Case) string {
	if c.DurationSeconds == nil {
		return ""
	}
	return mod.FormatDuration(time.Duration(*c.DurationSeconds) * time.Second)
}

func proofLinks(urls []string) string {
	var b strings.Builder
	for i, u := range urls {
		fmt.Fprintf(&b, "[Proof %d](%s)\n", i+1, u)
	}
	return utils.Truncate(b.String(), 1024)
}

// DMEmbed is sent to the target of a case.
func DMEmbed(c model.Case, guildName string) *discordgo.MessageEmbed {
	verb := map[model.CaseKind]string{
		model.KindWarn:    "warned",
		model.KindTimeout: "timed out",
		model.KindKick:    "kicked",
		model.KindBan:     "banned",
	}[c.Kind]
	desc := fmt.Sprintf("> Moderator: <@%s>\n> Reason: **%s**", c.IssuerID, c.Reason)
	if d := caseDuration(c); d != "" {
		desc += "\n> Duration: **" + d + "**"
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("You have been %s in %s", verb, guildName),
		Description: desc,
		Color:       utils.ColorDanger,
		Footer:      &discordgo.MessageEmbedFooter{Text: FooterPrefix + c.CaseID},
		Timestamp:   time.Unix(c.CreatedAt, 0).Format(time.RFC3339),
	}
}

// AuditLogEmbed is the log channel entry of a case.
func AuditLogEmbed(c model.Case) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: mention(c.TargetUserID), Inline: true},
		{Name: "Moderator", Value: mention(c.IssuerID), Inline: true},
	}
	if d := caseDuration(c); d != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Duration", Value: d, Inline: true})
	}
	fields = append(fields, &discordgo.MessageEmbedField{Name: "Reason", Value: utils.Truncate(c.Reason, 1024)})
	if len(c.Proofs) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Proofs", Value: proofLinks(c.Proofs)})
	}
	return &discordgo.MessageEmbed{
		Title:     c.Kind.Title(),
		Color:     kindColor(c.Kind),
		Fields:    fields,
		Footer:    &discordgo.MessageEmbedFooter{Text: FooterPrefix + c.CaseID},
		Timestamp: time.Unix(c.CreatedAt, 0).Format(time.RFC3339),
	}
}

func setField(e *discordgo.MessageEmbed, name, value string) {
	for _, f := range e.Fields {
		if f.Name == name {
			f.Value = value
			return
		}
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: name, Value: value})
}

// ApplyLogChange edits an audit-log embed in place and returns it.
func ApplyLogChange(e *discordgo.MessageEmbed, change mod.LogChange) *discordgo.MessageEmbed {
	if change.Reason != "" {
		setField(e, "Reason", utils.Truncate(change.Reason, 1024))
	}
	if change.Proofs != nil {
		setField(e, "Proofs", proofLinks(change.Proofs))
		if len(change.Proofs) > 0 {
			e.Image = &discordgo.MessageEmbedImage{URL: change.Proofs[0]}
		}
	}
	if change.Deleted {
		if !strings.HasPrefix(e.Title, "[Deleted]") {
			e.Title = "[Deleted] " + e.Title
		}
		e.Color = utils.ColorNeutral
		setField(e, "Deleted by", mention(change.DeletedBy))
	}
	return e
}

func requestStatus(c model.Case) string {
	switch c.RequestState {
	case model.RequestApproved:
		return "✅ Approved by " + mention(c.ApproverID)
	case model.RequestAborted:
		return "🚫 Aborted by " + mention(c.ApproverID)
	}
	return "⏳ Pending"
}

// BanRequestEmbed is the post moderators approve or abort.
func BanRequestEmbed(c model.Case) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: "Ban Request",
		Color: kindColor(model.KindRequestBan),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: mention(c.TargetUserID), Inline: true},
			{Name: "Requested by", Value: mention(c.IssuerID), Inline: true},
			{Name: "Reason", Value: utils.Truncate(c.Reason, 1024)},
			{Name: "Status", Value: requestStatus(c)},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: FooterPrefix + c.CaseID},
		Timestamp: time.Unix(c.CreatedAt, 0).Format(time.RFC3339),
	}
	if len(c.Proofs) > 0 {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Proofs", Value: proofLinks(c.Proofs)})
	}
	return e
}

func BanRequestComponents(caseID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Approve",
					Style:    discordgo.SuccessButton,
					CustomID: banRequestPrefix + ":" + actionApprove + ":" + caseID,
				},
				discordgo.Button{
					Label:    "Abort",
					Style:    discordgo.DangerButton,
					CustomID: banRequestPrefix + ":" + actionAbort + ":" + caseID,
				},
			},
		},
	}
}

func ProofInstructionEmbed(c model.Case) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Attach proofs",
		Description: fmt.Sprintf("Reply to this message with the proof images for case `%s` (%s against <@%s>).\nOnly your reply in this channel is accepted.",
			c.CaseID, c.Kind.Title(), c.TargetUserID),
		Color:  utils.ColorInfo,
		Footer: &discordgo.MessageEmbedFooter{Text: FooterPrefix + c.CaseID},
	}
}

func ProofResultEmbed(caseID, text string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Attach proofs",
		Description: text,
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: FooterPrefix + caseID},
	}
}

// CaseEmbed is the detailed view of one case.
func CaseEmbed(c model.Case) *discordgo.MessageEmbed {
	e := AuditLogEmbed(c)
	e.Title = fmt.Sprintf("Case %s · %s", c.CaseID, c.Kind.Title())
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Issued", Value: caseTime(c), Inline: true})
	if c.Kind == model.KindRequestBan {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Status", Value: requestStatus(c), Inline: true})
	}
	if len(c.Proofs) > 0 {
		e.Image = &discordgo.MessageEmbedImage{URL: c.Proofs[0]}
	}
	return e
}

// CaseListEmbed renders one page of cases.
func CaseListEmbed(title string, cases []model.Case, page, pages, total int) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:  title,
		Color:  utils.ColorInfo,
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d/%d · %d case(s)", page+1, pages, total)},
	}
	if total == 0 {
		e.Description = "No cases found."
		return e
	}
	for _, c := range cases {
		value := fmt.Sprintf("**User:** <@%s>\n**Moderator:** <@%s>\n**Reason:** %s\n**Date:** %s",
			c.TargetUserID, c.IssuerID, utils.Truncate(c.Reason, 200), caseTime(c))
		if d := caseDuration(c); d != "" {
			value += "\n**Duration:** " + d
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s · `%s`", c.Kind.Title(), c.CaseID),
			Value: value,
		})
	}
	return e
}

// BatchResultEmbed summarises a punishment command.
func BatchResultEmbed(res *mod.BatchResult) *discordgo.MessageEmbed {
	ok := res.Succeeded()
	failed := res.Failed()

	e := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s: %d succeeded, %d failed", res.Kind.Title(), len(ok), len(failed)),
		Color: utils.ColorSuccess,
	}
	if len(ok) == 0 {
		e.Color = utils.ColorDanger
	} else if len(failed) > 0 {
		e.Color = utils.ColorWarning
	}

	if len(ok) > 0 {
		var b strings.Builder
		for _, r := range ok {
			fmt.Fprintf(&b, "<@%s> · `%s`\n", r.UserID, r.Outcome.Case.CaseID)
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Cases", Value: b.String()})
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Reason", Value: utils.Truncate(ok[0].Outcome.Case.Reason, 1024)})
	}
	if len(failed) > 0 {
		var b strings.Builder
		for _, r := range failed {
			fmt.Fprintf(&b, "<@%s> · %s\n", r.UserID, mod.FailureLabel(r.Err))
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Failed", Value: b.String()})
	}

	var warnings strings.Builder
	for _, r := range ok {
		for _, w := range r.Outcome.Warnings {
			fmt.Fprintf(&warnings, "<@%s>: %s\n", r.UserID, errorText(w))
		}
	}
	if warnings.Len() > 0 {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "⚠️ Warnings", Value: utils.Truncate(warnings.String(), 1024)})
	}

	if len(ok) > 0 {
		if missing := ok[0].Outcome.MissingChannels; len(missing) > 0 {
			labels := make([]string, len(missing))
			for i, f := range missing {
				labels[i] = f.Label()
			}
			e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
				Name:  "Setup incomplete",
				Value: "Not set: " + strings.Join(labels, ", ") + ". Use /config to finish setup.",
			})
		}
	}
	if res.Remaining != mod.Unlimited {
		e.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d %s action(s) left this hour", res.Remaining, strings.ToLower(res.Kind.Title()))}
	}
	return e
}

func errorText(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// ErrorMessage turns a service error into the text shown to the user. Unexpected errors are logged.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, mod.ErrNotConfigured):
		return "Moderation is not configured for this server. An administrator can set it up with /config."
	case errors.Is(err, mod.ErrForbidden),
		errors.Is(err, mod.ErrInvalidInput),
		errors.Is(err, mod.ErrNotFound),
		errors.Is(err, mod.ErrRateLimited),
		errors.Is(err, mod.ErrAlreadyResolved),
		errors.Is(err, mod.ErrExpired),
		errors.Is(err, mod.ErrTargetProtected),
		errors.Is(err, mod.ErrDownstream):
		return errorText(err)
	}
	log.Error().Err(err).Msg("unexpected moderation error")
	return "Something went wrong. Please try again later."
}
