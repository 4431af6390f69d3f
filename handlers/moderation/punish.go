package moderation

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"modcase-bot/commands"
	"modcase-bot/model"
	mod "modcase-bot/moderation"
	"modcase-bot/utils"
)

// Punish returns the handler for one of the case-creating commands.
func (h *Handler) Punish(kind model.CaseKind) func(inv *utils.Invocation) {
	return func(inv *utils.Invocation) {
		req, err := batchRequest(inv, kind)
		if err != nil {
			inv.ReplyError(ErrorMessage(err))
			return
		}
		req.Issuer = h.actor(inv)

		inv.Defer()
		ctx, cancel := commandContext()
		defer cancel()

		res, err := h.svc.Punish(ctx, req)
		if err != nil {
			inv.ReplyError(ErrorMessage(err))
			return
		}
		if _, err := inv.ReplyEmbed(BatchResultEmbed(res), nil); err != nil {
			log.Error().Err(err).Str("kind", string(kind)).Msg("failed to send punishment summary")
		}
	}
}

// batchRequest reads targets, duration and reason from either invocation style.
func batchRequest(inv *utils.Invocation, kind model.CaseKind) (mod.BatchRequest, error) {
	req := mod.BatchRequest{Kind: kind}
	var durationText string

	if inv.IsSlash() {
		if kind == model.KindUnban {
			raw := inv.OptionString(commands.OptUserID)
			id, ok := utils.ExtractUserID(raw)
			if !ok {
				id = raw
			}
			req.Targets = []string{id}
		} else {
			for _, name := range commands.TargetOptionNames {
				if id := inv.OptionUserID(name); id != "" {
					req.Targets = append(req.Targets, id)
				}
			}
		}
		durationText = inv.OptionString(commands.OptDuration)
		req.Reason = inv.OptionString(commands.OptReason)
	} else {
		targets, rest := utils.ParseTargets(inv.Args)
		req.Targets = targets
		if kind == model.KindTimeout {
			durationText, rest = utils.NextToken(rest)
		}
		req.Reason = utils.ParseReason(rest)
	}

	if len(req.Targets) == 0 {
		return req, fmt.Errorf("%w: mention at least one user", mod.ErrInvalidInput)
	}
	if kind == model.KindTimeout {
		d, err := mod.ParseDuration(durationText)
		if err != nil {
			return req, err
		}
		req.Duration = d
	}
	if len([]rune(req.Reason)) > mod.MaxReasonLength {
		return req, fmt.Errorf("%w: reason is longer than %d characters", mod.ErrInvalidInput, mod.MaxReasonLength)
	}
	return req, nil
}

// punishOne runs a single-target punishment from the panel modal.
func (h *Handler) punishOne(issuer model.Actor, kind model.CaseKind, target, reason string, duration time.Duration) (*mod.BatchResult, error) {
	ctx, cancel := commandContext()
	defer cancel()
	return h.svc.Punish(ctx, mod.BatchRequest{
		Issuer:   issuer,
		Kind:     kind,
		Targets:  []string{target},
		Reason:   reason,
		Duration: duration,
	})
}
