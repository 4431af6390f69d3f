package moderation

import (
	"context"
	"time"

	"modcase-bot/commands"
	"modcase-bot/model"
	mod "modcase-bot/moderation"
	"modcase-bot/utils"
)

const commandTimeout = 30 * time.Second

// Handler serves the moderation commands, buttons and modals.
type Handler struct {
	svc         *mod.Service
	proofs      *mod.Correlator
	platform    *Platform
	pages       *utils.Paginator
	pageTimeout time.Duration
}

func NewHandler(svc *mod.Service, proofs *mod.Correlator, platform *Platform, pages *utils.Paginator, pageTimeout time.Duration) *Handler {
	if pageTimeout <= 0 {
		pageTimeout = time.Minute
	}
	return &Handler{svc: svc, proofs: proofs, platform: platform, pages: pages, pageTimeout: pageTimeout}
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// Commands maps command names to their handlers.
func (h *Handler) Commands() map[string]func(inv *utils.Invocation) {
	handlers := map[string]func(inv *utils.Invocation){
		"case":             h.ViewCase,
		"modcases":         h.ModCases,
		"editcase":         h.EditCase,
		"attachproofs":     h.AttachProofs,
		"punishment-panel": h.PunishmentPanel,
	}
	for _, c := range commands.All() {
		if c.Kind != "" {
			handlers[c.Name] = h.Punish(c.Kind)
		}
	}
	return handlers
}

func (h *Handler) actor(inv *utils.Invocation) model.Actor {
	return h.platform.ActorFromInvocation(inv)
}
