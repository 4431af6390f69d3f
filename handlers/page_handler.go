package handlers

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/utils"
)

// pageButtons routes clicks on paginated messages to their session.
type pageButtons struct {
	pages *utils.Paginator
}

func (p pageButtons) Prefix() string { return p.pages.Prefix() }

func (p pageButtons) Click(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, sessionID, ok := utils.ParsePaginationCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	view, err := p.pages.Click(sessionID, utils.InteractionUserID(i), action)
	switch {
	case errors.Is(err, utils.ErrNotOwner):
		utils.SendErrorResponse(s, i, "Only the person who opened this list can use its buttons.")
		return
	case errors.Is(err, utils.ErrSessionEnded):
		// Acknowledge and strip the stale controls.
		var embeds []*discordgo.MessageEmbed
		if i.Message != nil {
			embeds = i.Message.Embeds
		}
		utils.UpdateMessage(s, i, "", embeds, nil)
		return
	case err != nil:
		log.Warn().Err(err).Str("session_id", sessionID).Msg("bad page click")
		utils.DeferUpdate(s, i)
		return
	}
	utils.UpdateMessage(s, i, "", []*discordgo.MessageEmbed{view.Embed}, view.Components)
}
