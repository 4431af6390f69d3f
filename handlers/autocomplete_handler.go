package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/bot"
	"modcase-bot/commands"
	"modcase-bot/model"
	"modcase-bot/utils"
)

const maxChoices = 25

func handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	var focused *discordgo.ApplicationCommandInteractionDataOption
	for _, opt := range data.Options {
		if opt.Focused {
			focused = opt
		}
	}
	if focused == nil {
		return
	}
	typed := strings.ToLower(strings.TrimSpace(focused.StringValue()))

	var choices []*discordgo.ApplicationCommandOptionChoice
	switch focused.Name {
	case commands.OptCommand:
		choices = commandChoices(typed)
	case commands.OptCaseID:
		choices = caseChoices(b, i.GuildID, utils.InteractionUserID(i), typed)
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		log.Warn().Err(err).Str("command", data.Name).Msg("autocomplete response failed")
	}
}

func commandChoices(typed string) []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, c := range commands.All() {
		if len(choices) == maxChoices {
			break
		}
		if strings.HasPrefix(c.Name, typed) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: c.Name, Value: c.Name})
		}
	}
	return choices
}

// caseChoices suggests the caller's most recent cases.
func caseChoices(b *bot.Bot, guildID, userID, typed string) []*discordgo.ApplicationCommandOptionChoice {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cases, err := b.Store.FindCases(ctx, model.CaseFilter{GuildID: guildID, IssuerID: userID})
	if err != nil {
		log.Warn().Err(err).Str("guild_id", guildID).Msg("autocomplete: failed to list cases")
		return nil
	}
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, c := range cases {
		if len(choices) == maxChoices {
			break
		}
		if !strings.HasPrefix(strings.ToLower(c.CaseID), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  utils.Truncate(fmt.Sprintf("%s · %s · %s", c.CaseID, c.Kind.Title(), c.Reason), 100),
			Value: c.CaseID,
		})
	}
	return choices
}
