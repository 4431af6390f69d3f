package handlers

import (
	"fmt"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/bot"
	"modcase-bot/commands"
	"modcase-bot/utils"
)

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	defer recoverHandler(s, b, "interaction")

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		runSlashCommand(s, i, b)
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if c, ok := b.Clickables[utils.CustomIDPrefix(customID)]; ok {
			c.Click(s, i)
			return
		}
		log.Debug().Str("custom_id", customID).Msg("unrouted component")
	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		if m, ok := b.Submittables[utils.CustomIDPrefix(customID)]; ok {
			m.Submit(s, i)
			return
		}
		log.Debug().Str("custom_id", customID).Msg("unrouted modal")
	case discordgo.InteractionApplicationCommandAutocomplete:
		handleAutocomplete(s, i, b)
	}
}

func runSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	name := i.ApplicationCommandData().Name
	cmd, ok := commands.Lookup(name)
	if !ok {
		return
	}
	h, ok := b.CommandHandlers[cmd.Name]
	if !ok {
		log.Warn().Str("command", cmd.Name).Msg("no handler registered")
		return
	}
	if cmd.OwnerOnly && !b.GetConfig().IsOwner(utils.InteractionUserID(i)) {
		utils.SendErrorResponse(s, i, "This command is restricted to the bot owners.")
		return
	}
	log.Debug().Str("command", cmd.Name).Str("guild_id", i.GuildID).Str("user_id", utils.InteractionUserID(i)).Msg("slash command")
	h(utils.NewSlashInvocation(s, i))
}

// recoverHandler keeps one failing handler from taking the gateway loop down.
func recoverHandler(s *discordgo.Session, b *bot.Bot, source string) {
	if r := recover(); r != nil {
		log.Error().Str("source", source).Interface("panic", r).Bytes("stack", debug.Stack()).Msg("handler panicked")
		_ = utils.LogError(s, b.GetConfig().LogChannelID, "Handlers", source, fmt.Sprintf("panic: %v", r))
	}
}
