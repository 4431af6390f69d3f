package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const helpColor = 0x3498db

// HelpEmbed lists every command grouped by category.
func HelpEmbed(prefix string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "📋 Available Commands",
		Description: fmt.Sprintf("Slash commands work everywhere. Prefix commands start with `%s`; put the reason after `?r`.", prefix),
		Color:       helpColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Use /help <command> for details"},
	}
	for _, cat := range Categories {
		var b strings.Builder
		for _, c := range InCategory(cat) {
			fmt.Fprintf(&b, "• `%s` %s\n", c.Name, c.Description)
		}
		if b.Len() > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: string(cat), Value: b.String()})
		}
	}
	return embed
}

// CommandEmbed describes one command.
func CommandEmbed(c *Command, prefix string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "/" + c.Name,
		Description: c.Description,
		Color:       helpColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Usage", Value: "`" + c.UsageFor(prefix) + "`"},
		},
	}
	if len(c.Aliases) > 0 && !c.SlashOnly {
		aliases := make([]string, len(c.Aliases))
		for i, a := range c.Aliases {
			aliases[i] = "`" + prefix + a + "`"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Aliases", Value: strings.Join(aliases, ", ")})
	}
	if c.MaxTargets > 1 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Targets", Value: fmt.Sprintf("Up to %d users", c.MaxTargets)})
	}
	return embed
}
