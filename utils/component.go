package utils

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Clickable handles buttons and selects whose custom id starts with Prefix() and ":".
type Clickable interface {
	Prefix() string
	Click(s *discordgo.Session, i *discordgo.InteractionCreate)
}

// Submittable handles modals whose custom id starts with Prefix() and ":".
type Submittable interface {
	Prefix() string
	Submit(s *discordgo.Session, i *discordgo.InteractionCreate)
}

// CustomIDPrefix returns the part of a custom id before the first ":".
func CustomIDPrefix(customID string) string {
	prefix, _, _ := strings.Cut(customID, ":")
	return prefix
}
