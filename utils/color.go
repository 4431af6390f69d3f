package utils

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	ColorSuccess = 0x2ecc71
	ColorWarning = 0xe67e22
	ColorDanger  = 0xe74c3c
	ColorInfo    = 0x3498db
	ColorNeutral = 0x95a5a6
)

// ParseHexColor parses a hex color string (like "#FACF24") into an integer for Discord embeds.
// Returns ColorDanger if parsing fails.
func ParseHexColor(hexColor string) int {
	if hexColor == "" {
		return ColorDanger
	}
	hexColor = strings.TrimPrefix(hexColor, "#")

	colorInt, err := strconv.ParseInt(hexColor, 16, 64)
	if err != nil {
		log.Warn().Str("color", hexColor).Err(err).Msg("failed to parse hex color")
		return ColorDanger
	}
	return int(colorInt)
}
