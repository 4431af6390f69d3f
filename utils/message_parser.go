package utils

import (
	"regexp"
	"strings"
)

// ReasonSeparator marks the start of the reason in prefix commands.
const ReasonSeparator = "?r"

var userTokenRe = regexp.MustCompile(`^(?:<@!?([0-9]{15,21})>|([0-9]{15,21}))$`)

// PrefixCommand is a message parsed as "<prefix><name> <args>".
type PrefixCommand struct {
	Name string
	Args string
}

// ParsePrefixCommand splits content into command name and raw arguments.
// ok is false when content does not start with prefix or has no name after it.
func ParsePrefixCommand(content, prefix string) (PrefixCommand, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return PrefixCommand{}, false
	}
	body := strings.TrimSpace(strings.TrimPrefix(content, prefix))
	if body == "" {
		return PrefixCommand{}, false
	}
	name, args, _ := strings.Cut(body, " ")
	// Names never contain the prefix character itself, so ".." or ". warn" are not commands.
	if name == "" || strings.HasPrefix(name, prefix) {
		return PrefixCommand{}, false
	}
	return PrefixCommand{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}, true
}

// ExtractUserID returns the id in a user mention (<@id>, <@!id>) or a bare id.
func ExtractUserID(token string) (string, bool) {
	m := userTokenRe.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], true
}

// ParseTargets consumes leading user mentions or ids from args, returning them in order with the rest of the text.
func ParseTargets(args string) ([]string, string) {
	var targets []string
	rest := strings.TrimSpace(args)
	for rest != "" {
		token, remainder, _ := strings.Cut(rest, " ")
		id, ok := ExtractUserID(token)
		if !ok {
			break
		}
		targets = append(targets, id)
		rest = strings.TrimSpace(remainder)
	}
	return targets, rest
}

// NextToken splits off the first whitespace-separated token.
func NextToken(s string) (string, string) {
	token, rest, _ := strings.Cut(strings.TrimSpace(s), " ")
	return token, strings.TrimSpace(rest)
}

// ParseReason returns the text after ReasonSeparator when present, else the whole trimmed text.
// An empty result means no reason was given.
func ParseReason(s string) string {
	if _, after, found := strings.Cut(s, ReasonSeparator); found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(s)
}
