package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Option names shared by the slash definitions and the handlers that read them.
const (
	OptUser     = "user"
	OptReason   = "reason"
	OptDuration = "duration"
	OptUserID   = "user_id"
	OptCaseID   = "case_id"
	OptQuery    = "query"
	OptStatus   = "status"
	OptCommand  = "command"
)

// TargetOptionNames are the user options of a batch command, in order.
var TargetOptionNames = []string{OptUser, "user2", "user3", "user4", "user5"}

var (
	manageGuild   int64 = discordgo.PermissionManageGuild
	administrator int64 = discordgo.PermissionAdministrator
	dmDisabled          = false
)

func targetOptions(verb string, n int) []*discordgo.ApplicationCommandOption {
	opts := make([]*discordgo.ApplicationCommandOption, 0, n)
	for i, name := range TargetOptionNames[:n] {
		desc := fmt.Sprintf("User to %s", verb)
		if i > 0 {
			desc = fmt.Sprintf("Additional user to %s", verb)
		}
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        name,
			Description: desc,
			Required:    i == 0,
		})
	}
	return opts
}

func reasonOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptReason,
		Description: "Reason for the action",
		Required:    required,
		MaxLength:   1000,
	}
}

// Required options must come first, so optional targets are placed after them.
func batchCommand(name, description, verb string, extra ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	targets := targetOptions(verb, len(TargetOptionNames))
	opts := []*discordgo.ApplicationCommandOption{targets[0]}
	var optional []*discordgo.ApplicationCommandOption
	for _, o := range extra {
		if o.Required {
			opts = append(opts, o)
		} else {
			optional = append(optional, o)
		}
	}
	opts = append(opts, optional...)
	opts = append(opts, targets[1:]...)
	return &discordgo.ApplicationCommand{
		Name:         name,
		Description:  description,
		DMPermission: &dmDisabled,
		Options:      opts,
	}
}

var (
	Warn    = batchCommand("warn", "Warn up to 5 users", "warn", reasonOption(false))
	Kick    = batchCommand("kick", "Kick up to 5 users", "kick", reasonOption(false))
	Ban     = batchCommand("ban", "Ban up to 5 users", "ban", reasonOption(false))
	Timeout = batchCommand("timeout", "Timeout up to 5 users", "timeout",
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        OptDuration,
			Description: "Duration, e.g. 30m, 2h, 1d (max 28d)",
			Required:    true,
		},
		reasonOption(false),
	)
	BanRequest = batchCommand("banrequest", "Request a ban for up to 5 users", "request a ban for", reasonOption(true))

	Unban = &discordgo.ApplicationCommand{
		Name:         "unban",
		Description:  "Unban a user",
		DMPermission: &dmDisabled,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptUserID,
				Description: "ID of the user to unban",
				Required:    true,
			},
			reasonOption(false),
		},
	}

	Case = &discordgo.ApplicationCommand{
		Name:         "case",
		Description:  "View a case by id, a user's cases, or every case in the server",
		DMPermission: &dmDisabled,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptQuery,
				Description: "Case id, user mention or user id",
				Required:    false,
			},
		},
	}

	ModCases = &discordgo.ApplicationCommand{
		Name:         "modcases",
		Description:  "View cases you issued, or cases issued by another moderator",
		DMPermission: &dmDisabled,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        OptUser,
				Description: "Moderator to look up",
				Required:    false,
			},
		},
	}

	EditCase = &discordgo.ApplicationCommand{
		Name:         "editcase",
		Description:  "Edit the reason of a case or delete it",
		DMPermission: &dmDisabled,
		Options: []*discordgo.ApplicationCommandOption{
			caseIDOption("Case to edit"),
		},
	}

	AttachProofs = &discordgo.ApplicationCommand{
		Name:         "attachproofs",
		Description:  "Attach proof images to a case you issued",
		DMPermission: &dmDisabled,
		Options: []*discordgo.ApplicationCommandOption{
			caseIDOption("Case to attach proofs to"),
		},
	}

	PunishmentPanel = &discordgo.ApplicationCommand{
		Name:                     "punishment-panel",
		Description:              "Post a panel for issuing punishments from a menu",
		DefaultMemberPermissions: &administrator,
		DMPermission:             &dmDisabled,
	}

	Config = &discordgo.ApplicationCommand{
		Name:                     "config",
		Description:              "Configure moderation roles and channels",
		DefaultMemberPermissions: &manageGuild,
		DMPermission:             &dmDisabled,
	}

	Help = &discordgo.ApplicationCommand{
		Name:        "help",
		Description: "List commands",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         OptCommand,
				Description:  "Command to describe",
				Required:     false,
				Autocomplete: true,
			},
		},
	}

	AFK = &discordgo.ApplicationCommand{
		Name:         "afk",
		Description:  "Set an AFK status",
		DMPermission: &dmDisabled,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptStatus,
				Description: "Status shown to people who mention you",
				Required:    false,
				MaxLength:   100,
			},
		},
	}

	MemberCount = &discordgo.ApplicationCommand{
		Name:         "membercount",
		Description:  "Show the server member count",
		DMPermission: &dmDisabled,
	}

	Stats = &discordgo.ApplicationCommand{
		Name:        "stats",
		Description: "Show host and process statistics",
	}
)

func caseIDOption(desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         OptCaseID,
		Description:  desc,
		Required:     true,
		MinLength:    intPtr(6),
		MaxLength:    6,
		Autocomplete: true,
	}
}

func intPtr(v int) *int { return &v }

// GenerateCommands returns the slash definitions of every registered command.
func GenerateCommands() []*discordgo.ApplicationCommand {
	cmds := make([]*discordgo.ApplicationCommand, 0, len(registry))
	for _, c := range registry {
		if c.Slash != nil {
			cmds = append(cmds, c.Slash)
		}
	}
	return cmds
}
