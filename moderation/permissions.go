package moderation

import "modcase-bot/model"

// CanIssue reports whether actor holds the role tier kind requires.
// Tier 1 (warn/mute/request role) covers warn, timeout and request_ban.
// Tier 2 (kick/ban role) covers kick, ban, unban and also request_ban.
func CanIssue(actor model.Actor, cfg *model.GuildModerationConfig, kind model.CaseKind) bool {
	if cfg == nil {
		return false
	}
	switch kind {
	case model.KindWarn, model.KindTimeout:
		return actor.HasRole(cfg.WarnMuteRequestRole)
	case model.KindKick, model.KindBan, model.KindUnban:
		return actor.HasRole(cfg.KickBanRole)
	case model.KindRequestBan:
		return actor.HasRole(cfg.WarnMuteRequestRole) || actor.HasRole(cfg.KickBanRole)
	}
	return false
}

// CanApprove reports whether actor may approve or abort ban requests.
func CanApprove(actor model.Actor, cfg *model.GuildModerationConfig) bool {
	return cfg != nil && actor.HasRole(cfg.KickBanRole)
}

// IsStaff is true for administrators, holders of the whitelist role and tier 2 moderators.
func IsStaff(actor model.Actor, cfg *model.GuildModerationConfig) bool {
	if actor.Administrator {
		return true
	}
	if cfg == nil {
		return false
	}
	return actor.HasRole(cfg.WhitelistRole) || actor.HasRole(cfg.KickBanRole)
}

// Protected reports whether member cannot be targeted by moderation actions.
func Protected(member *model.Member, cfg *model.GuildModerationConfig) bool {
	if member == nil {
		return false
	}
	return member.Administrator || member.HasRole(cfg.WhitelistRole)
}
