package model

// Actor is the member invoking a moderation operation.
type Actor struct {
	GuildID       string
	UserID        string
	Roles         []string
	Administrator bool
	// ManageGuild is set when the actor may change server settings.
	ManageGuild bool
}

// HasRole reports whether the actor holds roleID. An empty roleID never matches.
func (a Actor) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, r := range a.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// Member is the subset of a guild member the moderation core needs.
type Member struct {
	UserID        string
	Roles         []string
	Administrator bool
}

// HasRole reports whether the member holds roleID.
func (m *Member) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}
