package model

import "time"

// AFKMention records a message that pinged an AFK user.
type AFKMention struct {
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	At         time.Time `json:"at"`
	Link       string    `json:"link"`
}

// AFKStatus is persisted per user while they are away.
type AFKStatus struct {
	UserID   string       `json:"user_id"`
	Status   string       `json:"status"`
	Since    time.Time    `json:"since"`
	Mentions []AFKMention `json:"mentions"`
}
