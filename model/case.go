package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// CaseKind is the kind of moderation action a Case records.
type CaseKind string

const (
	KindWarn       CaseKind = "warn"
	KindTimeout    CaseKind = "timeout"
	KindKick       CaseKind = "kick"
	KindBan        CaseKind = "ban"
	KindUnban      CaseKind = "unban"
	KindRequestBan CaseKind = "request_ban"
)

// CaseKinds lists every kind in display order.
var CaseKinds = []CaseKind{KindWarn, KindTimeout, KindKick, KindBan, KindUnban, KindRequestBan}

// ParseCaseKind accepts the stored value as well as the command aliases.
func ParseCaseKind(s string) (CaseKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warn":
		return KindWarn, true
	case "timeout", "mute":
		return KindTimeout, true
	case "kick":
		return KindKick, true
	case "ban":
		return KindBan, true
	case "unban":
		return KindUnban, true
	case "request_ban", "banrequest", "request-ban", "ban_request":
		return KindRequestBan, true
	}
	return "", false
}

// Title is the human label used in embeds.
func (k CaseKind) Title() string {
	switch k {
	case KindWarn:
		return "Warn"
	case KindTimeout:
		return "Timeout"
	case KindKick:
		return "Kick"
	case KindBan:
		return "Ban"
	case KindUnban:
		return "Unban"
	case KindRequestBan:
		return "Ban Request"
	}
	return string(k)
}

// Enforced reports whether the kind changes the target's standing on the platform.
func (k CaseKind) Enforced() bool {
	return k == KindTimeout || k == KindKick || k == KindBan || k == KindUnban
}

// RequestState tracks the approval of a request_ban case.
type RequestState string

const (
	RequestNone     RequestState = ""
	RequestPending  RequestState = "pending"
	RequestApproved RequestState = "approved"
	RequestAborted  RequestState = "aborted"
)

// StringList is stored as a JSON array in a TEXT column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// Case is one recorded moderation action. Stored in the 'cases' table.
type Case struct {
	CaseID          string       `db:"case_id"`
	GuildID         string       `db:"guild_id"`
	TargetUserID    string       `db:"target_user_id"`
	Kind            CaseKind     `db:"kind"`
	Reason          string       `db:"reason"`
	IssuerID        string       `db:"issuer_id"`
	CreatedAt       int64        `db:"created_at"`
	DurationSeconds *int64       `db:"duration_seconds"` // timeout only
	Proofs          StringList   `db:"proofs"`
	Approved        bool         `db:"approved"`
	ApproverID      string       `db:"approver_id"`
	RequestState    RequestState `db:"request_state"`

	LogChannelID     string `db:"log_channel_id"`
	LogMessageID     string `db:"log_message_id"`
	RequestChannelID string `db:"request_channel_id"`
	RequestMessageID string `db:"request_message_id"`
}

// LogRef returns the stored audit-log message, if any.
func (c *Case) LogRef() *MessageRef {
	if c.LogChannelID == "" || c.LogMessageID == "" {
		return nil
	}
	return &MessageRef{ChannelID: c.LogChannelID, MessageID: c.LogMessageID}
}

// RequestRef returns the stored ban request post, if any.
func (c *Case) RequestRef() *MessageRef {
	if c.RequestChannelID == "" || c.RequestMessageID == "" {
		return nil
	}
	return &MessageRef{ChannelID: c.RequestChannelID, MessageID: c.RequestMessageID}
}

// CaseFilter selects cases for listing. Empty fields match everything.
type CaseFilter struct {
	GuildID      string
	TargetUserID string
	IssuerID     string
}

// MessageRef points at a posted platform message.
type MessageRef struct {
	ChannelID string
	MessageID string
}
