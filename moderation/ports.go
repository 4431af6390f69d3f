package moderation

import (
	"context"
	"time"

	"modcase-bot/model"
)

// ConfigStore reads and writes per-guild moderation configuration.
// Get returns nil, nil for a guild that was never configured.
type ConfigStore interface {
	GetModerationConfig(ctx context.Context, guildID string) (*model.GuildModerationConfig, error)
	SetModerationField(ctx context.Context, guildID string, field model.ConfigField, value string) error
}

// CaseStore persists cases and the per-issuer counters.
// GetCase returns nil, nil when the id is unknown.
type CaseStore interface {
	InsertCase(ctx context.Context, c *model.Case) error
	GetCase(ctx context.Context, caseID string) (*model.Case, error)
	FindCases(ctx context.Context, filter model.CaseFilter) ([]model.Case, error)
	UpdateReason(ctx context.Context, caseID, reason string) error
	SetProofs(ctx context.Context, caseID string, proofs []string) error
	SetLogMessage(ctx context.Context, caseID string, ref model.MessageRef) error
	SetRequestMessage(ctx context.Context, caseID string, ref model.MessageRef) error
	// ResolveBanRequest moves a pending request to state. It reports false when the
	// request was not pending.
	ResolveBanRequest(ctx context.Context, caseID string, state model.RequestState, approverID string) (bool, error)
	ReopenBanRequest(ctx context.Context, caseID string) error
	DeleteCase(ctx context.Context, caseID string) (bool, error)

	IncrementCaseCount(ctx context.Context, guildID, userID string) error
	DecrementCaseCount(ctx context.Context, guildID, userID string) error
	CaseCount(ctx context.Context, guildID, userID string) (int, error)
}

// Members resolves guild members. It returns nil, nil when the user is not in the guild.
type Members interface {
	Member(ctx context.Context, guildID, userID string) (*model.Member, error)
}

// Enforcer applies actions on the platform.
type Enforcer interface {
	Timeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error
	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string) error
	Unban(ctx context.Context, guildID, userID, reason string) error
}

// LogChange describes an in-place edit of an audit-log entry.
type LogChange struct {
	Reason    string
	Deleted   bool
	DeletedBy string
	Proofs    []string
}

// Notifier posts the messages that accompany a case.
type Notifier interface {
	NotifyTarget(ctx context.Context, c model.Case) error
	PostAuditLog(ctx context.Context, channelID string, c model.Case) (*model.MessageRef, error)
	UpdateAuditLog(ctx context.Context, ref model.MessageRef, change LogChange) error
	// LocateAuditLog scans the newest limit messages of channelID for the case's entry.
	LocateAuditLog(ctx context.Context, channelID, caseID string, limit int) (*model.MessageRef, error)
	PostBanRequest(ctx context.Context, channelID string, c model.Case) (*model.MessageRef, error)
	CloseBanRequest(ctx context.Context, ref model.MessageRef, c model.Case) error

	PostProofInstruction(ctx context.Context, channelID, issuerID string, c model.Case) (*model.MessageRef, error)
	// PublishProofs re-posts the files beside ref and returns their durable URLs.
	PublishProofs(ctx context.Context, ref model.MessageRef, c model.Case, files []model.Attachment) ([]string, error)
	ProofsAttached(ctx context.Context, req model.PendingProofRequest, urls []string) error
	ProofRequestExpired(ctx context.Context, req model.PendingProofRequest) error
	// ProofsFailed tells the issuer that a matched upload could not be attached.
	ProofsFailed(ctx context.Context, req model.PendingProofRequest, cause error) error
}
