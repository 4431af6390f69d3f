package model

import "time"

// ProofState is the lifecycle of a pending proof request.
type ProofState string

const (
	ProofInitiated ProofState = "initiated"
	ProofMatched   ProofState = "matched"
	ProofResolved  ProofState = "resolved"
	ProofExpired   ProofState = "expired"
	ProofFailed    ProofState = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s ProofState) Terminal() bool {
	return s == ProofResolved || s == ProofExpired || s == ProofFailed
}

// PendingProofRequest waits for the issuer to reply to the instruction message with files.
type PendingProofRequest struct {
	InstructionMessageID string
	CaseID               string
	GuildID              string
	ExpectedUploaderID   string
	ExpectedChannelID    string
	CreatedAt            time.Time
	ExpiresAt            time.Time
	State                ProofState
}

// Attachment is a file carried by an upload.
type Attachment struct {
	ID          string
	Filename    string
	URL         string
	ContentType string
	Size        int
}

// Upload is an inbound message that may answer a proof request.
type Upload struct {
	MessageID           string
	ChannelID           string
	AuthorID            string
	ReferencedMessageID string
	Attachments         []Attachment
}
