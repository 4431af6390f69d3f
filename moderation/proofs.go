package moderation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"modcase-bot/model"
)

// DefaultProofTimeout is how long an issuer has to reply with files.
const DefaultProofTimeout = 10 * time.Minute

type pendingProof struct {
	req   model.PendingProofRequest
	timer *time.Timer
}

// Correlator matches file uploads to the proof request they answer. A request is
// keyed by its instruction message; an upload matches when it comes from the
// issuer, in the same channel, as a reply to that message, with at least one file.
type Correlator struct {
	svc *Service
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingProof
}

func NewCorrelator(svc *Service, ttl time.Duration) *Correlator {
	if ttl <= 0 {
		ttl = DefaultProofTimeout
	}
	return &Correlator{
		svc:     svc,
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]*pendingProof),
	}
}

// Initiate posts the instruction message in the proofs channel and starts waiting.
func (c *Correlator) Initiate(ctx context.Context, actor model.Actor, caseID string) (*model.PendingProofRequest, error) {
	cs, cfg, err := c.svc.loadCase(ctx, actor.GuildID, caseID)
	if err != nil {
		return nil, err
	}
	if cs.IssuerID != actor.UserID {
		return nil, fmt.Errorf("%w: only the moderator who issued %s can attach proofs", ErrForbidden, cs.CaseID)
	}
	if cfg == nil || cfg.ActionProofsChannel == "" {
		return nil, fmt.Errorf("%w: no action proofs channel is set", ErrNotConfigured)
	}

	ref, err := c.svc.notifier.PostProofInstruction(ctx, cfg.ActionProofsChannel, actor.UserID, *cs)
	if err != nil {
		return nil, fmt.Errorf("%w: post proof instructions: %v", ErrDownstream, err)
	}
	if ref == nil {
		return nil, fmt.Errorf("%w: proof instructions were not posted", ErrDownstream)
	}

	now := c.now()
	req := model.PendingProofRequest{
		InstructionMessageID: ref.MessageID,
		CaseID:               cs.CaseID,
		GuildID:              cs.GuildID,
		ExpectedUploaderID:   actor.UserID,
		ExpectedChannelID:    ref.ChannelID,
		CreatedAt:            now,
		ExpiresAt:            now.Add(c.ttl),
		State:                model.ProofInitiated,
	}
	entry := &pendingProof{req: req}

	c.mu.Lock()
	c.pending[req.InstructionMessageID] = entry
	entry.timer = time.AfterFunc(c.ttl, func() { c.expire(req.InstructionMessageID) })
	c.mu.Unlock()

	log.Info().Str("case_id", cs.CaseID).Str("instruction_id", req.InstructionMessageID).Msg("waiting for proofs")
	return &req, nil
}

// Match offers an upload to the pending requests. Uploads that do not satisfy
// every condition are ignored and report matched false. A matched upload always
// ends its request; err is set when the files could not be attached.
func (c *Correlator) Match(ctx context.Context, up model.Upload) (caseID string, matched bool, err error) {
	if up.ReferencedMessageID == "" || len(up.Attachments) == 0 {
		return "", false, nil
	}

	c.mu.Lock()
	entry, ok := c.pending[up.ReferencedMessageID]
	if !ok || entry.req.State != model.ProofInitiated ||
		entry.req.ExpectedUploaderID != up.AuthorID ||
		entry.req.ExpectedChannelID != up.ChannelID {
		c.mu.Unlock()
		return "", false, nil
	}
	if !c.now().Before(entry.req.ExpiresAt) {
		req := c.markExpired(entry)
		c.mu.Unlock()
		c.announceExpiry(req)
		return "", false, nil
	}
	entry.req.State = model.ProofMatched
	if entry.timer != nil {
		entry.timer.Stop()
	}
	req := entry.req
	c.mu.Unlock()

	urls, err := c.svc.AttachProofs(ctx, req.CaseID, up.Attachments)

	c.mu.Lock()
	if err != nil {
		entry.req.State = model.ProofFailed
	} else {
		entry.req.State = model.ProofResolved
	}
	req = entry.req
	c.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Str("case_id", req.CaseID).Msg("failed to attach proofs")
		if nerr := c.svc.notifier.ProofsFailed(ctx, req, err); nerr != nil {
			log.Warn().Err(nerr).Str("case_id", req.CaseID).Msg("failed to report proof failure")
		}
		return req.CaseID, true, err
	}
	if err := c.svc.notifier.ProofsAttached(ctx, req, urls); err != nil {
		log.Warn().Err(err).Str("case_id", req.CaseID).Msg("failed to acknowledge proofs")
	}
	return req.CaseID, true, nil
}

// expire runs when the request timer fires. The deadline is judged by c.now, so
// a timer that fires early is re-armed for the time that is left.
func (c *Correlator) expire(instructionID string) {
	c.mu.Lock()
	entry, ok := c.pending[instructionID]
	if !ok || entry.req.State != model.ProofInitiated {
		c.mu.Unlock()
		return
	}
	if left := entry.req.ExpiresAt.Sub(c.now()); left > 0 {
		entry.timer = time.AfterFunc(left, func() { c.expire(instructionID) })
		c.mu.Unlock()
		return
	}
	req := c.markExpired(entry)
	c.mu.Unlock()
	c.announceExpiry(req)
}

// markExpired must be called with c.mu held.
func (c *Correlator) markExpired(entry *pendingProof) model.PendingProofRequest {
	entry.req.State = model.ProofExpired
	if entry.timer != nil {
		entry.timer.Stop()
	}
	return entry.req
}

func (c *Correlator) announceExpiry(req model.PendingProofRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	if err := c.svc.notifier.ProofRequestExpired(ctx, req); err != nil {
		log.Warn().Err(err).Str("case_id", req.CaseID).Msg("failed to announce proof timeout")
	}
	log.Info().Str("case_id", req.CaseID).Msg("proof request expired")
}

// State returns the current state of the request behind instructionID.
func (c *Correlator) State(instructionID string) (model.ProofState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.pending[instructionID]
	if !ok {
		return "", false
	}
	return entry.req.State, true
}

// Pending returns how many requests are still waiting for an upload.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, entry := range c.pending {
		if entry.req.State == model.ProofInitiated {
			n++
		}
	}
	return n
}

// Sweep forgets requests that reached a terminal state.
func (c *Correlator) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for id, entry := range c.pending {
		if entry.req.State.Terminal() {
			delete(c.pending, id)
			removed++
		}
	}
	return removed
}

// Stop cancels every outstanding expiry timer.
func (c *Correlator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range c.pending {
		if entry.timer != nil {
			entry.timer.Stop()
		}
	}
}
