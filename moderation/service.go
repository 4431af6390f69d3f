package moderation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"modcase-bot/model"
	"modcase-bot/utils/validate"
)

const (
	DefaultReason       = "No reason given"
	MaxReasonLength     = 1000
	DefaultLogScanLimit = 500
	DeleteConfirmWindow = 60 * time.Second

	sideEffectTimeout = 30 * time.Second
)

// Deps are the adapters a Service runs against.
type Deps struct {
	Configs  ConfigStore
	Cases    CaseStore
	Members  Members
	Enforcer Enforcer
	Notifier Notifier
	Limiter  *Limiter
}

// Service owns the case lifecycle: creation, edits, deletion and ban request resolution.
type Service struct {
	configs  ConfigStore
	cases    CaseStore
	members  Members
	enforcer Enforcer
	notifier Notifier
	limiter  *Limiter

	logScanLimit int
	now          func() time.Time
	newID        func() string

	mu        sync.Mutex
	proposals map[string]*DeleteProposal

	effects sync.WaitGroup
}

func NewService(d Deps) *Service {
	limiter := d.Limiter
	if limiter == nil {
		limiter = NewLimiter(DefaultActionLimit, DefaultActionLimit, DefaultRateWindow)
	}
	return &Service{
		configs:      d.Configs,
		cases:        d.Cases,
		members:      d.Members,
		enforcer:     d.Enforcer,
		notifier:     d.Notifier,
		limiter:      limiter,
		logScanLimit: DefaultLogScanLimit,
		now:          time.Now,
		newID:        NewCaseID,
		proposals:    make(map[string]*DeleteProposal),
	}
}

// SetLogScanLimit bounds the fallback search for audit-log entries.
func (s *Service) SetLogScanLimit(n int) {
	if n > 0 {
		s.logScanLimit = n
	}
}

func (s *Service) Limiter() *Limiter {
	return s.limiter
}

// Drain blocks until every dispatched side effect has finished.
func (s *Service) Drain() {
	s.effects.Wait()
}

// CaseRequest asks for a single case against one target.
type CaseRequest struct {
	Issuer       model.Actor
	TargetUserID string         `validate:"required,snowflake"`
	Kind         model.CaseKind `validate:"required,case_kind"`
	Reason       string         `validate:"max=1000"`
	Duration     time.Duration
}

// Outcome is the result of a successful case creation. Warnings carry
// ErrDownstream failures that happened after the case was written.
type Outcome struct {
	Case            model.Case
	Enforced        bool
	Warnings        []error
	MissingChannels []model.ConfigField
}

// CreateCase validates, persists and enforces a single moderation action. Kicks
// and bans count against the issuer's rate limit as they do in Punish.
func (s *Service) CreateCase(ctx context.Context, req CaseRequest) (*Outcome, error) {
	if err := checkCommand(req.Issuer, req.Kind, req.Duration); err != nil {
		return nil, err
	}
	cfg, err := s.authorize(ctx, req.Issuer, req.Kind)
	if err != nil {
		return nil, err
	}
	limited := s.limiter.Limited(req.Kind)
	if limited {
		if ok, _ := s.limiter.Check(req.Issuer.UserID, req.Kind); !ok {
			return nil, fmt.Errorf("%w: you have used all of your %s actions for now", ErrRateLimited, req.Kind.Title())
		}
	}
	out, err := s.createCase(ctx, cfg, req)
	if err == nil && limited && out.Enforced {
		s.limiter.Record(req.Issuer.UserID, req.Kind)
	}
	return out, err
}

// checkCommand validates the parts of a request shared by every target.
func checkCommand(issuer model.Actor, kind model.CaseKind, duration time.Duration) error {
	if !validate.IsSnowflake(issuer.GuildID) || !validate.IsSnowflake(issuer.UserID) {
		return fmt.Errorf("%w: missing guild or issuer", ErrInvalidInput)
	}
	if _, ok := model.ParseCaseKind(string(kind)); !ok {
		return fmt.Errorf("%w: unknown punishment kind %q", ErrInvalidInput, kind)
	}
	if kind == model.KindTimeout {
		if duration <= 0 {
			return fmt.Errorf("%w: a timeout needs a duration", ErrInvalidInput)
		}
		if duration > MaxTimeout {
			return fmt.Errorf("%w: timeouts cannot exceed 28 days", ErrInvalidInput)
		}
	}
	return nil
}

// authorize loads the guild config and checks the issuer's tier.
func (s *Service) authorize(ctx context.Context, issuer model.Actor, kind model.CaseKind) (*model.GuildModerationConfig, error) {
	cfg, err := s.configs.GetModerationConfig(ctx, issuer.GuildID)
	if err != nil {
		return nil, fmt.Errorf("load moderation config: %w", err)
	}
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if !CanIssue(issuer, cfg, kind) {
		return nil, fmt.Errorf("%w: %s requires a moderation role", ErrForbidden, kind.Title())
	}
	return cfg, nil
}

func (s *Service) createCase(ctx context.Context, cfg *model.GuildModerationConfig, req CaseRequest) (*Outcome, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.TargetUserID == req.Issuer.UserID {
		return nil, fmt.Errorf("%w: you cannot target yourself", ErrInvalidInput)
	}

	if req.Kind != model.KindUnban {
		member, err := s.members.Member(ctx, req.Issuer.GuildID, req.TargetUserID)
		if err != nil {
			return nil, fmt.Errorf("%w: resolve member: %v", ErrDownstream, err)
		}
		if Protected(member, cfg) {
			return nil, ErrTargetProtected
		}
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = DefaultReason
	}
	now := s.now()
	c := model.Case{
		CaseID:       s.newID(),
		GuildID:      req.Issuer.GuildID,
		TargetUserID: req.TargetUserID,
		Kind:         req.Kind,
		Reason:       reason,
		IssuerID:     req.Issuer.UserID,
		CreatedAt:    now.Unix(),
	}
	if req.Kind == model.KindTimeout {
		secs := int64(req.Duration / time.Second)
		c.DurationSeconds = &secs
	}
	if req.Kind == model.KindRequestBan {
		c.RequestState = model.RequestPending
	}

	out := &Outcome{MissingChannels: cfg.MissingChannels()}

	// Unbanning someone who is not banned must not leave a case behind.
	if req.Kind == model.KindUnban {
		if err := s.enforcer.Unban(ctx, c.GuildID, c.TargetUserID, auditReason(c)); err != nil {
			return nil, fmt.Errorf("%w: unban %s: %v", ErrDownstream, c.TargetUserID, err)
		}
		out.Enforced = true
	}

	if err := s.cases.InsertCase(ctx, &c); err != nil {
		return nil, fmt.Errorf("save case: %w", err)
	}
	logger := log.With().Str("guild_id", c.GuildID).Str("case_id", c.CaseID).Str("issuer_id", c.IssuerID).Logger()

	if err := s.cases.IncrementCaseCount(ctx, c.GuildID, c.TargetUserID); err != nil {
		logger.Warn().Err(err).Msg("failed to increment case counter")
	}

	// The DM goes out before a kick or ban while the user still shares a server with the bot.
	if notifiesTarget(c.Kind) {
		if err := s.notifier.NotifyTarget(ctx, c); err != nil {
			logger.Info().Err(err).Msg("could not DM target")
			out.Warnings = append(out.Warnings, fmt.Errorf("%w: could not DM the user", ErrDownstream))
		}
	}

	if c.Kind != model.KindUnban {
		if err := s.enforce(ctx, c, now); err != nil {
			logger.Warn().Err(err).Str("kind", string(c.Kind)).Msg("enforcement failed")
			out.Warnings = append(out.Warnings, fmt.Errorf("%w: %s failed: %v", ErrDownstream, c.Kind.Title(), err))
		} else if c.Kind.Enforced() {
			out.Enforced = true
		}
	}

	s.dispatch(*cfg, c)

	logger.Info().Str("kind", string(c.Kind)).Str("target_id", c.TargetUserID).Msg("case created")
	out.Case = c
	return out, nil
}

func notifiesTarget(kind model.CaseKind) bool {
	switch kind {
	case model.KindWarn, model.KindTimeout, model.KindKick, model.KindBan:
		return true
	}
	return false
}

func (s *Service) enforce(ctx context.Context, c model.Case, now time.Time) error {
	switch c.Kind {
	case model.KindTimeout:
		until := now.Add(time.Duration(*c.DurationSeconds) * time.Second)
		return s.enforcer.Timeout(ctx, c.GuildID, c.TargetUserID, until, auditReason(c))
	case model.KindKick:
		return s.enforcer.Kick(ctx, c.GuildID, c.TargetUserID, auditReason(c))
	case model.KindBan:
		return s.enforcer.Ban(ctx, c.GuildID, c.TargetUserID, auditReason(c))
	}
	return nil
}

func auditReason(c model.Case) string {
	return fmt.Sprintf("[%s] %s", c.CaseID, c.Reason)
}

// dispatch posts the audit-log entry and the ban request in the background and
// stores their message references on the case.
func (s *Service) dispatch(cfg model.GuildModerationConfig, c model.Case) {
	s.effects.Add(1)
	go func() {
		defer s.effects.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		logger := log.With().Str("guild_id", c.GuildID).Str("case_id", c.CaseID).Logger()

		if cfg.LogChannel != "" {
			ref, err := s.notifier.PostAuditLog(ctx, cfg.LogChannel, c)
			if err != nil {
				logger.Warn().Err(err).Msg("failed to post audit log")
			} else if ref != nil {
				if err := s.cases.SetLogMessage(ctx, c.CaseID, *ref); err != nil {
					logger.Warn().Err(err).Msg("failed to store audit log reference")
				}
			}
		}

		if c.Kind == model.KindRequestBan && cfg.BanRequestChannel != "" {
			ref, err := s.notifier.PostBanRequest(ctx, cfg.BanRequestChannel, c)
			if err != nil {
				logger.Warn().Err(err).Msg("failed to post ban request")
			} else if ref != nil {
				if err := s.cases.SetRequestMessage(ctx, c.CaseID, *ref); err != nil {
					logger.Warn().Err(err).Msg("failed to store ban request reference")
				}
			}
		}
	}()
}

// loadCase fetches a case scoped to guildID along with the guild's config (which may be nil).
func (s *Service) loadCase(ctx context.Context, guildID, caseID string) (*model.Case, *model.GuildModerationConfig, error) {
	id := NormalizeCaseID(caseID)
	if !ValidCaseID(id) {
		return nil, nil, fmt.Errorf("%w: %q", ErrNotFound, caseID)
	}
	c, err := s.cases.GetCase(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load case: %w", err)
	}
	if c == nil || c.GuildID != guildID {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cfg, err := s.configs.GetModerationConfig(ctx, guildID)
	if err != nil {
		return nil, nil, fmt.Errorf("load moderation config: %w", err)
	}
	return c, cfg, nil
}

// Case returns a single case of guildID.
func (s *Service) Case(ctx context.Context, guildID, caseID string) (*model.Case, error) {
	c, _, err := s.loadCase(ctx, guildID, caseID)
	return c, err
}

// CaseCount returns how many cases have been opened against userID in guildID.
func (s *Service) CaseCount(ctx context.Context, guildID, userID string) (int, error) {
	return s.cases.CaseCount(ctx, guildID, userID)
}

// ListCases returns the matching cases newest first, split into pages.
func (s *Service) ListCases(ctx context.Context, filter model.CaseFilter, pageSize int) (*Pager[model.Case], error) {
	if filter.GuildID == "" {
		return nil, fmt.Errorf("%w: guild is required", ErrInvalidInput)
	}
	cases, err := s.cases.FindCases(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return NewPager(cases, pageSize), nil
}

// EditReason replaces a case's reason. Only the issuer or staff may edit.
func (s *Service) EditReason(ctx context.Context, actor model.Actor, caseID, reason string) (*model.Case, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason cannot be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return nil, fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, MaxReasonLength)
	}
	c, cfg, err := s.loadCase(ctx, actor.GuildID, caseID)
	if err != nil {
		return nil, err
	}
	if c.IssuerID != actor.UserID && !IsStaff(actor, cfg) {
		return nil, ErrForbidden
	}
	if err := s.cases.UpdateReason(ctx, c.CaseID, reason); err != nil {
		return nil, fmt.Errorf("update reason: %w", err)
	}
	c.Reason = reason
	s.updateLog(cfg, *c, LogChange{Reason: reason})
	return c, nil
}

// DeleteProposal is the first half of a two-step delete.
type DeleteProposal struct {
	Token       string
	CaseID      string
	GuildID     string
	RequestedBy string
	ExpiresAt   time.Time
}

// ProposeDelete checks that actor may delete the case and returns a short-lived token
// that ConfirmDelete consumes.
func (s *Service) ProposeDelete(ctx context.Context, actor model.Actor, caseID string) (*DeleteProposal, error) {
	c, cfg, err := s.loadCase(ctx, actor.GuildID, caseID)
	if err != nil {
		return nil, err
	}
	if c.IssuerID != actor.UserID && !IsStaff(actor, cfg) {
		return nil, ErrForbidden
	}
	p := &DeleteProposal{
		Token:       uuid.NewString(),
		CaseID:      c.CaseID,
		GuildID:     c.GuildID,
		RequestedBy: actor.UserID,
		ExpiresAt:   s.now().Add(DeleteConfirmWindow),
	}
	s.mu.Lock()
	s.proposals[p.Token] = p
	s.mu.Unlock()
	return p, nil
}

// CancelDelete discards a proposal. It reports whether one was pending.
func (s *Service) CancelDelete(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.proposals[token]
	delete(s.proposals, token)
	return ok
}

// ConfirmDelete deletes the case named by a live proposal and returns it.
func (s *Service) ConfirmDelete(ctx context.Context, actor model.Actor, token string) (*model.Case, error) {
	s.mu.Lock()
	p, ok := s.proposals[token]
	delete(s.proposals, token)
	s.mu.Unlock()

	if !ok || s.now().After(p.ExpiresAt) {
		return nil, ErrExpired
	}
	c, cfg, err := s.loadCase(ctx, actor.GuildID, p.CaseID)
	if err != nil {
		return nil, err
	}
	if c.IssuerID != actor.UserID && !IsStaff(actor, cfg) {
		return nil, ErrForbidden
	}

	deleted, err := s.cases.DeleteCase(ctx, c.CaseID)
	if err != nil {
		return nil, fmt.Errorf("delete case: %w", err)
	}
	if !deleted {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, c.CaseID)
	}
	if err := s.cases.DecrementCaseCount(ctx, c.GuildID, c.TargetUserID); err != nil {
		log.Warn().Err(err).Str("case_id", c.CaseID).Msg("failed to decrement case counter")
	}
	s.updateLog(cfg, *c, LogChange{Deleted: true, DeletedBy: actor.UserID})

	log.Info().Str("guild_id", c.GuildID).Str("case_id", c.CaseID).Str("deleted_by", actor.UserID).Msg("case deleted")
	return c, nil
}

// SweepProposals forgets delete proposals that were never confirmed.
func (s *Service) SweepProposals() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for token, p := range s.proposals {
		if now.After(p.ExpiresAt) {
			delete(s.proposals, token)
			removed++
		}
	}
	return removed
}

// ApproveBanRequest bans the target of a pending request. The request is claimed before
// the ban so two approvers cannot both execute it; a failed ban releases the claim.
func (s *Service) ApproveBanRequest(ctx context.Context, approver model.Actor, caseID string) (*model.Case, error) {
	c, cfg, err := s.loadBanRequest(ctx, approver, caseID)
	if err != nil {
		return nil, err
	}
	claimed, err := s.cases.ResolveBanRequest(ctx, c.CaseID, model.RequestApproved, approver.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve ban request: %w", err)
	}
	if !claimed {
		return nil, ErrAlreadyResolved
	}
	c.RequestState = model.RequestApproved
	c.Approved = true
	c.ApproverID = approver.UserID

	if err := s.notifier.NotifyTarget(ctx, *c); err != nil {
		log.Info().Err(err).Str("case_id", c.CaseID).Msg("could not DM target")
	}
	if err := s.enforcer.Ban(ctx, c.GuildID, c.TargetUserID, auditReason(*c)); err != nil {
		if rerr := s.cases.ReopenBanRequest(ctx, c.CaseID); rerr != nil {
			log.Error().Err(rerr).Str("case_id", c.CaseID).Msg("failed to reopen ban request")
		}
		return nil, fmt.Errorf("%w: ban %s: %v", ErrDownstream, c.TargetUserID, err)
	}

	s.closeRequest(cfg, *c)
	log.Info().Str("guild_id", c.GuildID).Str("case_id", c.CaseID).Str("approver_id", approver.UserID).Msg("ban request approved")
	return c, nil
}

// AbortBanRequest closes a pending request without banning.
func (s *Service) AbortBanRequest(ctx context.Context, approver model.Actor, caseID string) (*model.Case, error) {
	c, cfg, err := s.loadBanRequest(ctx, approver, caseID)
	if err != nil {
		return nil, err
	}
	claimed, err := s.cases.ResolveBanRequest(ctx, c.CaseID, model.RequestAborted, approver.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve ban request: %w", err)
	}
	if !claimed {
		return nil, ErrAlreadyResolved
	}
	c.RequestState = model.RequestAborted
	c.ApproverID = approver.UserID

	s.closeRequest(cfg, *c)
	log.Info().Str("guild_id", c.GuildID).Str("case_id", c.CaseID).Str("approver_id", approver.UserID).Msg("ban request aborted")
	return c, nil
}

func (s *Service) loadBanRequest(ctx context.Context, approver model.Actor, caseID string) (*model.Case, *model.GuildModerationConfig, error) {
	c, cfg, err := s.loadCase(ctx, approver.GuildID, caseID)
	if err != nil {
		return nil, nil, err
	}
	if c.Kind != model.KindRequestBan {
		return nil, nil, fmt.Errorf("%w: case %s is not a ban request", ErrInvalidInput, c.CaseID)
	}
	if !cfg.Configured() {
		return nil, nil, ErrNotConfigured
	}
	if !CanApprove(approver, cfg) {
		return nil, nil, fmt.Errorf("%w: approving ban requests requires the kick/ban role", ErrForbidden)
	}
	return c, cfg, nil
}

func (s *Service) closeRequest(cfg *model.GuildModerationConfig, c model.Case) {
	s.effects.Add(1)
	go func() {
		defer s.effects.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		ref := c.RequestRef()
		if ref == nil && cfg != nil && cfg.BanRequestChannel != "" {
			found, err := s.notifier.LocateAuditLog(ctx, cfg.BanRequestChannel, c.CaseID, s.logScanLimit)
			if err != nil {
				log.Warn().Err(err).Str("case_id", c.CaseID).Msg("failed to locate ban request post")
			}
			ref = found
		}
		if ref == nil {
			return
		}
		if err := s.notifier.CloseBanRequest(ctx, *ref, c); err != nil {
			log.Warn().Err(err).Str("case_id", c.CaseID).Msg("failed to close ban request post")
		}
	}()
}

// logRef returns the case's audit-log message, falling back to a bounded channel scan.
func (s *Service) logRef(ctx context.Context, cfg *model.GuildModerationConfig, c model.Case) *model.MessageRef {
	if ref := c.LogRef(); ref != nil {
		return ref
	}
	if cfg == nil || cfg.LogChannel == "" {
		return nil
	}
	ref, err := s.notifier.LocateAuditLog(ctx, cfg.LogChannel, c.CaseID, s.logScanLimit)
	if err != nil {
		log.Warn().Err(err).Str("case_id", c.CaseID).Msg("failed to locate audit log entry")
		return nil
	}
	if ref != nil {
		if err := s.cases.SetLogMessage(ctx, c.CaseID, *ref); err != nil {
			log.Warn().Err(err).Str("case_id", c.CaseID).Msg("failed to store audit log reference")
		}
	}
	return ref
}

func (s *Service) updateLog(cfg *model.GuildModerationConfig, c model.Case, change LogChange) {
	s.effects.Add(1)
	go func() {
		defer s.effects.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		ref := s.logRef(ctx, cfg, c)
		if ref == nil {
			return
		}
		if err := s.notifier.UpdateAuditLog(ctx, *ref, change); err != nil {
			log.Warn().Err(err).Str("case_id", c.CaseID).Msg("failed to update audit log entry")
		}
	}()
}

// AttachProofs publishes files next to the case's audit-log entry and replaces
// the stored proof list with the resulting URLs.
func (s *Service) AttachProofs(ctx context.Context, caseID string, files []model.Attachment) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to attach", ErrInvalidInput)
	}
	c, err := s.cases.GetCase(ctx, NormalizeCaseID(caseID))
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, caseID)
	}
	cfg, err := s.configs.GetModerationConfig(ctx, c.GuildID)
	if err != nil {
		return nil, fmt.Errorf("load moderation config: %w", err)
	}
	logger := log.With().Str("guild_id", c.GuildID).Str("case_id", c.CaseID).Logger()

	urls := make([]string, 0, len(files))
	for _, f := range files {
		urls = append(urls, f.URL)
	}

	ref := s.logRef(ctx, cfg, *c)
	if ref != nil {
		published, err := s.notifier.PublishProofs(ctx, *ref, *c, files)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to publish proofs to audit log")
		} else if len(published) > 0 {
			urls = published
		}
	}

	if err := s.cases.SetProofs(ctx, c.CaseID, urls); err != nil {
		return nil, fmt.Errorf("save proofs: %w", err)
	}

	if ref != nil {
		if err := s.notifier.UpdateAuditLog(ctx, *ref, LogChange{Proofs: urls}); err != nil {
			logger.Warn().Err(err).Msg("failed to list proofs on audit log entry")
		}
	}

	if c.Kind == model.KindRequestBan {
		rref := c.RequestRef()
		if rref == nil && cfg != nil && cfg.BanRequestChannel != "" {
			rref, _ = s.notifier.LocateAuditLog(ctx, cfg.BanRequestChannel, c.CaseID, s.logScanLimit)
		}
		if rref != nil {
			if _, err := s.notifier.PublishProofs(ctx, *rref, *c, files); err != nil {
				logger.Warn().Err(err).Msg("failed to mirror proofs on ban request")
			}
		}
	}

	logger.Info().Int("files", len(urls)).Msg("proofs attached")
	return urls, nil
}
