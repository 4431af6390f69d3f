package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"modcase-bot/model"
)

// MaxTargets is how many users one command may act on.
const MaxTargets = 5

// BatchRequest is a command against one or more targets.
type BatchRequest struct {
	Issuer   model.Actor
	Kind     model.CaseKind
	Targets  []string
	Reason   string
	Duration time.Duration
}

// TargetResult is the outcome for one target of a batch.
type TargetResult struct {
	UserID  string
	Outcome *Outcome
	Err     error
}

// OK reports whether a case was created for the target.
func (r TargetResult) OK() bool {
	return r.Err == nil && r.Outcome != nil
}

// BatchResult enumerates per-target results in input order.
type BatchResult struct {
	Kind    model.CaseKind
	Results []TargetResult
	// Remaining is the issuer's quota left after the batch, or Unlimited.
	Remaining int
}

func (r *BatchResult) Succeeded() []TargetResult {
	var out []TargetResult
	for _, res := range r.Results {
		if res.OK() {
			out = append(out, res)
		}
	}
	return out
}

func (r *BatchResult) Failed() []TargetResult {
	var out []TargetResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Punish runs a moderation command against every target independently. Config,
// tier and the issuer's rate limit are checked once for the whole command; the
// rate limit is then re-checked before each kick or ban.
func (s *Service) Punish(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	targets := dedupe(req.Targets)
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no users given", ErrInvalidInput)
	}
	if len(targets) > MaxTargets {
		return nil, fmt.Errorf("%w: at most %d users per command", ErrInvalidInput, MaxTargets)
	}
	if req.Kind == model.KindUnban && len(targets) > 1 {
		return nil, fmt.Errorf("%w: unban takes a single user", ErrInvalidInput)
	}
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

	result := &BatchResult{Kind: req.Kind, Results: make([]TargetResult, 0, len(targets))}
	for _, target := range targets {
		if limited {
			if ok, _ := s.limiter.Check(req.Issuer.UserID, req.Kind); !ok {
				result.Results = append(result.Results, TargetResult{UserID: target, Err: ErrRateLimited})
				continue
			}
		}
		out, err := s.createCase(ctx, cfg, CaseRequest{
			Issuer:       req.Issuer,
			TargetUserID: target,
			Kind:         req.Kind,
			Reason:       req.Reason,
			Duration:     req.Duration,
		})
		if err == nil && limited && out.Enforced {
			s.limiter.Record(req.Issuer.UserID, req.Kind)
		}
		result.Results = append(result.Results, TargetResult{UserID: target, Outcome: out, Err: err})
	}

	_, result.Remaining = s.limiter.Check(req.Issuer.UserID, req.Kind)
	return result, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
