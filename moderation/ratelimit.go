package moderation

import (
	"sync"
	"time"

	"modcase-bot/model"
)

// Unlimited is returned as the remaining count for kinds that are not rate limited.
const Unlimited = -1

const (
	DefaultActionLimit = 15
	DefaultRateWindow  = time.Hour
)

type windowKey struct {
	issuerID string
	kind     model.CaseKind
}

// Limiter caps kicks and bans per issuer over a sliding window.
//
// Check never records; callers Record only after the guarded action succeeded,
// so refused or failed attempts do not consume quota.
type Limiter struct {
	mu      sync.Mutex
	windows map[windowKey][]time.Time
	limits  map[model.CaseKind]int
	window  time.Duration
	now     func() time.Time
}

// NewLimiter creates a limiter for kick and ban with the given per-window limits.
func NewLimiter(kickLimit, banLimit int, window time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[windowKey][]time.Time),
		limits: map[model.CaseKind]int{
			model.KindKick: kickLimit,
			model.KindBan:  banLimit,
		},
		window: window,
		now:    time.Now,
	}
}

// Limited reports whether kind is subject to rate limiting.
func (l *Limiter) Limited(kind model.CaseKind) bool {
	_, ok := l.limits[kind]
	return ok
}

// Check prunes stale entries and reports whether issuerID may perform kind now,
// along with how many actions remain in the window.
func (l *Limiter) Check(issuerID string, kind model.CaseKind) (bool, int) {
	limit, ok := l.limits[kind]
	if !ok {
		return true, Unlimited
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := windowKey{issuerID, kind}
	entries := l.prune(l.windows[key], l.now())
	if len(entries) == 0 {
		delete(l.windows, key)
	} else {
		l.windows[key] = entries
	}

	remaining := limit - len(entries)
	if remaining < 0 {
		remaining = 0
	}
	return remaining > 0, remaining
}

// Record appends a successful action for issuerID.
func (l *Limiter) Record(issuerID string, kind model.CaseKind) {
	if !l.Limited(kind) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	key := windowKey{issuerID, kind}
	l.windows[key] = append(l.windows[key], l.now())
}

// Sweep drops keys whose entries have all aged out.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, entries := range l.windows {
		if len(l.prune(entries, now)) == 0 {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// prune keeps entries within the window. Entries are appended in time order.
func (l *Limiter) prune(entries []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(entries) && !entries[i].After(cutoff) {
		i++
	}
	return entries[i:]
}
