package moderation

import "errors"

var (
	// ErrNotConfigured means the guild has no moderation setup (or lacks the field an operation needs).
	ErrNotConfigured = errors.New("moderation is not configured for this server")
	// ErrForbidden means the actor lacks the role tier for the operation.
	ErrForbidden = errors.New("you do not have permission to do that")
	// ErrTargetProtected means the target is an administrator or staff.
	ErrTargetProtected = errors.New("target is whitelisted")
	ErrNotFound        = errors.New("case not found")
	ErrInvalidInput    = errors.New("invalid input")
	// ErrDownstream wraps platform failures that happen after the decision was made.
	ErrDownstream      = errors.New("platform action failed")
	ErrRateLimited     = errors.New("rate limit reached")
	ErrAlreadyResolved = errors.New("ban request was already handled")
	// ErrExpired means a confirmation or pending request timed out.
	ErrExpired = errors.New("this request has expired")
)

// FailureLabel is the short tag shown next to a failed target in batch summaries.
func FailureLabel(err error) string {
	switch {
	case errors.Is(err, ErrTargetProtected):
		return "Whitelisted"
	case errors.Is(err, ErrRateLimited):
		return "Rate limited"
	case errors.Is(err, ErrInvalidInput):
		return "Invalid input"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrNotConfigured):
		return "Not configured"
	case errors.Is(err, ErrDownstream):
		return "Platform error"
	}
	return "Failed"
}
