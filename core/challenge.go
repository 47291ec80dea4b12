package core

import (
	"context"
	"time"
)

// ChallengeStatus is the lifecycle of one issued OTP.
//
//	pending -> sent -> verified
//	pending/sent   -> failed
//
// verified and failed are terminal; a new request always creates a new
// challenge instead of reviving a terminal one.
type ChallengeStatus string

const (
	ChallengePending  ChallengeStatus = "pending"
	ChallengeSent     ChallengeStatus = "sent"
	ChallengeVerified ChallengeStatus = "verified"
	ChallengeFailed   ChallengeStatus = "failed"
)

// Terminal reports whether the status accepts no further transitions.
func (s ChallengeStatus) Terminal() bool {
	return s == ChallengeVerified || s == ChallengeFailed
}

// Challenge is one issued OTP and its verification state. The store is the
// single source of truth; the core never caches these.
type Challenge struct {
	ID        string
	Phone     string // normalized, 12 digits
	Code      string
	Status    ChallengeStatus
	ExpiresAt time.Time
	CreatedAt time.Time

	// Gateway bookkeeping, populated after the dispatch attempt.
	MessageID   string
	FailureNote string
	RawResponse []byte // opaque provider payload, kept for diagnostics
}

// Diagnostic records the outcome of a dispatch or verification attempt on a
// challenge.
type Diagnostic struct {
	MessageID   string
	FailureNote string
	RawResponse []byte
}

// ChallengeStore persists issued OTPs. Implementations must make MarkOutcome
// a conditional write: the transition applies only while the row is still
// non-terminal, so two racing verifies cannot both win.
type ChallengeStore interface {
	// Create inserts a pending challenge and returns its id. Issuance must
	// not dispatch an SMS unless this succeeded.
	Create(ctx context.Context, phone, code string, expiresAt time.Time) (string, error)

	// MarkOutcome transitions a challenge to status if it is still
	// pending/sent. Returns whether the transition applied; calling it
	// against an already-terminal row is safe and reports applied=false.
	MarkOutcome(ctx context.Context, id string, status ChallengeStatus, diag *Diagnostic) (applied bool, err error)

	// CurrentChallenge returns the most recently created challenge for the
	// phone whose status is not verified, or nil when there is none.
	CurrentChallenge(ctx context.Context, phone string) (*Challenge, error)

	// LastCreatedAt returns the creation time of the phone's newest
	// challenge, if any. Used by the cooldown policy.
	LastCreatedAt(ctx context.Context, phone string) (time.Time, bool, error)

	// CountCreatedSince counts challenges created for the phone at or after
	// since. Used by the hourly cap.
	CountCreatedSince(ctx context.Context, phone string, since time.Time) (int, error)

	// DeleteExpiredBefore removes challenges whose expiry passed before
	// cutoff, up to limit rows. Retention is an operator concern; the core
	// never calls this.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}
