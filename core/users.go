package core

import (
	"context"
	"errors"
)

// Errors surfaced by UserDirectory implementations. The core translates them
// into the caller-facing taxonomy.
var (
	// ErrUserNotFound means no identity or profile exists for the key.
	ErrUserNotFound = errors.New("user not found")
	// ErrProfileExists is the unique-violation on profile insert; a racing
	// sign-in created the row first and callers should re-fetch.
	ErrProfileExists = errors.New("profile already exists")
	// ErrIdentityExists is the unique-violation on identity insert.
	ErrIdentityExists = errors.New("identity already exists")
)

// Profile is the slice of the user record this core owns an opinion about:
// the phone-to-user association and the completeness flag. Names, addresses
// and the rest of the booking profile belong to the storefront.
type Profile struct {
	UserID     string
	Phone      string
	IsComplete bool
}

// UserDirectory is the identity/profile collaborator. Identities are the
// stable account rows keyed by phone; profiles link an identity to the
// storefront's customer record.
type UserDirectory interface {
	// FindIdentityByPhone returns the user id for a registered phone, or
	// ErrUserNotFound.
	FindIdentityByPhone(ctx context.Context, phone string) (string, error)

	// CreateIdentity registers a new account for the phone and returns its
	// user id. Returns ErrIdentityExists if the phone is already taken.
	CreateIdentity(ctx context.Context, phone string) (string, error)

	// FindProfileByPhone returns the profile for a phone, or ErrUserNotFound.
	FindProfileByPhone(ctx context.Context, phone string) (*Profile, error)

	// CreateProfile inserts the profile row for an identity. Returns
	// ErrProfileExists when a concurrent caller inserted it first.
	CreateProfile(ctx context.Context, userID, phone string) (*Profile, error)

	// TouchLastActive refreshes the profile's last-active marker on sign-in.
	// Best-effort; failures do not block session issuance.
	TouchLastActive(ctx context.Context, userID string) error
}
