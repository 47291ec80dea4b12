package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the auth core. HTTP adapters map these to
// stable response codes; callers should test with errors.Is/errors.As.
var (
	ErrInvalidCodeFormat = errors.New("code must be 4 digits")
	ErrAlreadyRegistered = errors.New("phone already registered")
	ErrNotRegistered     = errors.New("phone not registered")
	ErrNoChallengeFound  = errors.New("no verification in progress for this phone")
	ErrCodeExpired       = errors.New("code expired, request a new one")
	ErrCodeMismatch      = errors.New("incorrect code")

	// ErrUnauthenticated is the single outcome for every session token
	// failure (malformed, expired, bad signature). Callers must not learn
	// which one it was.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// PhoneFormatError reports why a user-entered phone could not be normalized.
type PhoneFormatError struct {
	Reason string
}

func (e *PhoneFormatError) Error() string {
	return fmt.Sprintf("invalid phone number: %s", e.Reason)
}

// RateLimitError denies an OTP request and tells the caller how long to wait.
type RateLimitError struct {
	WaitSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many OTP requests, retry in %ds", e.WaitSeconds)
}
