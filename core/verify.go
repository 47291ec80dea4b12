package core

import (
	"context"
	"fmt"
)

// verifyChallenge runs the per-challenge state machine for a submitted code.
//
// Expiry consumes the challenge (it transitions to failed and every later
// attempt keeps answering expired), but a wrong guess does not: the caller
// may retry with the right code until the TTL runs out. Keep that asymmetry.
func (s *Service) verifyChallenge(ctx context.Context, phone, code string) error {
	if !ValidCodeFormat(code) {
		return ErrInvalidCodeFormat
	}

	ch, err := s.challenges.CurrentChallenge(ctx, phone)
	if err != nil {
		return fmt.Errorf("load challenge: %w", err)
	}
	if ch == nil {
		return ErrNoChallengeFound
	}

	if s.now().After(ch.ExpiresAt) {
		// Conditional write: a no-op when an earlier attempt already failed
		// the row.
		if _, err := s.challenges.MarkOutcome(ctx, ch.ID, ChallengeFailed, &Diagnostic{FailureNote: "expired"}); err != nil {
			return fmt.Errorf("expire challenge: %w", err)
		}
		return ErrCodeExpired
	}

	if code != ch.Code {
		return ErrCodeMismatch
	}

	applied, err := s.challenges.MarkOutcome(ctx, ch.ID, ChallengeVerified, nil)
	if err != nil {
		return fmt.Errorf("verify challenge: %w", err)
	}
	if !applied {
		// The row went terminal under us: a concurrent verify won, or the
		// dispatch was recorded as failed. Either way there is nothing live
		// to answer.
		return ErrNoChallengeFound
	}
	return nil
}

// VerifyOTP checks the submitted code against the phone's current challenge
// and, on success, completes the flow the OTP was requested for: sign-up
// creates the identity and profile, sign-in resolves the existing ones.
// Returns the minted session.
func (s *Service) VerifyOTP(ctx context.Context, rawPhone, code string, intent Intent) (*Session, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	if err := s.verifyChallenge(ctx, phone, code); err != nil {
		return nil, err
	}

	switch intent {
	case IntentSignup:
		return s.signUp(ctx, phone)
	case IntentSignin:
		return s.signIn(ctx, phone)
	default:
		return nil, fmt.Errorf("unknown intent %q", intent)
	}
}
