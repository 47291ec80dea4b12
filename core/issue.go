package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Intent distinguishes the two OTP flows: sign-up expects an unregistered
// phone, sign-in a registered one.
type Intent string

const (
	IntentSignup Intent = "signup"
	IntentSignin Intent = "signin"
)

// RequestOTP runs the issuance pipeline for a flow: normalize, gate by
// intent, rate limit, generate, persist, dispatch. A dispatch failure is
// recorded on the challenge but still reports acceptance to the caller;
// a persistence failure aborts (no OTP goes out without a durable record).
func (s *Service) RequestOTP(ctx context.Context, rawPhone string, intent Intent) error {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return err
	}

	switch intent {
	case IntentSignup:
		_, err := s.users.FindIdentityByPhone(ctx, phone)
		if err == nil {
			return ErrAlreadyRegistered
		}
		if !errors.Is(err, ErrUserNotFound) {
			return fmt.Errorf("identity lookup: %w", err)
		}
	case IntentSignin:
		if _, err := s.users.FindIdentityByPhone(ctx, phone); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return ErrNotRegistered
			}
			return fmt.Errorf("identity lookup: %w", err)
		}
	default:
		return fmt.Errorf("unknown intent %q", intent)
	}

	return s.issueCode(ctx, phone)
}

// ResendOTP issues a fresh code for a phone with a flow already underway.
// Only the rate limiter gates it; the new challenge supersedes the old one
// as "most recent".
func (s *Service) ResendOTP(ctx context.Context, rawPhone string) error {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return err
	}
	return s.issueCode(ctx, phone)
}

func (s *Service) issueCode(ctx context.Context, phone string) error {
	// Refuse before the challenge insert: a created row would start the
	// cooldown clock for a request that cannot be served.
	if s.sms == nil && s.cfg.IsProduction() {
		return fmt.Errorf("sms dispatcher not configured")
	}

	if err := s.limiter.Allow(ctx, phone); err != nil {
		return err
	}

	code, err := GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	id, err := s.challenges.Create(ctx, phone, code, s.now().Add(s.cfg.OTPTTL))
	if err != nil {
		return fmt.Errorf("create challenge: %w", err)
	}

	s.stashCodeForPeek(ctx, phone, code)

	if s.sms == nil {
		// No gateway configured (dev): the challenge stays pending and the
		// code is reachable through the dev peek.
		s.log.Info("dev-sms", zap.String("phone", phone), zap.String("code", code))
		return nil
	}

	delivery, err := s.sms.SendOTP(ctx, phone, code)
	if err != nil {
		s.markDispatch(ctx, id, ChallengeFailed, &Diagnostic{FailureNote: err.Error()})
		s.log.Warn("otp dispatch failed", zap.String("phone", phone), zap.Error(err))
		return nil
	}
	if !delivery.Accepted {
		s.markDispatch(ctx, id, ChallengeFailed, &Diagnostic{FailureNote: delivery.Reason, RawResponse: delivery.Raw})
		s.log.Warn("otp dispatch rejected", zap.String("phone", phone), zap.String("reason", delivery.Reason))
		return nil
	}
	s.markDispatch(ctx, id, ChallengeSent, &Diagnostic{MessageID: delivery.MessageID, RawResponse: delivery.Raw})
	return nil
}

// markDispatch records the gateway outcome. The challenge already exists, so
// a bookkeeping failure here is logged rather than surfaced; the row stays in
// a well-defined state either way.
func (s *Service) markDispatch(ctx context.Context, id string, status ChallengeStatus, diag *Diagnostic) {
	if _, err := s.challenges.MarkOutcome(ctx, id, status, diag); err != nil {
		s.log.Warn("challenge outcome not recorded",
			zap.String("challenge_id", id), zap.String("status", string(status)), zap.Error(err))
	}
}

// PhoneStatus is the answer to "is this phone registered?".
type PhoneStatus struct {
	Exists            bool
	IsProfileComplete bool
}

// CheckPhone reports whether a phone is registered and whether its profile
// has been filled in. An identity without a profile counts as registered.
func (s *Service) CheckPhone(ctx context.Context, rawPhone string) (PhoneStatus, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return PhoneStatus{}, err
	}

	p, err := s.users.FindProfileByPhone(ctx, phone)
	if err == nil {
		return PhoneStatus{Exists: true, IsProfileComplete: p.IsComplete}, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return PhoneStatus{}, fmt.Errorf("profile lookup: %w", err)
	}

	if _, err := s.users.FindIdentityByPhone(ctx, phone); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return PhoneStatus{}, nil
		}
		return PhoneStatus{}, fmt.Errorf("identity lookup: %w", err)
	}
	return PhoneStatus{Exists: true}, nil
}
