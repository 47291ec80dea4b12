package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SessionClaims is the signed payload identifying an authenticated session.
// Claims snapshot state at issuance time; they are not refreshed mid-lifetime.
type SessionClaims struct {
	UserID            string `json:"userId"`
	Phone             string `json:"phone"`
	AuthMethod        string `json:"authMethod"`
	IsProfileComplete bool   `json:"isProfileComplete"`
	jwt.RegisteredClaims
}

// Session is the result of a completed sign-up or sign-in.
type Session struct {
	Token             string
	UserID            string
	Phone             string
	IsProfileComplete bool
	ExpiresAt         time.Time
}

// mintSession signs the claim set for a verified phone.
func (s *Service) mintSession(userID, phone string, profileComplete bool) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)
	claims := SessionClaims{
		UserID:            userID,
		Phone:             phone,
		AuthMethod:        "phone",
		IsProfileComplete: profileComplete,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SigningSecret))
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &Session{
		Token:             token,
		UserID:            userID,
		Phone:             phone,
		IsProfileComplete: profileComplete,
		ExpiresAt:         expiresAt,
	}, nil
}

// signUp creates the identity and its profile for a phone that just proved
// itself, then mints the session. All-or-nothing from the caller's view: a
// profile-insert failure is surfaced, never papered over with a token.
func (s *Service) signUp(ctx context.Context, phone string) (*Session, error) {
	userID, err := s.users.CreateIdentity(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrIdentityExists) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}

	if _, err := s.users.CreateProfile(ctx, userID, phone); err != nil {
		if !errors.Is(err, ErrProfileExists) {
			// The identity row exists but the profile insert failed; report
			// it so the caller retries, instead of issuing a half-provisioned
			// session.
			return nil, fmt.Errorf("create profile for %s: %w", userID, err)
		}
	}

	return s.mintSession(userID, phone, false)
}

// signIn resolves the profile for a registered phone and mints the session.
// A missing profile with an existing identity is schema drift from older
// sign-ups; it is repaired on the fly. Sign-in never creates an identity.
func (s *Service) signIn(ctx context.Context, phone string) (*Session, error) {
	p, err := s.users.FindProfileByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("profile lookup: %w", err)
		}
		userID, idErr := s.users.FindIdentityByPhone(ctx, phone)
		if idErr != nil {
			if errors.Is(idErr, ErrUserNotFound) {
				return nil, ErrNotRegistered
			}
			return nil, fmt.Errorf("identity lookup: %w", idErr)
		}
		p, err = s.users.CreateProfile(ctx, userID, phone)
		if errors.Is(err, ErrProfileExists) {
			// A concurrent sign-in inserted it first; use theirs.
			p, err = s.users.FindProfileByPhone(ctx, phone)
		}
		if err != nil {
			return nil, fmt.Errorf("repair profile for %s: %w", userID, err)
		}
	}

	if err := s.users.TouchLastActive(ctx, p.UserID); err != nil {
		s.log.Warn("last-active update failed", zap.String("user_id", p.UserID), zap.Error(err))
	}

	return s.mintSession(p.UserID, p.Phone, p.IsComplete)
}

// ParseSession validates a bearer token and reconstructs its claims. Every
// failure mode — malformed, expired, tampered — collapses into
// ErrUnauthenticated so callers cannot leak the distinction.
func (s *Service) ParseSession(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return []byte(s.cfg.SigningSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || parsed == nil || !parsed.Valid {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
