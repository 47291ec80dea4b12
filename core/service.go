package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Delivery is the tagged outcome of one SMS dispatch attempt. Either the
// gateway accepted the message (Accepted, MessageID) or it did not (Reason).
// Raw keeps the provider's payload for diagnostics.
type Delivery struct {
	Accepted  bool
	MessageID string
	Reason    string
	Raw       []byte
}

// SMSDispatcher sends one OTP text. Implementations bound their own timeout
// and never retry; issuance treats dispatch as best-effort.
type SMSDispatcher interface {
	SendOTP(ctx context.Context, phone, code string) (Delivery, error)
}

// EphemeralStore is a minimal TTL'd key-value store for short-lived auth
// state (currently the dev code peek). Missing keys are (nil, false, nil).
type EphemeralStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Service is the phone-OTP auth core: issuance, verification and session
// minting. Construct with NewService and attach collaborators with the
// With* setters.
type Service struct {
	cfg        Config
	challenges ChallengeStore
	users      UserDirectory
	sms        SMSDispatcher
	ephemeral  EphemeralStore
	limiter    *RateLimiter
	log        *zap.Logger
	now        func() time.Time
}

func NewService(cfg Config, challenges ChallengeStore, users UserDirectory) *Service {
	cfg = cfg.withDefaults()
	log := zap.NewNop()
	return &Service{
		cfg:        cfg,
		challenges: challenges,
		users:      users,
		limiter:    NewRateLimiter(challenges, cfg, log),
		log:        log,
		now:        time.Now,
	}
}

// WithSMSDispatcher sets the SMS gateway client. Without one, issuance skips
// dispatch (dev mode) and the challenge stays pending.
func (s *Service) WithSMSDispatcher(d SMSDispatcher) *Service { s.sms = d; return s }

// WithEphemeralStore enables the dev code peek (non-production only).
func (s *Service) WithEphemeralStore(store EphemeralStore) *Service {
	s.ephemeral = store
	return s
}

func (s *Service) WithLogger(log *zap.Logger) *Service {
	if log != nil {
		s.log = log
		s.limiter.log = log
	}
	return s
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
		s.limiter.now = now
	}
	return s
}

// Config exposes the effective configuration (defaults applied).
func (s *Service) Config() Config { return s.cfg }

const keyCodePeek = "auth:otp_peek:"

// stashCodeForPeek keeps the latest issued code retrievable in dev
// environments, so flows remain testable when no SMS arrives.
func (s *Service) stashCodeForPeek(ctx context.Context, phone, code string) {
	if s.cfg.IsProduction() || s.ephemeral == nil {
		return
	}
	if err := s.ephemeral.Set(ctx, keyCodePeek+phone, []byte(code), s.cfg.OTPTTL); err != nil {
		s.log.Warn("dev code peek stash failed", zap.Error(err))
	}
}

// PeekCode returns the most recently issued code for a phone in dev
// environments. Production always reports not found.
func (s *Service) PeekCode(ctx context.Context, phone string) (string, bool) {
	if s.cfg.IsProduction() || s.ephemeral == nil {
		return "", false
	}
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return "", false
	}
	b, ok, err := s.ephemeral.Get(ctx, keyCodePeek+normalized)
	if err != nil || !ok {
		return "", false
	}
	return string(b), true
}
