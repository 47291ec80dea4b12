package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RateLimiter decides whether a phone may request another OTP. Two policies
// apply in order: a per-request cooldown, then a rolling hourly cap.
//
// The limiter fails open: a storage error allows the request rather than
// blocking a legitimate user. Availability wins over strictness here; do not
// tighten this without a product decision. The read-then-act sequence is also
// racy under concurrent retries, which makes the cap a soft limit.
type RateLimiter struct {
	store ChallengeStore
	cfg   Config
	log   *zap.Logger
	now   func() time.Time
}

func NewRateLimiter(store ChallengeStore, cfg Config, log *zap.Logger) *RateLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	return &RateLimiter{store: store, cfg: cfg.withDefaults(), log: log, now: time.Now}
}

// Allow returns nil when a new OTP may be issued for the phone, or a
// *RateLimitError carrying the wait in seconds.
func (rl *RateLimiter) Allow(ctx context.Context, phone string) error {
	now := rl.now()

	last, ok, err := rl.store.LastCreatedAt(ctx, phone)
	if err != nil {
		rl.log.Warn("rate limit history unavailable, allowing request",
			zap.String("phone", phone), zap.Error(err))
		return nil
	}
	if ok {
		if elapsed := now.Sub(last); elapsed < rl.cfg.Cooldown {
			wait := int((rl.cfg.Cooldown - elapsed).Seconds())
			if wait < 1 {
				wait = 1
			}
			return &RateLimitError{WaitSeconds: wait}
		}
	}

	n, err := rl.store.CountCreatedSince(ctx, phone, now.Add(-time.Hour))
	if err != nil {
		rl.log.Warn("rate limit history unavailable, allowing request",
			zap.String("phone", phone), zap.Error(err))
		return nil
	}
	if n >= rl.cfg.HourlyCap {
		return &RateLimitError{WaitSeconds: 3600}
	}
	return nil
}
