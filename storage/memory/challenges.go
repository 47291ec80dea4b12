package memorystore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gharkaam/authcore/core"
)

// Challenges is an in-memory core.ChallengeStore for tests and single-process
// development. The mutex stands in for the database's atomic update-by-id.
type Challenges struct {
	mu   sync.Mutex
	rows map[string]*core.Challenge
}

func NewChallenges() *Challenges {
	return &Challenges{rows: make(map[string]*core.Challenge)}
}

func (c *Challenges) Create(ctx context.Context, phone, code string, expiresAt time.Time) (string, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	id := uuid.NewString()
	c.rows[id] = &core.Challenge{
		ID:        id,
		Phone:     phone,
		Code:      code,
		Status:    core.ChallengePending,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return id, nil
}

func (c *Challenges) MarkOutcome(ctx context.Context, id string, status core.ChallengeStatus, diag *core.Diagnostic) (bool, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rows[id]
	if !ok {
		return false, nil
	}
	if row.Status.Terminal() {
		return false, nil
	}
	row.Status = status
	if diag != nil {
		if diag.MessageID != "" {
			row.MessageID = diag.MessageID
		}
		if diag.FailureNote != "" {
			row.FailureNote = diag.FailureNote
		}
		if diag.RawResponse != nil {
			row.RawResponse = append([]byte(nil), diag.RawResponse...)
		}
	}
	return true, nil
}

func (c *Challenges) CurrentChallenge(ctx context.Context, phone string) (*core.Challenge, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	var latest *core.Challenge
	for _, row := range c.rows {
		if row.Phone != phone || row.Status == core.ChallengeVerified {
			continue
		}
		if latest == nil || row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (c *Challenges) LastCreatedAt(ctx context.Context, phone string) (time.Time, bool, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	var last time.Time
	found := false
	for _, row := range c.rows {
		if row.Phone == phone && row.CreatedAt.After(last) {
			last = row.CreatedAt
			found = true
		}
	}
	return last, found, nil
}

func (c *Challenges) CountCreatedSince(ctx context.Context, phone string, since time.Time) (int, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, row := range c.rows {
		if row.Phone == phone && !row.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (c *Challenges) DeleteExpiredBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0)
	for id, row := range c.rows {
		if row.ExpiresAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	for _, id := range ids {
		delete(c.rows, id)
	}
	return int64(len(ids)), nil
}

// SetCreatedAt backdates a challenge; test helper for rate-limit windows.
func (c *Challenges) SetCreatedAt(id string, t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if row, ok := c.rows[id]; ok {
		row.CreatedAt = t
	}
}

// Get returns a copy of a challenge row; test helper.
func (c *Challenges) Get(id string) (core.Challenge, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rows[id]
	if !ok {
		return core.Challenge{}, false
	}
	return *row, true
}
