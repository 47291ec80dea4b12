package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gharkaam/authcore/core"
)

// Challenges is the Postgres-backed core.ChallengeStore. Conditional
// transitions ride on the database's atomic UPDATE-by-id; no in-process
// locking is involved.
type Challenges struct {
	pg *pgxpool.Pool
}

func NewChallenges(pool *pgxpool.Pool) *Challenges {
	return &Challenges{pg: pool}
}

func (c *Challenges) Create(ctx context.Context, phone, code string, expiresAt time.Time) (string, error) {
	row := c.pg.QueryRow(ctx, `
		INSERT INTO auth.otp_challenges (phone, code, status, expires_at)
		VALUES ($1, $2, 'pending', $3)
		RETURNING id`, phone, code, expiresAt)
	var id string
	if err := row.Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Challenges) MarkOutcome(ctx context.Context, id string, status core.ChallengeStatus, diag *core.Diagnostic) (bool, error) {
	var messageID, failureNote *string
	var raw []byte
	if diag != nil {
		if diag.MessageID != "" {
			messageID = &diag.MessageID
		}
		if diag.FailureNote != "" {
			failureNote = &diag.FailureNote
		}
		raw = diag.RawResponse
	}
	// Guarded transition: terminal rows never move again.
	tag, err := c.pg.Exec(ctx, `
		UPDATE auth.otp_challenges
		SET status = $2,
		    message_id = COALESCE($3, message_id),
		    failure_note = COALESCE($4, failure_note),
		    raw_response = COALESCE($5, raw_response),
		    updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'sent')`,
		id, string(status), messageID, failureNote, raw)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (c *Challenges) CurrentChallenge(ctx context.Context, phone string) (*core.Challenge, error) {
	row := c.pg.QueryRow(ctx, `
		SELECT id, phone, code, status, expires_at, created_at,
		       COALESCE(message_id, ''), COALESCE(failure_note, ''), raw_response
		FROM auth.otp_challenges
		WHERE phone = $1 AND status <> 'verified'
		ORDER BY created_at DESC
		LIMIT 1`, phone)
	var ch core.Challenge
	var status string
	if err := row.Scan(&ch.ID, &ch.Phone, &ch.Code, &status, &ch.ExpiresAt, &ch.CreatedAt,
		&ch.MessageID, &ch.FailureNote, &ch.RawResponse); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	ch.Status = core.ChallengeStatus(status)
	return &ch, nil
}

func (c *Challenges) LastCreatedAt(ctx context.Context, phone string) (time.Time, bool, error) {
	row := c.pg.QueryRow(ctx, `
		SELECT created_at FROM auth.otp_challenges
		WHERE phone = $1
		ORDER BY created_at DESC
		LIMIT 1`, phone)
	var t time.Time
	if err := row.Scan(&t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return t, true, nil
}

func (c *Challenges) CountCreatedSince(ctx context.Context, phone string, since time.Time) (int, error) {
	row := c.pg.QueryRow(ctx, `
		SELECT COUNT(*) FROM auth.otp_challenges
		WHERE phone = $1 AND created_at >= $2`, phone, since)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *Challenges) DeleteExpiredBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	tag, err := c.pg.Exec(ctx, `
		DELETE FROM auth.otp_challenges
		WHERE id IN (
			SELECT id FROM auth.otp_challenges
			WHERE expires_at < $1
			ORDER BY expires_at
			LIMIT $2
		)`, cutoff, limit)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
