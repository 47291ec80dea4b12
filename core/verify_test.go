package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gharkaam/authcore/core"
)

func TestVerifyOTPCodeFormat(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	for _, bad := range []string{"", "12", "12345", "abcd"} {
		_, err := svc.VerifyOTP(context.Background(), "9876543210", bad, core.IntentSignup)
		if !errors.Is(err, core.ErrInvalidCodeFormat) {
			t.Fatalf("VerifyOTP(code=%q): got %v, want ErrInvalidCodeFormat", bad, err)
		}
	}
}

func TestVerifyOTPNoChallenge(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.VerifyOTP(context.Background(), "9876543210", "1234", core.IntentSignup)
	if !errors.Is(err, core.ErrNoChallengeFound) {
		t.Fatalf("got %v, want ErrNoChallengeFound", err)
	}
}

func TestVerifyOTPWrongCodeAllowsRetry(t *testing.T) {
	svc, challenges, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := challenges.Create(ctx, testPhone, "4321", time.Now().Add(10*time.Minute))
	if err != nil {
		t.Fatalf("seed challenge: %v", err)
	}

	_, err = svc.VerifyOTP(ctx, "9876543210", "1111", core.IntentSignup)
	if !errors.Is(err, core.ErrCodeMismatch) {
		t.Fatalf("wrong code: got %v, want ErrCodeMismatch", err)
	}

	// The miss must not consume the challenge.
	if ch, _ := challenges.Get(id); ch.Status.Terminal() {
		t.Fatalf("challenge went terminal on a wrong guess: %q", ch.Status)
	}

	sess, err := svc.VerifyOTP(ctx, "9876543210", "4321", core.IntentSignup)
	if err != nil {
		t.Fatalf("correct code after a miss failed: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected a session token")
	}
	if ch, _ := challenges.Get(id); ch.Status != core.ChallengeVerified {
		t.Fatalf("challenge status = %q, want verified", ch.Status)
	}
}

func TestVerifyOTPExpiryIsTerminal(t *testing.T) {
	svc, challenges, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := challenges.Create(ctx, testPhone, "4321", time.Now().Add(-time.Second))
	if err != nil {
		t.Fatalf("seed challenge: %v", err)
	}

	_, err = svc.VerifyOTP(ctx, "9876543210", "4321", core.IntentSignup)
	if !errors.Is(err, core.ErrCodeExpired) {
		t.Fatalf("expired challenge: got %v, want ErrCodeExpired", err)
	}
	if ch, _ := challenges.Get(id); ch.Status != core.ChallengeFailed {
		t.Fatalf("expired challenge status = %q, want failed", ch.Status)
	}

	// The record is consumed: the correct code keeps answering expired.
	_, err = svc.VerifyOTP(ctx, "9876543210", "4321", core.IntentSignup)
	if !errors.Is(err, core.ErrCodeExpired) {
		t.Fatalf("second attempt after expiry: got %v, want ErrCodeExpired", err)
	}
}

func TestVerifyOTPDoubleVerify(t *testing.T) {
	svc, challenges, users, _ := newTestService(t)
	ctx := context.Background()

	if _, err := challenges.Create(ctx, testPhone, "4321", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("seed challenge: %v", err)
	}

	if _, err := svc.VerifyOTP(ctx, "9876543210", "4321", core.IntentSignup); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}

	// The second verify of the same challenge must not succeed again; the
	// conditional transition already consumed it.
	_, err := svc.VerifyOTP(ctx, "9876543210", "4321", core.IntentSignup)
	if !errors.Is(err, core.ErrNoChallengeFound) {
		t.Fatalf("second verify: got %v, want ErrNoChallengeFound", err)
	}

	// And only one identity exists.
	if _, err := users.FindIdentityByPhone(ctx, testPhone); err != nil {
		t.Fatalf("identity lookup after signup: %v", err)
	}
}

func TestVerifyOTPDispatchFailedChallenge(t *testing.T) {
	svc, challenges, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := challenges.Create(ctx, testPhone, "4321", time.Now().Add(10*time.Minute))
	if err != nil {
		t.Fatalf("seed challenge: %v", err)
	}
	if _, err := challenges.MarkOutcome(ctx, id, core.ChallengeFailed, &core.Diagnostic{FailureNote: "gateway unreachable"}); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	// The row is terminal; even the correct code cannot revive it. The caller
	// sees the domain answer, not an internal error.
	_, err = svc.VerifyOTP(ctx, "9876543210", "4321", core.IntentSignup)
	if !errors.Is(err, core.ErrNoChallengeFound) {
		t.Fatalf("correct code against failed dispatch: got %v, want ErrNoChallengeFound", err)
	}
	if ch, _ := challenges.Get(id); ch.Status != core.ChallengeFailed {
		t.Fatalf("challenge status = %q, want failed", ch.Status)
	}
}

func TestVerifyOTPNewRequestSupersedesOld(t *testing.T) {
	svc, challenges, _, _ := newTestService(t)
	ctx := context.Background()

	old, err := challenges.Create(ctx, testPhone, "1111", time.Now().Add(10*time.Minute))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	challenges.SetCreatedAt(old, time.Now().Add(-time.Minute))
	if _, err := challenges.Create(ctx, testPhone, "2222", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Only the most recent challenge answers.
	if _, err := svc.VerifyOTP(ctx, "9876543210", "1111", core.IntentSignup); !errors.Is(err, core.ErrCodeMismatch) {
		t.Fatalf("old code: got %v, want ErrCodeMismatch", err)
	}
	if _, err := svc.VerifyOTP(ctx, "9876543210", "2222", core.IntentSignup); err != nil {
		t.Fatalf("current code failed: %v", err)
	}
}

func TestVerifyOTPEndToEndSignup(t *testing.T) {
	svc, challenges, users, dispatcher := newTestService(t)
	ctx := context.Background()

	if err := svc.RequestOTP(ctx, "9876543210", core.IntentSignup); err != nil {
		t.Fatalf("RequestOTP failed: %v", err)
	}

	sess, err := svc.VerifyOTP(ctx, "9876543210", dispatcher.code, core.IntentSignup)
	if err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}
	if sess.Phone != testPhone {
		t.Fatalf("session phone = %q, want %q", sess.Phone, testPhone)
	}
	if sess.IsProfileComplete {
		t.Fatal("fresh signup must mint isProfileComplete=false")
	}

	if _, err := users.FindProfileByPhone(ctx, testPhone); err != nil {
		t.Fatalf("profile missing after signup: %v", err)
	}
	ch, _ := challenges.CurrentChallenge(ctx, testPhone)
	if ch != nil {
		t.Fatalf("expected no live challenge after verification, got %+v", ch)
	}

	claims, err := svc.ParseSession(sess.Token)
	if err != nil {
		t.Fatalf("ParseSession failed: %v", err)
	}
	if claims.UserID != sess.UserID || claims.Phone != testPhone ||
		claims.AuthMethod != "phone" || claims.IsProfileComplete {
		t.Fatalf("claims do not match issuance: %+v", claims)
	}
}
