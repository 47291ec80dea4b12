package riverjobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/riverqueue/river"

	"github.com/gharkaam/authcore/riverjobs"
	memorystore "github.com/gharkaam/authcore/storage/memory"
)

func TestPurgeWorkerDeletesOnlyPastRetention(t *testing.T) {
	store := memorystore.NewChallenges()
	ctx := context.Background()

	staleID, err := store.Create(ctx, "919876543210", "1234", time.Now().Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("seed stale challenge: %v", err)
	}
	// Expired, but inside the default 24h retention window.
	recentID, err := store.Create(ctx, "919876543210", "1234", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("seed recent challenge: %v", err)
	}

	w := riverjobs.NewPurgeExpiredChallengesWorker(store, nil)
	job := &river.Job[riverjobs.PurgeExpiredChallengesArgs]{
		Args: riverjobs.PurgeExpiredChallengesArgs{},
	}
	if err := w.Work(ctx, job); err != nil {
		t.Fatalf("Work failed: %v", err)
	}

	if _, ok := store.Get(staleID); ok {
		t.Fatal("challenge past retention survived the purge")
	}
	if _, ok := store.Get(recentID); !ok {
		t.Fatal("challenge inside retention was purged")
	}
}

func TestNewPurgePeriodicJob(t *testing.T) {
	if _, err := riverjobs.NewPurgePeriodicJob("not a cron", riverjobs.PurgeExpiredChallengesArgs{}, false); err == nil {
		t.Fatal("invalid cron spec must be rejected")
	}
	job, err := riverjobs.NewPurgePeriodicJob("0 * * * *", riverjobs.PurgeExpiredChallengesArgs{}, true)
	if err != nil || job == nil {
		t.Fatalf("hourly schedule: (%v, %v)", job, err)
	}
}
