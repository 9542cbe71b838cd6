package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"ledgerbot/internal/digest"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/notify"
	"ledgerbot/internal/storage"
)

func newTestScheduler(t *testing.T, sender notify.Sender) (*Scheduler, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	gen := digest.New(repo, metrics.New(repo))
	return New(repo, gen, sender, 8, 0, nil), repo
}

func TestRunOnceCountsFailures(t *testing.T) {
	delivered := make(map[string]int)
	sender := notify.SenderFunc(func(_ context.Context, recipientID, _ string) error {
		if recipientID == "broken" {
			return errors.New("delivery refused")
		}
		delivered[recipientID]++
		return nil
	})

	s, repo := newTestScheduler(t, sender)
	ctx := context.Background()
	for _, id := range []string{"u1", "broken", "u2"} {
		if err := repo.EnsureUser(ctx, id); err != nil {
			t.Fatalf("ensure user %s: %v", id, err)
		}
	}

	sent, failed := s.RunOnce(ctx)
	if sent != 2 || failed != 1 {
		t.Errorf("RunOnce = (%d, %d), want (2, 1)", sent, failed)
	}
	// The failure must not have blocked the users after it.
	if delivered["u1"] != 1 || delivered["u2"] != 1 {
		t.Errorf("deliveries = %v, want one each for u1 and u2", delivered)
	}
}

func TestRunOnceWithNoUsers(t *testing.T) {
	s, _ := newTestScheduler(t, notify.SenderFunc(func(context.Context, string, string) error {
		t.Error("unexpected send")
		return nil
	}))
	sent, failed := s.RunOnce(context.Background())
	if sent != 0 || failed != 0 {
		t.Errorf("RunOnce = (%d, %d), want (0, 0)", sent, failed)
	}
}

func TestNextRun(t *testing.T) {
	s, _ := newTestScheduler(t, notify.LogSender{})

	before := time.Date(2025, 3, 10, 7, 59, 0, 0, time.Local)
	next := s.nextRun(before)
	if next.Day() != 10 || next.Hour() != 8 || next.Minute() != 0 {
		t.Errorf("nextRun before fire time = %v", next)
	}

	after := time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)
	next = s.nextRun(after)
	if next.Day() != 11 {
		t.Errorf("nextRun at fire time should be tomorrow, got %v", next)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	s, _ := newTestScheduler(t, notify.LogSender{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not stop after cancel")
	}
}
