// Package scheduler owns the daily digest timer. It is an explicit service
// object created at startup and shut down with the process; nothing here is
// global.
package scheduler

import (
	"context"
	"time"

	"ledgerbot/internal/digest"
	applog "ledgerbot/internal/log"
	"ledgerbot/internal/notify"
	"ledgerbot/internal/storage"
)

type Scheduler struct {
	store  *storage.SQLiteRepository
	gen    *digest.Generator
	sender notify.Sender
	hour   int
	minute int
	logger *applog.Logger
}

func New(store *storage.SQLiteRepository, gen *digest.Generator, sender notify.Sender, hour, minute int, logger *applog.Logger) *Scheduler {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Scheduler{
		store:  store,
		gen:    gen,
		sender: sender,
		hour:   hour,
		minute: minute,
		logger: logger.WithComponent(applog.ComponentScheduler),
	}
}

// Start blocks until ctx is cancelled, firing one digest run at the
// configured time of day.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Digest scheduler started",
		"hour", s.hour,
		"minute", s.minute)

	for {
		wait := time.Until(s.nextRun(time.Now()))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Digest scheduler stopped")
			return ctx.Err()
		case <-timer.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce pushes the digest to every known user, serially. One failed
// delivery never aborts the rest; the run ends with a sent/failed tally.
func (s *Scheduler) RunOnce(ctx context.Context) (sent, failed int) {
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Digest run aborted, user listing failed",
			applog.FieldError, err)
		return 0, 0
	}

	for _, id := range ids {
		msg, err := s.gen.Digest(ctx, id)
		if err != nil {
			failed++
			s.logger.ErrorContext(ctx, "Digest build failed",
				applog.FieldUserID, id,
				applog.FieldError, err)
			continue
		}
		if err := s.sender.Send(ctx, id, msg); err != nil {
			failed++
			s.logger.ErrorContext(ctx, "Digest delivery failed",
				applog.FieldRecipient, id,
				applog.FieldError, err)
			continue
		}
		sent++
	}

	s.logger.InfoContext(ctx, "Digest run complete",
		applog.FieldSent, sent,
		applog.FieldFailed, failed)
	return sent, failed
}

// nextRun returns the next occurrence of the configured time of day strictly
// after now.
func (s *Scheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
