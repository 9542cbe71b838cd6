// The digest-worker pushes the morning summary on its own, for deployments
// that run the webhook server and the scheduler as separate processes. Run
// with -once to fire a single digest round and exit.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ledgerbot/internal/cli"
	"ledgerbot/internal/digest"
	applog "ledgerbot/internal/log"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/scheduler"
)

func main() {
	once := flag.Bool("once", false, "run one digest round and exit")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.OpenRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	sender, closeSender := cli.NewSender(logger, cfg)
	defer closeSender()

	gen := digest.New(repo, metrics.New(repo))
	sched := scheduler.New(repo, gen, sender, cfg.DigestHour, cfg.DigestMinute, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		sent, failed := sched.RunOnce(ctx)
		logger.Info("Single digest round finished",
			applog.FieldSent, sent,
			applog.FieldFailed, failed)
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	logger.Info("Starting digest-worker",
		"hour", cfg.DigestHour,
		"minute", cfg.DigestMinute)
	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Scheduler error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Digest worker stopped gracefully")
}
