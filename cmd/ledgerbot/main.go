package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ledgerbot/internal/bot"
	"ledgerbot/internal/cli"
	"ledgerbot/internal/digest"
	apphttp "ledgerbot/internal/http"
	applog "ledgerbot/internal/log"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/scheduler"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.OpenRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	sender, closeSender := cli.NewSender(logger, cfg)
	defer closeSender()

	calc := metrics.New(repo)
	handler := bot.New(repo, calc, logger)
	srv := apphttp.NewServer(":"+cfg.Port, handler, sender, logger, cfg.RateLimitPerMinute)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting ledgerbot server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.DigestEnabled {
		sched := scheduler.New(repo, digest.New(repo, calc), sender, cfg.DigestHour, cfg.DigestMinute, logger)
		g.Go(func() error {
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		logger.Info("Daily digest disabled")
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
