package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"club-bridge/internal/infra/api"
	pg "club-bridge/internal/infra/db/postgres"
	"club-bridge/internal/infra/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP endpoints, the telegram reply bridge and the scheduler",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.serve(ctx)
	},
}

func (a *app) serve(ctx context.Context) error {
	errc := make(chan error, 2)

	// ---- HTTP ----
	srv := api.NewServer(a.digestUC, a.subsUC, a.tr, a.links, a.cfg.HTTP, a.log)
	go func() { errc <- srv.Start() }()

	// ---- Telegram ----
	if a.poller != nil {
		if strings.ToLower(a.cfg.Bot.Mode) != "polling" {
			a.log.Warn().Str("mode", a.cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
		}
		go func() {
			if err := a.poller.StartPolling(ctx, a.replyUC); err != nil && !errors.Is(err, context.Canceled) {
				errc <- err
			}
		}()
	} else {
		a.log.Warn().Msg("bot.token is empty; reply bridge disabled")
	}

	// ---- Scheduler ----
	sched := scheduler.NewScheduler(a.cfg.Horoscope.Timeout*2, a.log)
	if a.horoscopeCache != nil {
		if err := sched.Register(scheduler.NewHoroscopeJob(a.horoscopeCache, a.cfg.Horoscope.Cron)); err != nil {
			return err
		}
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	// ---- Pool stats ----
	if a.pool != nil {
		go pg.ReportPoolStats(ctx, a.pool, 15*time.Second)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutdown requested")
	case runErr = <-errc:
		a.log.Error().Err(runErr).Msg("component stopped")
	}

	if a.poller != nil {
		a.poller.StopPolling()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("http shutdown")
	}
	return runErr
}
