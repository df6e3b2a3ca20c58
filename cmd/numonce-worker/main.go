package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"numonce/internal/announce"
	"numonce/internal/calendar"
	"numonce/internal/config"
	"numonce/internal/game"
	"numonce/internal/store"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cal, err := calendar.NewResolver(cfg.Timezone)
	if err != nil {
		logger.Error("load timezone", "zone", cfg.Timezone, "err", err)
		os.Exit(1)
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	pg := store.New(pool)
	svc := game.NewService(game.Deps{
		Ledger:   pg,
		Results:  pg,
		Names:    pg,
		Profiles: pg,
		Calendar: cal,
		Logger:   logger,
	})

	announcers := buildAnnouncers(ctx, cfg, logger)
	defer announcers.Close()

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("NUMONCE_WORKER_RUN_ONCE")), "true")
	if runOnce {
		settleEndedDay(ctx, svc, announcers, logger)
		logger.Info("worker run-once completed")
		return
	}

	sched, err := gocron.NewScheduler(gocron.WithLocation(cal.Location()))
	if err != nil {
		logger.Error("scheduler init failed", "err", err)
		os.Exit(1)
	}
	_, err = sched.NewJob(
		gocron.CronJob(cfg.SettleCron, false),
		gocron.NewTask(func() {
			jobCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()
			settleEndedDay(jobCtx, svc, announcers, logger)
		}),
	)
	if err != nil {
		logger.Error("schedule settle job failed", "cron", cfg.SettleCron, "err", err)
		os.Exit(1)
	}

	sched.Start()
	logger.Info("worker started", "cron", cfg.SettleCron, "zone", cfg.Timezone)

	<-ctx.Done()
	if err := sched.Shutdown(); err != nil {
		logger.Error("scheduler shutdown", "err", err)
	}
	logger.Info("worker shutdown")
}

// settleEndedDay settles yesterday on the game clock and, if anything was
// paid out, pushes the summary to the configured channels. A day already
// settled or with no picks is routine, not a failure.
func settleEndedDay(ctx context.Context, svc *game.Service, announcers announce.Multi, logger *slog.Logger) {
	runID := uuid.NewString()
	out, rows, err := svc.SettleEndedDay(ctx, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, game.ErrAlreadySettled):
			logger.Info("day already settled", "run_id", runID, "date", out.Date.String())
		case errors.Is(err, game.ErrNoSubmissions):
			logger.Info("no picks to settle", "run_id", runID, "date", out.Date.String())
		default:
			logger.Error("settlement failed", "run_id", runID, "date", out.Date.String(), "err", err)
		}
		return
	}
	logger.Info("settled day", "run_id", runID, "date", out.Date.String(),
		"players", out.ResultCount, "total_payout", out.TotalPayout)

	if len(announcers) == 0 {
		return
	}
	if err := announcers.Announce(ctx, out, rows); err != nil {
		logger.Warn("announce failed", "run_id", runID, "date", out.Date.String(), "err", err)
	}
}

func buildAnnouncers(ctx context.Context, cfg config.WorkerConfig, logger *slog.Logger) announce.Multi {
	var out announce.Multi

	if cfg.DiscordToken != "" && cfg.DiscordChannelID != "" {
		d, err := announce.NewDiscord(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			logger.Warn("discord announcer disabled", "err", err)
		} else {
			out = append(out, d)
			logger.Info("discord announcer enabled", "channel_id", cfg.DiscordChannelID)
		}
	}

	if cfg.WhatsAppStoreDSN != "" && cfg.WhatsAppGroupJID != "" {
		w, err := announce.NewWhatsApp(ctx, cfg.WhatsAppStoreDSN, cfg.WhatsAppGroupJID)
		if err != nil {
			logger.Warn("whatsapp announcer disabled", "err", err)
		} else {
			out = append(out, w)
			logger.Info("whatsapp announcer enabled", "group", cfg.WhatsAppGroupJID)
		}
	}

	return out
}
