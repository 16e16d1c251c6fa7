package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photo-vote-bot/internal/adapters/gsapi"
	"photo-vote-bot/internal/adapters/notify"
	"photo-vote-bot/internal/adapters/repo"
	"photo-vote-bot/internal/domain"
	"photo-vote-bot/internal/infra/cache"
	"photo-vote-bot/internal/infra/config"
	"photo-vote-bot/internal/infra/db"
	infrahttp "photo-vote-bot/internal/infra/http"
	applog "photo-vote-bot/internal/infra/log"
	"photo-vote-bot/internal/infra/metrics"
	"photo-vote-bot/internal/usecase/boost"
	"photo-vote-bot/internal/usecase/cycle"
	"photo-vote-bot/internal/usecase/voting"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	service, err := buildService(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("voter: сервис не собран")
	}

	var guard domain.CycleGuard
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		guard = cache.NewRedisGuard(rdb)
	} else {
		guard = cache.NewLocalGuard()
	}

	srv := infrahttp.NewServer(logger)
	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("voter: HTTP сервер остановился")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(cfg.Cycle.IntervalSec) * time.Second
	runOnce := func() {
		// Цикл не должен ронять планировщик ни при каких обстоятельствах.
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Any("panic", r).Msg("voter: цикл завершился паникой")
			}
		}()
		release, ok, err := guard.Acquire(ctx, 2*interval)
		if err != nil {
			logger.Error().Err(err).Msg("voter: сторож циклов недоступен, тик пропущен")
			return
		}
		if !ok {
			metrics.CyclesSkipped.Inc()
			logger.Warn().Msg("voter: предыдущий цикл ещё идёт, тик пропущен")
			return
		}
		defer release()
		report, _ := service.RunCycle(ctx)
		srv.SetLastReport(report)
	}

	logger.Info().Dur("interval", interval).Msg("voter: запущен")
	runOnce()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("voter: остановка по сигналу")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("voter: HTTP сервер не остановился корректно")
			}
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func buildService(cfg config.AppConfig, logger zerolog.Logger) (*cycle.Service, error) {
	if cfg.API.Token == "" {
		return nil, domain.ErrMissingToken
	}

	client, err := gsapi.New(cfg.API.BaseURL, cfg.API.Token, gsapi.Device{
		Env:        cfg.Device.Env,
		APIVersion: cfg.Device.APIVersion,
		Brand:      cfg.Device.Brand,
		Model:      cfg.Device.Model,
		OSVersion:  cfg.Device.OSVersion,
		AppVersion: cfg.Device.AppVersion,
	}, gsapi.WithPoolLimit(cfg.Voting.PoolLimit))
	if err != nil {
		return nil, err
	}

	opts := []cycle.Option{
		cycle.WithPacing(
			time.Duration(cfg.Voting.PauseMinMS)*time.Millisecond,
			time.Duration(cfg.Voting.PauseMaxMS)*time.Millisecond,
		),
	}

	if cfg.PGDSN != "" {
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("подключение к БД: %w", err)
		}
		journal := repo.NewPostgres(pool)
		if err := journal.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		opts = append(opts, cycle.WithJournal(journal))
	}

	if cfg.Telegram.Token != "" && cfg.Telegram.AdminChatID != 0 {
		notifier, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cycle.WithNotifier(notifier))
	}

	engine := voting.NewEngine(nil)
	policy := boost.NewPolicy(time.Duration(cfg.Boost.LookaheadSec) * time.Second)
	return cycle.NewService(client, client, client, client, engine, policy, logger, opts...), nil
}
