package main

import (
	"context"
	"fmt"
	"time"

	"photo-vote-bot/internal/adapters/gsapi"
	"photo-vote-bot/internal/adapters/notify"
	"photo-vote-bot/internal/adapters/repo"
	"photo-vote-bot/internal/domain"
	"photo-vote-bot/internal/infra/config"
	"photo-vote-bot/internal/infra/db"
	applog "photo-vote-bot/internal/infra/log"
	"photo-vote-bot/internal/usecase/boost"
	"photo-vote-bot/internal/usecase/cycle"
	"photo-vote-bot/internal/usecase/voting"
)

// Одноразовый запуск одного цикла: для внешнего cron вместо демона.
func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	if cfg.API.Token == "" {
		logger.Fatal().Err(domain.ErrMissingToken).Msg("cycle: запуск без токена невозможен")
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
		logger.Fatal().Err(err).Msg("cycle: клиент платформы не создан")
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
			logger.Fatal().Err(err).Msg("cycle: нет подключения к БД")
		}
		defer pool.Close()
		journal := repo.NewPostgres(pool)
		if err := journal.EnsureSchema(context.Background()); err != nil {
			logger.Fatal().Err(err).Msg("cycle: схема журнала не создана")
		}
		opts = append(opts, cycle.WithJournal(journal))
	}
	if cfg.Telegram.Token != "" && cfg.Telegram.AdminChatID != 0 {
		notifier, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID)
		if err != nil {
			logger.Fatal().Err(err).Msg("cycle: уведомитель не создан")
		}
		opts = append(opts, cycle.WithNotifier(notifier))
	}

	engine := voting.NewEngine(nil)
	policy := boost.NewPolicy(time.Duration(cfg.Boost.LookaheadSec) * time.Second)
	service := cycle.NewService(client, client, client, client, engine, policy, logger, opts...)

	report, err := service.RunCycle(context.Background())
	if err != nil {
		// Сетевые сбои не фатальны: следующий запуск повторит попытку.
		logger.Warn().Err(err).Msg("cycle: проход завершился с ошибкой получения данных")
	}
	fmt.Println(notify.FormatReport(report))
}
