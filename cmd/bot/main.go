package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"antispam/internal/cache"
	"antispam/internal/config"
	"antispam/internal/detector"
	"antispam/internal/guard"
	"antispam/internal/repository"
	"antispam/internal/server"
	"antispam/internal/tasks"
	"antispam/internal/telegram"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	cfgPath := "configs/config.yml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repository.MigrateDB(db, logger)

	policyRepo := repository.NewGroupPolicyRepository(db, logger)
	profileRepo := repository.NewRiskProfileRepository(db, logger)
	logRepo := repository.NewDetectionLogRepository(db, logger)
	statsRepo := repository.NewStatsRepository(db, logger)

	det, err := detector.NewClient(detector.Config{
		APIKey:    cfg.Detector.APIKey,
		BaseURL:   cfg.Detector.BaseURL,
		ModelName: cfg.Detector.Model,
		Timeout:   time.Duration(cfg.Detector.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize detector client", zap.Error(err))
	}

	bot, err := telegram.NewBot(cfg.Telegram.BotToken, policyRepo, statsRepo, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Telegram bot", zap.Error(err))
	}

	supervisor := tasks.NewSupervisor(logger)
	captions := cache.NewCaptionCache(1024, 30*time.Minute)

	g := guard.New(policyRepo, profileRepo, logRepo, statsRepo, det, bot, supervisor, captions, logger)
	bot.SetGuard(g)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := bot.Start(ctx); err != nil {
			logger.Error("Telegram bot failed", zap.Error(err))
		}
	}()

	if cfg.Admin.Port != "" {
		srv := server.NewServer(db, cfg, logrus.New(), logger)
		go srv.Run(cfg.Admin.Port)
	}

	<-ctx.Done()
	logger.Info("Application stopped.")
}
