package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/hiroyagi/yakumemo/internal/api"
	"github.com/hiroyagi/yakumemo/internal/config"
	"github.com/hiroyagi/yakumemo/internal/database"
	"github.com/hiroyagi/yakumemo/internal/notify"
	"github.com/hiroyagi/yakumemo/internal/repository"
	"github.com/hiroyagi/yakumemo/internal/service"
	"github.com/hiroyagi/yakumemo/internal/storage"
	"github.com/hiroyagi/yakumemo/internal/translate"
	"github.com/hiroyagi/yakumemo/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr := logger.New(cfg.Debug)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	provider, err := translate.New(cfg, logr)
	if err != nil {
		log.Fatalf("translate provider: %v", err)
	}

	pairRepo := repository.NewPairRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	rechargeRepo := repository.NewRechargeRepository(db)
	planRepo := repository.NewPlanRepository(db)
	configRepo := repository.NewConfigRepository(db)

	hub := notify.NewHub(logr)

	memoryService := service.NewMemoryService(cfg, pairRepo, logr)
	profileService := service.NewProfileService(cfg, profileRepo, logr)
	requestService := service.NewRequestService(requestRepo, profileRepo, hub, logr)
	planService := service.NewPlanService(cfg, planRepo, logr)
	rechargeService := service.NewRechargeService(rechargeRepo, planRepo, hub, logr)
	translateService := service.NewTranslateService(provider, profileRepo, logr)
	statsService := service.NewStatsService(profileRepo, pairRepo, requestRepo, rechargeRepo)

	if err := planService.EnsureDefaultPlans(ctx); err != nil {
		log.Fatalf("ensure default plans: %v", err)
	}

	var uploader *storage.Uploader
	if cfg.S3Enabled() {
		uploader, err = storage.NewUploader(cfg)
		if err != nil {
			log.Fatalf("storage uploader: %v", err)
		}
	} else {
		logr.Warn("object storage not configured, proof uploads disabled")
	}

	if cfg.TelegramBotToken != "" {
		notifier, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramAdminChatID, logr)
		if err != nil {
			log.Fatalf("telegram notifier: %v", err)
		}
		go notifier.Run(ctx, hub)
	}

	server := api.NewServer(cfg, logr, api.Deps{
		Memory:    memoryService,
		Requests:  requestService,
		Recharges: rechargeService,
		Plans:     planService,
		Profiles:  profileService,
		Translate: translateService,
		Stats:     statsService,
		Settings:  configRepo,
		Uploader:  uploader,
		Hub:       hub,
	})

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("server stopped", "err", err)
	}
}
