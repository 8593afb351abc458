package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coworking_compliance/internal/app"
	"coworking_compliance/internal/infra/config"
	idb "coworking_compliance/internal/infra/database"
	"coworking_compliance/internal/infra/httpapi"
	"coworking_compliance/internal/infra/logger"
	"coworking_compliance/internal/infra/scheduler"
	"coworking_compliance/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Log.WithField("component", "main")
	log.Infof("Configuration loaded. Environment: %s, cron spec: %q", cfg.Environment, cfg.CronSpec)

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	taskRepo := idb.NewPostgresTaskRepository(db)
	customerRepo := idb.NewPostgresCustomerRepository(db)
	notificationRepo := idb.NewPostgresNotificationRepository(db)
	ledgerRepo := idb.NewPostgresLedgerRepository(db)

	var alerter app.Alerter
	if cfg.TelegramToken != "" && cfg.AdminTelegramID != 0 {
		tgAlerter, err := telegram.NewAdminAlerter(cfg.TelegramToken, cfg.AdminTelegramID, logger.Log.WithField("component", "telegram"))
		if err != nil {
			log.Fatalf("Could not create telegram alerter: %v", err)
		}
		alerter = tgAlerter
		log.Info("Telegram admin alerts enabled")
	}

	taskEngine := app.NewTaskEngine(taskRepo, ledgerRepo, logger.Log.WithField("engine", "tasks"))
	accountEngine := app.NewAccountEngine(customerRepo, notificationRepo,
		logger.Log.WithField("engine", "accounts"), cfg.GracePeriod, cfg.UnlockWindow)
	runner := app.NewRunner(taskEngine, accountEngine, logger.Log.WithField("component", "runner"), alerter)

	sched := scheduler.NewComplianceScheduler(runner, logger.Log.WithField("component", "scheduler"), cfg.CronSpec, cfg.PassTimeout)
	if err := sched.Start(); err != nil {
		log.Fatalf("Could not start compliance scheduler: %v", err)
	}

	srv := &http.Server{
		Addr:    cfg.HTTPListenAddr,
		Handler: httpapi.NewRouter(runner, logger.Log.WithField("component", "httpapi"), cfg.PassTimeout),
	}
	go func() {
		log.Infof("HTTP API listening on %s", cfg.HTTPListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	sched.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown: %v", err)
	}
	log.Info("Shut down gracefully")
}
