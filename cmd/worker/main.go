package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"inmo24x7_backend/internal/email"
	"inmo24x7_backend/internal/scheduler"
	"inmo24x7_backend/platform/config"
	"inmo24x7_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender := email.NewFromConfig(cfg, log)

	worker, err := scheduler.NewWorker(cfg, cfg, sender, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("worker stopped")
}
