package main

import (
	"context"
	"os/signal"
	"syscall"

	"rally/config"
	"rally/di"
	"rally/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := di.InitializeDeliveryWorker()
	worker.Run(ctx)
}
