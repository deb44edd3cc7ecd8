package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/BearBump/FoodBridge/config"
	"github.com/BearBump/FoodBridge/internal/logger"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("config parse error, %v", err))
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = RunFoodBridgeWorker(ctx, cfg, os.Getenv("workerSwaggerPath"), defaultWorkerFactories(), log)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("foodbridge-worker stopped")
		cancel()
		logrus.Exit(1)
	}
}
