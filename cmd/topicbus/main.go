package main

import (
	"TopicBus/cmd/topicbus/commands"
	"TopicBus/internal/shared/config"
	"TopicBus/internal/shared/logger"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	isDevMode := cfg.AppEnv == "dev"
	baseLogger := logger.New(isDevMode, cfg.LogLevel)
	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Run the requested scenario
	if err := commands.NewRootCommand(cfg, &baseLogger).ExecuteContext(ctx); err != nil {
		baseLogger.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}
