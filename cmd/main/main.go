package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/ilyadubrovsky/redis-admin/internal/app"
	"github.com/ilyadubrovsky/redis-admin/internal/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal().Msgf("godotenv.Load: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Msgf("cant initialize config: %v\n%s", err, config.Description())
	}

	if err = initLogger(cfg.Log); err != nil {
		log.Fatal().Msgf("initLogger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Msgf("app.New: %v", err)
	}

	if err = a.Run(ctx); err != nil {
		log.Error().Msgf("app.Run: %v", err)
		os.Exit(1)
	}

	log.Info().Msg("app stopped")
}
