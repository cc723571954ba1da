package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyadubrovsky/redis-admin/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func initLogger(cfg config.Log) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("zerolog.ParseLevel: %w", err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return nil
}
