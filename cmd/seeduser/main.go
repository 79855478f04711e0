// cmd/seeduser — creates the default demo account in the local store.
// Usage: go run ./cmd/seeduser
package main

import (
	"context"
	"os"
	"time"

	"zenith/internal/config"
	"zenith/internal/repository"
	"zenith/internal/service"
	"zenith/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	st, err := store.Open(cfg.DataDir, cfg.StoreNamespace)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}

	auth := service.NewAuthService(repository.NewUserRepository(st))
	if err := auth.SeedDefaultUser(context.Background(), cfg.SeedUserEmail, cfg.SeedUserPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to seed user")
	}
	log.Info().Str("email", cfg.SeedUserEmail).Msg("seed complete")
}
