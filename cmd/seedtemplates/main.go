// cmd/seedtemplates/main.go inserts the built-in label templates that are
// missing. The server does the same on start; this is for fresh databases
// provisioned ahead of the first deploy.
// Usage: go run ./cmd/seedtemplates
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vitorf997/packing-creator/internal/config"
	"github.com/vitorf997/packing-creator/internal/infra"
	"github.com/vitorf997/packing-creator/internal/repository"
	"github.com/vitorf997/packing-creator/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := service.NewLabelTemplateService(
		repository.NewLabelTemplateRepository(db),
		repository.NewClientRepository(db),
		nil,
	)
	created, err := svc.AsegurarBase(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	fmt.Printf("label templates created: %d\n", created)
}
