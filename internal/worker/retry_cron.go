package worker

// retry_cron.go
// Background goroutine that periodically re-drives dead-lettered email jobs.
// Uses the circuit breaker state to avoid hammering a downed SMTP relay.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vitorf997/packing-creator/internal/infra"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// StartRetryCron ticks every 30s until ctx is done.
func StartRetryCron(ctx context.Context, d *Dispatcher, cb *infra.CircuitBreaker) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				redriveEmails(ctx, d, cb)
			}
		}
	}()
}

func redriveEmails(ctx context.Context, d *Dispatcher, cb *infra.CircuitBreaker) int {
	if cb != nil && cb.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return 0
	}
	moved, err := d.Requeue(ctx, QueueEmail, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to re-drive email jobs")
	}
	if moved > 0 {
		log.Info().Int("count", moved).Msg("retry_cron: email jobs re-driven")
	}
	return moved
}
