package worker

// dlq.go: dead letter queue
// Jobs that fail every attempt are moved to dlq:{original_queue} for
// inspection. Email dead letters are re-driven by the retry cron.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"

	// MaxRedrives bounds how often a dead letter is put back on its queue.
	MaxRedrives = 5
)

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
	Redrives      int             `json:"redrives"`
}

// SendToDLQ pushes a failed job to the dead letter queue of its original queue.
func SendToDLQ(ctx context.Context, q Queue, entry DLQEntry) {
	if entry.FailedAt.IsZero() {
		entry.FailedAt = time.Now().UTC()
	}
	if !json.Valid(entry.Payload) {
		entry.Payload = nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", entry.OriginalQueue).Msg("dlq: failed to marshal entry")
		return
	}
	key := DLQPrefix + entry.OriginalQueue
	if err := q.Push(ctx, key, data); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: failed to push")
		return
	}
	log.Warn().
		Str("queue", entry.OriginalQueue).
		Str("job_type", entry.JobType).
		Str("reason", entry.Reason).
		Int("attempts", entry.Attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, q Queue, queue string) (int64, error) {
	return q.Len(ctx, DLQPrefix+queue)
}

// Requeue looks at up to limit dead letters of queue and puts the ones that
// have not exhausted MaxRedrives back on it. The rest return to the DLQ.
// It reports how many jobs were re-driven.
func (d *Dispatcher) Requeue(ctx context.Context, queue string, limit int) (int, error) {
	moved := 0
	for i := 0; i < limit; i++ {
		_, raw, err := d.queue.Pop(ctx, 10*time.Millisecond, DLQPrefix+queue)
		if errors.Is(err, ErrQueueEmpty) {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}
		var e DLQEntry
		if err := json.Unmarshal(raw, &e); err != nil || e.JobType == "" {
			log.Error().Str("queue", queue).Msg("dlq: dropping undecodable entry")
			continue
		}
		if e.Redrives >= MaxRedrives {
			if err := d.queue.Push(ctx, DLQPrefix+queue, raw); err != nil {
				return moved, err
			}
			continue
		}
		encoded, err := json.Marshal(Job{ID: "redrive", Type: e.JobType, Payload: e.Payload, Redrives: e.Redrives + 1})
		if err != nil {
			return moved, err
		}
		if err := d.queue.Push(ctx, queue, encoded); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}
