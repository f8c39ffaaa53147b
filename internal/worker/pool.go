package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vitorf997/packing-creator/internal/metrics"
)

const (
	QueueLabels = "jobs:labels"
	QueueEmail  = "jobs:email"

	JobTypeLabels = "labels"
	JobTypeEmail  = "email"

	popTimeout = 5 * time.Second
)

// Job is the generic envelope for all async tasks.
type Job struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	// Redrives counts how many times the job came back from the DLQ.
	Redrives int `json:"redrives,omitempty"`
}

// Processor handles the payload of one job type. A returned error makes the
// dispatcher retry the job and finally dead-letter it.
type Processor interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs and runs the worker pool that consumes them.
type Dispatcher struct {
	queue       Queue
	processors  map[string]Processor
	maxAttempts int
	backoff     func(attempt int) time.Duration
}

func NewDispatcher(queue Queue, maxAttempts int) *Dispatcher {
	return &Dispatcher{
		queue:       queue,
		processors:  map[string]Processor{},
		maxAttempts: max(maxAttempts, 1),
		backoff:     exponentialBackoff,
	}
}

// Register binds a processor to a job type. Call before StartWorkerPool.
func (d *Dispatcher) Register(jobType string, p Processor) {
	d.processors[jobType] = p
}

// EnqueueLabels pushes a label render job and returns its id.
func (d *Dispatcher) EnqueueLabels(ctx context.Context, payload LabelJobPayload) (string, error) {
	if payload.JobID == "" {
		payload.JobID = uuid.NewString()
	}
	return payload.JobID, d.enqueue(ctx, QueueLabels, JobTypeLabels, payload.JobID, payload)
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobTypeEmail, uuid.NewString(), payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType, id string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("worker: encode %s payload: %w", jobType, err)
	}
	encoded, err := json.Marshal(Job{ID: id, Type: jobType, Payload: data})
	if err != nil {
		return fmt.Errorf("worker: encode job: %w", err)
	}
	return d.queue.Push(ctx, queue, encoded)
}

// StartWorkerPool launches numWorkers goroutines consuming every queue.
func (d *Dispatcher) StartWorkerPool(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go d.runWorker(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Msg("worker pool started")
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		}
		queue, raw, err := d.queue.Pop(ctx, popTimeout, QueueLabels, QueueEmail)
		if err != nil {
			continue // timeout or context cancelled
		}
		d.processJob(ctx, queue, raw)
	}
}

func (d *Dispatcher) processJob(ctx context.Context, queue string, raw []byte) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, d.queue, DLQEntry{OriginalQueue: queue, Payload: raw, Reason: "undecodable job: " + err.Error()})
		metrics.JobsTotal.WithLabelValues(queue, "dead").Inc()
		return
	}
	p, ok := d.processors[job.Type]
	if !ok {
		SendToDLQ(ctx, d.queue, DLQEntry{OriginalQueue: queue, JobType: job.Type, Payload: job.Payload, Reason: "no processor registered"})
		metrics.JobsTotal.WithLabelValues(queue, "dead").Inc()
		return
	}

	log.Info().Str("type", job.Type).Str("job_id", job.ID).Str("queue", queue).Msg("processing job")
	attempts := 0
	err := withRetry(ctx, d.maxAttempts, d.backoff, func(int) error {
		attempts++
		return p.Process(ctx, job.Payload)
	})
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Int("attempts", attempts).Msg("job failed")
		SendToDLQ(ctx, d.queue, DLQEntry{
			OriginalQueue: queue,
			JobType:       job.Type,
			Payload:       job.Payload,
			Reason:        err.Error(),
			Attempts:      attempts,
			Redrives:      job.Redrives,
		})
		metrics.JobsTotal.WithLabelValues(queue, "dead").Inc()
		return
	}
	metrics.JobsTotal.WithLabelValues(queue, "done").Inc()
}

// withRetry calls fn up to maxAttempts times, sleeping backoff(i) before
// attempt i (0-based, never before the first).
func withRetry(ctx context.Context, maxAttempts int, backoff func(int) time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(i)):
			}
		}
		if lastErr = fn(i); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// exponentialBackoff waits 1s, 2s, 4s … between attempts.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * time.Second
}
