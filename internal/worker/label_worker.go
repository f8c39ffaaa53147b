package worker

// label_worker.go
// Processes label jobs from QueueLabels: renders the box labels of a packing
// list to a PDF file and, when asked, queues an email carrying it.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vitorf997/packing-creator/internal/cache"
)

const (
	JobQueued = "queued"
	JobDone   = "done"
	JobFailed = "failed"

	jobStatusTTL = 24 * time.Hour
)

// LabelJobPayload is the job envelope sent to QueueLabels.
type LabelJobPayload struct {
	JobID         string    `json:"job_id"`
	PackingListID uuid.UUID `json:"packing_list_id"`
	Email         string    `json:"email,omitempty"`
}

// JobStatus is what clients poll while a label job runs.
type JobStatus struct {
	JobID         string    `json:"job_id"`
	PackingListID uuid.UUID `json:"packing_list_id"`
	Status        string    `json:"status"`
	Email         string    `json:"email,omitempty"`
	File          string    `json:"file,omitempty"`
	Error         string    `json:"error,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func jobStatusKey(id string) string { return "label:job:" + id }

// SaveJobStatus stores st under its job id.
func SaveJobStatus(ctx context.Context, store cache.Store, st JobStatus) error {
	st.UpdatedAt = time.Now().UTC()
	return store.Set(ctx, jobStatusKey(st.JobID), st, jobStatusTTL)
}

// LoadJobStatus returns the status of a job and whether it is known.
func LoadJobStatus(ctx context.Context, store cache.Store, id string) (JobStatus, bool, error) {
	var st JobStatus
	ok, err := store.Get(ctx, jobStatusKey(id), &st)
	return st, ok, err
}

// LabelRenderer writes the labels of a packing list as a PDF under dir and
// returns the file path.
type LabelRenderer interface {
	RenderLabelFile(ctx context.Context, packingListID uuid.UUID, dir string) (string, error)
}

// EmailEnqueuer queues an email job.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type LabelWorker struct {
	renderer LabelRenderer
	emails   EmailEnqueuer
	store    cache.Store
	dir      string
}

func NewLabelWorker(renderer LabelRenderer, emails EmailEnqueuer, store cache.Store, dir string) *LabelWorker {
	return &LabelWorker{renderer: renderer, emails: emails, store: store, dir: dir}
}

func (w *LabelWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p LabelJobPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("label_worker: invalid payload")
		return nil
	}
	st := JobStatus{JobID: p.JobID, PackingListID: p.PackingListID, Email: p.Email}

	path, err := w.renderer.RenderLabelFile(ctx, p.PackingListID, w.dir)
	if err != nil {
		st.Status = JobFailed
		st.Error = err.Error()
		w.save(ctx, st)
		return fmt.Errorf("label_worker: render %s: %w", p.PackingListID, err)
	}
	st.Status = JobDone
	st.File = path

	if p.Email != "" && w.emails != nil {
		err := w.emails.EnqueueEmail(ctx, EmailJobPayload{
			To:          p.Email,
			Subject:     "Box labels",
			Body:        fmt.Sprintf("Attached are the box labels of packing list %s.", p.PackingListID),
			Attachments: []string{path},
		})
		if err != nil {
			// the file exists; report it instead of rendering again
			st.Error = "email not queued: " + err.Error()
			log.Error().Err(err).Str("job_id", p.JobID).Msg("label_worker: failed to queue email")
		}
	}
	w.save(ctx, st)
	log.Info().Str("job_id", p.JobID).Str("file", path).Msg("label_worker: labels rendered")
	return nil
}

func (w *LabelWorker) save(ctx context.Context, st JobStatus) {
	if w.store == nil || st.JobID == "" {
		return
	}
	if err := SaveJobStatus(ctx, w.store, st); err != nil {
		log.Warn().Err(err).Str("job_id", st.JobID).Msg("label_worker: failed to store job status")
	}
}
