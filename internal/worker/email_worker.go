package worker

// email_worker.go
// Processes email jobs from QueueEmail: mails rendered label files over SMTP.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vitorf997/packing-creator/internal/infra"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	To          string   `json:"to"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments"`
}

// LabelMailer is the part of infra.Mailer the worker needs.
type LabelMailer interface {
	SendLabels(to, subject, body string, attachments ...string) error
}

// EmailWorker sends emails through the circuit breaker guarding SMTP.
type EmailWorker struct {
	mailer LabelMailer
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer LabelMailer, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// a malformed payload never succeeds, do not retry it
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.To == "" {
		log.Warn().Msg("email_worker: empty recipient, skipping")
		return nil
	}

	send := func() error {
		return w.mailer.SendLabels(payload.To, payload.Subject, payload.Body, payload.Attachments...)
	}
	var err error
	if w.cb != nil {
		err = w.cb.Execute(send)
	} else {
		err = send()
	}
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.To, err)
	}
	log.Info().Str("to", payload.To).Int("attachments", len(payload.Attachments)).Msg("email_worker: labels sent")
	return nil
}
