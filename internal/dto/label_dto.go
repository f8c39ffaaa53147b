package dto

import "github.com/google/uuid"

type LabelJobRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// LabelJobResponse describes an asynchronous label render.
// Status: "queued" | "done" | "failed"
type LabelJobResponse struct {
	JobID         string    `json:"job_id"`
	PackingListID uuid.UUID `json:"packing_list_id"`
	Status        string    `json:"status"`
	Email         string    `json:"email,omitempty"`
	File          string    `json:"file,omitempty"`
	Error         string    `json:"error,omitempty"`
}
