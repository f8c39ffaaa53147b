package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitorf997/packing-creator/internal/packing"
)

// ── Request DTOs ──────────────────────────────────────────────────────────────

type PackingListRequest struct {
	PO           string                  `json:"po"             validate:"max=100"`
	Model        string                  `json:"model"          validate:"max=200"`
	ClientID     uuid.UUID               `json:"client_id"      validate:"required"`
	SizeMatrixID uuid.UUID               `json:"size_matrix_id" validate:"required"`
	Sizes        []string                `json:"sizes"          validate:"required,min=1"`
	LabelItems   []packing.ReferenceItem `json:"label_items"`
	Entries      []packing.Entry         `json:"entries"        validate:"required"`
	Notes        string                  `json:"notes"`
}

type PackingListFilter struct {
	Q            string     `form:"q"`
	ClientID     *uuid.UUID `form:"client_id"`
	SizeMatrixID *uuid.UUID `form:"size_matrix_id"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type PackingListResponse struct {
	ID             uuid.UUID               `json:"id"`
	PO             string                  `json:"po"`
	Model          string                  `json:"model"`
	ClientID       uuid.UUID               `json:"client_id"`
	ClientName     string                  `json:"client_name,omitempty"`
	SizeMatrixID   uuid.UUID               `json:"size_matrix_id"`
	SizeMatrixName string                  `json:"size_matrix_name,omitempty"`
	Sizes          []string                `json:"sizes"`
	LabelItems     []packing.ReferenceItem `json:"label_items"`
	Entries        []packing.Entry         `json:"entries"`
	TotalUnits     int                     `json:"total_units"`
	Notes          string                  `json:"notes"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}
