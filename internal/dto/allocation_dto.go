package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitorf997/packing-creator/internal/packing"
)

// ── Request DTOs ──────────────────────────────────────────────────────────────

// CrearSesionRequest opens an allocation session. Sizes come from the request
// or from the size matrix; an existing packing list seeds every field.
type CrearSesionRequest struct {
	ClientID      *uuid.UUID              `json:"client_id"`
	SizeMatrixID  *uuid.UUID              `json:"size_matrix_id"`
	PackingListID *uuid.UUID              `json:"packing_list_id"`
	Sizes         []string                `json:"sizes"`
	LabelItems    []packing.ReferenceItem `json:"label_items"`
	Entries       []packing.Entry         `json:"entries"`
}

type SetFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

type SetItemFieldRequest struct {
	FieldID string `json:"field_id" validate:"required"`
	Value   string `json:"value"`
}

type AddRowRequest struct {
	ItemID string `json:"item_id"`
	Size   string `json:"size" validate:"required"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type SessionRow struct {
	packing.Row
	Valid bool `json:"valid"`
}

type SessionResponse struct {
	ID         string                  `json:"id"`
	Sizes      []string                `json:"sizes"`
	FieldDefs  []packing.LabelFieldDef `json:"field_defs"`
	Items      []packing.ReferenceItem `json:"items"`
	Rows       []SessionRow            `json:"rows"`
	TotalUnits int                     `json:"total_units"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

type ValidateResponse struct {
	Valid bool                         `json:"valid"`
	Rows  map[string]packing.RowErrors `json:"rows"`
}

type SubmitResponse struct {
	Entries    []packing.Entry `json:"entries"`
	TotalUnits int             `json:"total_units"`
}
