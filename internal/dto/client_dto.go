package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitorf997/packing-creator/internal/packing"
)

// ── Request DTOs ──────────────────────────────────────────────────────────────

type ClientRequest struct {
	Name            string                  `json:"name"              validate:"required,max=200"`
	Code            string                  `json:"code"              validate:"max=50"`
	Contact         string                  `json:"contact"           validate:"max=200"`
	Notes           string                  `json:"notes"`
	LabelFields     []packing.LabelFieldDef `json:"label_fields"      validate:"max=50"`
	LabelTemplateID *uuid.UUID              `json:"label_template_id"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type LabelTemplateSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Key    string    `json:"key"`
	Active bool      `json:"active"`
}

type ClientResponse struct {
	ID              uuid.UUID               `json:"id"`
	Name            string                  `json:"name"`
	Code            string                  `json:"code"`
	Contact         string                  `json:"contact"`
	Notes           string                  `json:"notes"`
	LabelFields     []packing.LabelFieldDef `json:"label_fields"`
	LabelTemplateID *uuid.UUID              `json:"label_template_id"`
	LabelTemplate   *LabelTemplateSummary   `json:"label_template,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}
