package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitorf997/packing-creator/internal/labels"
)

// ── Request DTOs ──────────────────────────────────────────────────────────────

// LabelTemplateRequest creates or replaces a template. Active defaults to true
// when omitted.
type LabelTemplateRequest struct {
	Name      string              `json:"name"       validate:"required,max=200"`
	Key       string              `json:"key"        validate:"required,max=100"`
	Type      string              `json:"type"       validate:"omitempty,oneof=A6_LANDSCAPE"`
	Active    *bool               `json:"active"`
	IsDefault bool                `json:"is_default"`
	ClientID  *uuid.UUID          `json:"client_id"`
	Layout    *labels.LayoutPatch `json:"layout"`
}

type LabelTemplateFilter struct {
	Q        string     `form:"q"`
	ClientID *uuid.UUID `form:"client_id"`
	Active   *bool      `form:"active"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type LabelTemplateResponse struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Key       string        `json:"key"`
	Type      string        `json:"type"`
	Active    bool          `json:"active"`
	IsDefault bool          `json:"is_default"`
	ClientID  *uuid.UUID    `json:"client_id"`
	Layout    labels.Layout `json:"layout"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
