package dto

import (
	"time"

	"github.com/google/uuid"
)

type SizeMatrixRequest struct {
	Name  string   `json:"name"  validate:"required,max=200"`
	Sizes []string `json:"sizes" validate:"required,min=1,max=100"`
}

type SizeMatrixResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Sizes     []string  `json:"sizes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
