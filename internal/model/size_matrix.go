package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SizeMatrix is a named, ordered list of sizes (e.g. S, M, L, XL).
type SizeMatrix struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"index;not null"`
	Sizes     datatypes.JSONSlice[string]
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SizeMatrix) TableName() string { return "size_matrices" }

func (m *SizeMatrix) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
