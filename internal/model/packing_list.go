package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/packing"
)

// PackingList is one shipment: its sizes, reference items and the box
// allocation rows. TotalUnits is the sum of the entries' totals at save time.
type PackingList struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	PO           string    `gorm:"column:po;index;not null;default:''"`
	Model        string    `gorm:"index;not null;default:''"`
	ClientID     uuid.UUID `gorm:"type:uuid;index;not null"`
	SizeMatrixID uuid.UUID `gorm:"type:uuid;index;not null"`
	Sizes        datatypes.JSONSlice[string]
	LabelItems   datatypes.JSONSlice[packing.ReferenceItem]
	Entries      datatypes.JSONSlice[packing.Entry]
	TotalUnits   int    `gorm:"not null;default:0"`
	Notes        string `gorm:"not null;default:''"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Client     *Client     `gorm:"foreignKey:ClientID"`
	SizeMatrix *SizeMatrix `gorm:"foreignKey:SizeMatrixID"`
}

func (PackingList) TableName() string { return "packing_lists" }

func (p *PackingList) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
