package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/packing"
)

// Client is a customer whose boxes are labelled. LabelFields are the dynamic
// attributes printed on its labels.
type Client struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"index;not null"`
	Code        string    `gorm:"index;not null;default:''"`
	Contact     string    `gorm:"index;not null;default:''"`
	Notes       string    `gorm:"not null;default:''"`
	LabelFields datatypes.JSONSlice[packing.LabelFieldDef]
	// LabelTemplateID is the template explicitly assigned to the client.
	LabelTemplateID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	LabelTemplate *LabelTemplate `gorm:"foreignKey:LabelTemplateID"`
}

func (Client) TableName() string { return "clients" }

func (c *Client) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
