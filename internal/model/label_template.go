package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/labels"
)

// LabelTemplateTypeA6 is the only paper format currently printed.
const LabelTemplateTypeA6 = "A6_LANDSCAPE"

// LabelTemplate is a stored label layout. A template without ClientID is
// global; at most one template is the default.
type LabelTemplate struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name      string     `gorm:"index;not null"`
	Key       string     `gorm:"uniqueIndex;not null"`
	IsDefault bool       `gorm:"index;not null;default:false"`
	Active    bool       `gorm:"index;not null"`
	ClientID  *uuid.UUID `gorm:"type:uuid;index"`
	Type      string     `gorm:"index;not null;default:'A6_LANDSCAPE'"`
	Layout    datatypes.JSONType[labels.Layout]
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LabelTemplate) TableName() string { return "label_templates" }

func (t *LabelTemplate) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
