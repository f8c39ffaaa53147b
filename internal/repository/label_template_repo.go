package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/model"
)

const labelTemplateListLimit = 300

// LabelTemplateFilter narrows Listar. A ClientID selects the client's own
// templates plus the global ones.
type LabelTemplateFilter struct {
	Q        string
	ClientID *uuid.UUID
	Active   *bool
}

// LabelTemplateRepository defines persistence for label templates.
type LabelTemplateRepository interface {
	Crear(ctx context.Context, t *model.LabelTemplate) error
	// CrearSiNoExiste inserts t unless a template with the same key exists.
	CrearSiNoExiste(ctx context.Context, t *model.LabelTemplate) (bool, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.LabelTemplate, error)
	ObtenerPorKey(ctx context.Context, key string) (*model.LabelTemplate, error)
	Listar(ctx context.Context, f LabelTemplateFilter) ([]model.LabelTemplate, error)
	Actualizar(ctx context.Context, t *model.LabelTemplate) error
	Eliminar(ctx context.Context, id uuid.UUID) error
	// QuitarDefaultExcepto clears IsDefault on every template but id.
	QuitarDefaultExcepto(ctx context.Context, id uuid.UUID) error
}

type labelTemplateRepository struct{ db *gorm.DB }

func NewLabelTemplateRepository(db *gorm.DB) LabelTemplateRepository {
	return &labelTemplateRepository{db: db}
}

func (r *labelTemplateRepository) Crear(ctx context.Context, t *model.LabelTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *labelTemplateRepository) CrearSiNoExiste(ctx context.Context, t *model.LabelTemplate) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.LabelTemplate{}).Where(`"key" = ?`, t.Key).Count(&n).Error
	if err != nil || n > 0 {
		return false, err
	}
	return true, r.db.WithContext(ctx).Create(t).Error
}

func (r *labelTemplateRepository) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.LabelTemplate, error) {
	var t model.LabelTemplate
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *labelTemplateRepository) ObtenerPorKey(ctx context.Context, key string) (*model.LabelTemplate, error) {
	var t model.LabelTemplate
	if err := r.db.WithContext(ctx).Where(`"key" = ?`, key).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *labelTemplateRepository) Listar(ctx context.Context, f LabelTemplateFilter) ([]model.LabelTemplate, error) {
	var list []model.LabelTemplate
	tx := r.db.WithContext(ctx)
	if f.ClientID != nil {
		tx = tx.Where("client_id = ? OR client_id IS NULL", *f.ClientID)
	}
	if f.Active != nil {
		tx = tx.Where("active = ?", *f.Active)
	}
	if q := strings.TrimSpace(f.Q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(`LOWER(name) LIKE ? OR LOWER("key") LIKE ?`, like, like)
	}
	err := tx.Order("is_default DESC").Order("created_at DESC").Limit(labelTemplateListLimit).Find(&list).Error
	return list, err
}

func (r *labelTemplateRepository) Actualizar(ctx context.Context, t *model.LabelTemplate) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *labelTemplateRepository) Eliminar(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.LabelTemplate{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *labelTemplateRepository) QuitarDefaultExcepto(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.LabelTemplate{}).
		Where("id <> ? AND is_default = ?", id, true).
		Update("is_default", false).Error
}
