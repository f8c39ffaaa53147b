package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/model"
)

const clientListLimit = 200

// ClientRepository defines persistence for clients.
type ClientRepository interface {
	Crear(ctx context.Context, c *model.Client) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	Listar(ctx context.Context, q string) ([]model.Client, error)
	Actualizar(ctx context.Context, c *model.Client) error
	Eliminar(ctx context.Context, id uuid.UUID) error
	// DesasignarTemplate clears the template assignment of every client that
	// uses templateID.
	DesasignarTemplate(ctx context.Context, templateID uuid.UUID) error
}

type clientRepository struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Crear(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Omit("LabelTemplate").Create(c).Error
}

func (r *clientRepository) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).Preload("LabelTemplate").First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clientRepository) Listar(ctx context.Context, q string) ([]model.Client, error) {
	var list []model.Client
	tx := r.db.WithContext(ctx).Preload("LabelTemplate")
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ? OR LOWER(contact) LIKE ?", like, like, like)
	}
	err := tx.Order("created_at DESC").Limit(clientListLimit).Find(&list).Error
	return list, err
}

func (r *clientRepository) Actualizar(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Omit("LabelTemplate").Save(c).Error
}

func (r *clientRepository) Eliminar(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Client{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *clientRepository) DesasignarTemplate(ctx context.Context, templateID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Client{}).
		Where("label_template_id = ?", templateID).
		Update("label_template_id", nil).Error
}
