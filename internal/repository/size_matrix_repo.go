package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/model"
)

const sizeMatrixListLimit = 200

// SizeMatrixRepository defines persistence for size matrices.
type SizeMatrixRepository interface {
	Crear(ctx context.Context, m *model.SizeMatrix) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.SizeMatrix, error)
	Listar(ctx context.Context, q string) ([]model.SizeMatrix, error)
	Actualizar(ctx context.Context, m *model.SizeMatrix) error
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type sizeMatrixRepository struct{ db *gorm.DB }

func NewSizeMatrixRepository(db *gorm.DB) SizeMatrixRepository {
	return &sizeMatrixRepository{db: db}
}

func (r *sizeMatrixRepository) Crear(ctx context.Context, m *model.SizeMatrix) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *sizeMatrixRepository) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.SizeMatrix, error) {
	var m model.SizeMatrix
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *sizeMatrixRepository) Listar(ctx context.Context, q string) ([]model.SizeMatrix, error) {
	var list []model.SizeMatrix
	tx := r.db.WithContext(ctx)
	if q = strings.TrimSpace(q); q != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	err := tx.Order("created_at DESC").Limit(sizeMatrixListLimit).Find(&list).Error
	return list, err
}

func (r *sizeMatrixRepository) Actualizar(ctx context.Context, m *model.SizeMatrix) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *sizeMatrixRepository) Eliminar(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.SizeMatrix{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
