package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vitorf997/packing-creator/internal/model"
)

const packingListLimit = 100

// PackingListFilter narrows Listar. Q matches PO, model, notes, client name
// and size matrix name.
type PackingListFilter struct {
	Q            string
	ClientID     *uuid.UUID
	SizeMatrixID *uuid.UUID
}

// PackingListRepository defines persistence for packing lists.
type PackingListRepository interface {
	Crear(ctx context.Context, p *model.PackingList) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.PackingList, error)
	Listar(ctx context.Context, f PackingListFilter) ([]model.PackingList, error)
	Actualizar(ctx context.Context, p *model.PackingList) error
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type packingListRepository struct{ db *gorm.DB }

func NewPackingListRepository(db *gorm.DB) PackingListRepository {
	return &packingListRepository{db: db}
}

func (r *packingListRepository) Crear(ctx context.Context, p *model.PackingList) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *packingListRepository) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.PackingList, error) {
	var p model.PackingList
	err := r.db.WithContext(ctx).
		Preload("Client.LabelTemplate").
		Preload("SizeMatrix").
		First(&p, "packing_lists.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *packingListRepository) Listar(ctx context.Context, f PackingListFilter) ([]model.PackingList, error) {
	var list []model.PackingList
	tx := r.db.WithContext(ctx).
		Joins("Client").
		Joins("SizeMatrix")
	if f.ClientID != nil {
		tx = tx.Where("packing_lists.client_id = ?", *f.ClientID)
	}
	if f.SizeMatrixID != nil {
		tx = tx.Where("packing_lists.size_matrix_id = ?", *f.SizeMatrixID)
	}
	if q := strings.TrimSpace(f.Q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(
			`LOWER(packing_lists.po) LIKE ? OR LOWER(packing_lists.model) LIKE ? OR LOWER(packing_lists.notes) LIKE ? OR LOWER("Client".name) LIKE ? OR LOWER("SizeMatrix".name) LIKE ?`,
			like, like, like, like, like,
		)
	}
	err := tx.Order("packing_lists.created_at DESC").Limit(packingListLimit).Find(&list).Error
	return list, err
}

func (r *packingListRepository) Actualizar(ctx context.Context, p *model.PackingList) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *packingListRepository) Eliminar(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.PackingList{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
