package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/model"
	"github.com/vitorf997/packing-creator/internal/repository"
)

// SizeMatrixService defines business operations for size matrices.
type SizeMatrixService interface {
	Crear(ctx context.Context, req dto.SizeMatrixRequest) (dto.SizeMatrixResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.SizeMatrixResponse, error)
	Listar(ctx context.Context, q string) ([]dto.SizeMatrixResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.SizeMatrixRequest) (dto.SizeMatrixResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type sizeMatrixService struct {
	repo repository.SizeMatrixRepository
}

func NewSizeMatrixService(repo repository.SizeMatrixRepository) SizeMatrixService {
	return &sizeMatrixService{repo: repo}
}

func mapSizeMatrix(m model.SizeMatrix) dto.SizeMatrixResponse {
	return dto.SizeMatrixResponse{
		ID:        m.ID,
		Name:      m.Name,
		Sizes:     append([]string{}, m.Sizes...),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// cleanSizes trims every size and drops the blank ones.
func cleanSizes(sizes []string) []string {
	out := make([]string, 0, len(sizes))
	for _, s := range sizes {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func applySizeMatrix(m *model.SizeMatrix, req dto.SizeMatrixRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return invalid("name is required")
	}
	sizes := cleanSizes(req.Sizes)
	if len(sizes) == 0 {
		return invalid("at least one size is required")
	}
	m.Name = name
	m.Sizes = sizes
	return nil
}

func (s *sizeMatrixService) Crear(ctx context.Context, req dto.SizeMatrixRequest) (dto.SizeMatrixResponse, error) {
	m := &model.SizeMatrix{}
	if err := applySizeMatrix(m, req); err != nil {
		return dto.SizeMatrixResponse{}, err
	}
	if err := s.repo.Crear(ctx, m); err != nil {
		return dto.SizeMatrixResponse{}, translate(err, "size matrix")
	}
	return mapSizeMatrix(*m), nil
}

func (s *sizeMatrixService) ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.SizeMatrixResponse, error) {
	m, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.SizeMatrixResponse{}, translate(err, "size matrix")
	}
	return mapSizeMatrix(*m), nil
}

func (s *sizeMatrixService) Listar(ctx context.Context, q string) ([]dto.SizeMatrixResponse, error) {
	list, err := s.repo.Listar(ctx, strings.TrimSpace(q))
	if err != nil {
		return nil, err
	}
	result := make([]dto.SizeMatrixResponse, 0, len(list))
	for _, m := range list {
		result = append(result, mapSizeMatrix(m))
	}
	return result, nil
}

func (s *sizeMatrixService) Actualizar(ctx context.Context, id uuid.UUID, req dto.SizeMatrixRequest) (dto.SizeMatrixResponse, error) {
	m, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.SizeMatrixResponse{}, translate(err, "size matrix")
	}
	if err := applySizeMatrix(m, req); err != nil {
		return dto.SizeMatrixResponse{}, err
	}
	if err := s.repo.Actualizar(ctx, m); err != nil {
		return dto.SizeMatrixResponse{}, translate(err, "size matrix")
	}
	return mapSizeMatrix(*m), nil
}

func (s *sizeMatrixService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return translate(s.repo.Eliminar(ctx, id), "size matrix")
}
