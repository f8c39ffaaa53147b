package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/metrics"
	"github.com/vitorf997/packing-creator/internal/model"
	"github.com/vitorf997/packing-creator/internal/packing"
	"github.com/vitorf997/packing-creator/internal/repository"
)

// PackingListService defines business operations for packing lists. Every
// save runs the allocation submit gate: a list whose rows do not validate is
// never persisted.
type PackingListService interface {
	Crear(ctx context.Context, req dto.PackingListRequest) (dto.PackingListResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.PackingListResponse, error)
	Listar(ctx context.Context, f dto.PackingListFilter) ([]dto.PackingListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.PackingListRequest) (dto.PackingListResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type packingListService struct {
	repo     repository.PackingListRepository
	clients  repository.ClientRepository
	matrices repository.SizeMatrixRepository
}

func NewPackingListService(
	repo repository.PackingListRepository,
	clients repository.ClientRepository,
	matrices repository.SizeMatrixRepository,
) PackingListService {
	return &packingListService{repo: repo, clients: clients, matrices: matrices}
}

func mapPackingList(p model.PackingList) dto.PackingListResponse {
	resp := dto.PackingListResponse{
		ID:           p.ID,
		PO:           p.PO,
		Model:        p.Model,
		ClientID:     p.ClientID,
		SizeMatrixID: p.SizeMatrixID,
		Sizes:        append([]string{}, p.Sizes...),
		LabelItems:   append([]packing.ReferenceItem{}, p.LabelItems...),
		Entries:      append([]packing.Entry{}, p.Entries...),
		TotalUnits:   p.TotalUnits,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Client != nil {
		resp.ClientName = p.Client.Name
	}
	if p.SizeMatrix != nil {
		resp.SizeMatrixName = p.SizeMatrix.Name
	}
	return resp
}

// apply validates req against the stored client and size matrix, runs the
// submit gate and copies the accepted result onto p.
func (s *packingListService) apply(ctx context.Context, p *model.PackingList, req dto.PackingListRequest) error {
	sizes := cleanSizes(req.Sizes)
	if len(sizes) == 0 {
		return invalid("sizes are required")
	}
	if req.Entries == nil {
		return invalid("entries must be an array")
	}
	client, err := s.clients.ObtenerPorID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("client does not exist")
		}
		return err
	}
	if _, err := s.matrices.ObtenerPorID(ctx, req.SizeMatrixID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("size matrix does not exist")
		}
		return err
	}

	defs := packing.NormalizeLabelFieldDefs(client.LabelFields)
	items := packing.NormalizeReferenceItems(req.LabelItems, defs)

	res := packing.Result{Entries: []packing.Entry{}}
	if len(req.Entries) > 0 {
		alloc := packing.NewAllocation(sizes, defs, items, req.Entries)
		var rej *packing.Rejection
		res, rej = alloc.Submit()
		if rej != nil {
			metrics.SubmitsTotal.WithLabelValues("packing_list", "rejected").Inc()
			return rejected(rej)
		}
	}
	metrics.SubmitsTotal.WithLabelValues("packing_list", "accepted").Inc()

	p.PO = strings.TrimSpace(req.PO)
	p.Model = strings.TrimSpace(req.Model)
	p.Notes = strings.TrimSpace(req.Notes)
	p.ClientID = req.ClientID
	p.SizeMatrixID = req.SizeMatrixID
	p.Sizes = sizes
	p.LabelItems = items
	p.Entries = res.Entries
	p.TotalUnits = res.TotalUnits
	p.Client = nil
	p.SizeMatrix = nil
	return nil
}

func (s *packingListService) Crear(ctx context.Context, req dto.PackingListRequest) (dto.PackingListResponse, error) {
	p := &model.PackingList{}
	if err := s.apply(ctx, p, req); err != nil {
		return dto.PackingListResponse{}, err
	}
	if err := s.repo.Crear(ctx, p); err != nil {
		return dto.PackingListResponse{}, translate(err, "packing list")
	}
	log.Info().
		Str("packing_list_id", p.ID.String()).
		Int("entries", len(p.Entries)).
		Int("total_units", p.TotalUnits).
		Msg("packing list created")
	return s.ObtenerPorID(ctx, p.ID)
}

func (s *packingListService) ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.PackingListResponse, error) {
	p, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.PackingListResponse{}, translate(err, "packing list")
	}
	return mapPackingList(*p), nil
}

func (s *packingListService) Listar(ctx context.Context, f dto.PackingListFilter) ([]dto.PackingListResponse, error) {
	list, err := s.repo.Listar(ctx, repository.PackingListFilter{
		Q:            strings.TrimSpace(f.Q),
		ClientID:     f.ClientID,
		SizeMatrixID: f.SizeMatrixID,
	})
	if err != nil {
		return nil, err
	}
	result := make([]dto.PackingListResponse, 0, len(list))
	for _, p := range list {
		result = append(result, mapPackingList(p))
	}
	return result, nil
}

func (s *packingListService) Actualizar(ctx context.Context, id uuid.UUID, req dto.PackingListRequest) (dto.PackingListResponse, error) {
	p, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.PackingListResponse{}, translate(err, "packing list")
	}
	if err := s.apply(ctx, p, req); err != nil {
		return dto.PackingListResponse{}, err
	}
	if err := s.repo.Actualizar(ctx, p); err != nil {
		return dto.PackingListResponse{}, translate(err, "packing list")
	}
	log.Info().
		Str("packing_list_id", p.ID.String()).
		Int("total_units", p.TotalUnits).
		Msg("packing list updated")
	return s.ObtenerPorID(ctx, id)
}

func (s *packingListService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return translate(s.repo.Eliminar(ctx, id), "packing list")
}
