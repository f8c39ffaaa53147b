package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/labels"
	"github.com/vitorf997/packing-creator/internal/model"
	"github.com/vitorf997/packing-creator/internal/repository"
)

// FermirClassicKey is the template preferred when no client or default
// template applies.
const FermirClassicKey = "fermir_classic_a6"

// LabelTemplateService defines business operations for label templates and
// resolves the layout a client prints with.
type LabelTemplateService interface {
	Crear(ctx context.Context, req dto.LabelTemplateRequest) (dto.LabelTemplateResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.LabelTemplateResponse, error)
	Listar(ctx context.Context, f dto.LabelTemplateFilter) ([]dto.LabelTemplateResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.LabelTemplateRequest) (dto.LabelTemplateResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	// AsegurarBase inserts the built-in templates that are missing and
	// returns how many were created.
	AsegurarBase(ctx context.Context) (int, error)
	// ResolverParaCliente returns the layout used to print the client's
	// labels. uuid.Nil resolves without a client.
	ResolverParaCliente(ctx context.Context, clientID uuid.UUID) (labels.Layout, error)
}

type labelTemplateService struct {
	repo    repository.LabelTemplateRepository
	clients repository.ClientRepository
	layouts *LayoutCache
}

func NewLabelTemplateService(repo repository.LabelTemplateRepository, clients repository.ClientRepository, layouts *LayoutCache) LabelTemplateService {
	return &labelTemplateService{repo: repo, clients: clients, layouts: layouts}
}

func mapLabelTemplate(t model.LabelTemplate) dto.LabelTemplateResponse {
	return dto.LabelTemplateResponse{
		ID:        t.ID,
		Name:      t.Name,
		Key:       t.Key,
		Type:      t.Type,
		Active:    t.Active,
		IsDefault: t.IsDefault,
		ClientID:  t.ClientID,
		Layout:    labels.NormalizeLayout(t.Layout.Data()),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// baseTemplates are seeded at start-up, insert-if-missing by key.
func baseTemplates() []model.LabelTemplate {
	packingBrand := labels.DefaultLayout()
	packingBrand.BrandName = "PACKING"
	packingBrand.BrandBgColor = "#0f62fe"
	return []model.LabelTemplate{
		{
			Name:      "Default A6 Landscape",
			Key:       "default_a6_landscape",
			IsDefault: true,
			Active:    true,
			Type:      model.LabelTemplateTypeA6,
			Layout:    datatypes.NewJSONType(packingBrand),
		},
		{
			Name:   "FERMIR Classic A6",
			Key:    FermirClassicKey,
			Active: true,
			Type:   model.LabelTemplateTypeA6,
			Layout: datatypes.NewJSONType(labels.DefaultLayout()),
		},
	}
}

// apply validates req and copies it onto t. A default template is always
// global; any other template needs an existing client.
func (s *labelTemplateService) apply(ctx context.Context, t *model.LabelTemplate, req dto.LabelTemplateRequest) error {
	name := strings.TrimSpace(req.Name)
	key := strings.ToLower(strings.TrimSpace(req.Key))
	if name == "" {
		return invalid("name is required")
	}
	if key == "" {
		return invalid("key is required")
	}
	clientID := req.ClientID
	if req.IsDefault {
		clientID = nil
	}
	if !req.IsDefault && clientID == nil {
		return invalid("client_id is required when the template is not the default")
	}
	if clientID != nil {
		if _, err := s.clients.ObtenerPorID(ctx, *clientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("client does not exist")
			}
			return err
		}
	}

	t.Name = name
	t.Key = key
	t.Type = strings.TrimSpace(req.Type)
	if t.Type == "" {
		t.Type = model.LabelTemplateTypeA6
	}
	t.Active = req.Active == nil || *req.Active
	t.IsDefault = req.IsDefault
	t.ClientID = clientID
	t.Layout = datatypes.NewJSONType(labels.MergeLayout(req.Layout))
	return nil
}

func (s *labelTemplateService) Crear(ctx context.Context, req dto.LabelTemplateRequest) (dto.LabelTemplateResponse, error) {
	t := &model.LabelTemplate{}
	if err := s.apply(ctx, t, req); err != nil {
		return dto.LabelTemplateResponse{}, err
	}
	if err := s.repo.Crear(ctx, t); err != nil {
		return dto.LabelTemplateResponse{}, translate(err, "label template key")
	}
	// at most one default
	if t.IsDefault {
		if err := s.repo.QuitarDefaultExcepto(ctx, t.ID); err != nil {
			return dto.LabelTemplateResponse{}, err
		}
	}
	s.layouts.InvalidateAll(ctx)
	return mapLabelTemplate(*t), nil
}

func (s *labelTemplateService) ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.LabelTemplateResponse, error) {
	t, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.LabelTemplateResponse{}, translate(err, "label template")
	}
	return mapLabelTemplate(*t), nil
}

func (s *labelTemplateService) Listar(ctx context.Context, f dto.LabelTemplateFilter) ([]dto.LabelTemplateResponse, error) {
	list, err := s.repo.Listar(ctx, repository.LabelTemplateFilter{Q: f.Q, ClientID: f.ClientID, Active: f.Active})
	if err != nil {
		return nil, err
	}
	result := make([]dto.LabelTemplateResponse, 0, len(list))
	for _, t := range list {
		result = append(result, mapLabelTemplate(t))
	}
	return result, nil
}

func (s *labelTemplateService) Actualizar(ctx context.Context, id uuid.UUID, req dto.LabelTemplateRequest) (dto.LabelTemplateResponse, error) {
	t, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.LabelTemplateResponse{}, translate(err, "label template")
	}
	if err := s.apply(ctx, t, req); err != nil {
		return dto.LabelTemplateResponse{}, err
	}
	if t.IsDefault {
		if err := s.repo.QuitarDefaultExcepto(ctx, t.ID); err != nil {
			return dto.LabelTemplateResponse{}, err
		}
	}
	if err := s.repo.Actualizar(ctx, t); err != nil {
		return dto.LabelTemplateResponse{}, translate(err, "label template key")
	}
	s.layouts.InvalidateAll(ctx)
	return mapLabelTemplate(*t), nil
}

// Eliminar unassigns the template from its clients before deleting it.
func (s *labelTemplateService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.clients.DesasignarTemplate(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Eliminar(ctx, id); err != nil {
		return translate(err, "label template")
	}
	s.layouts.InvalidateAll(ctx)
	return nil
}

func (s *labelTemplateService) AsegurarBase(ctx context.Context) (int, error) {
	existing, err := s.repo.Listar(ctx, repository.LabelTemplateFilter{})
	if err != nil {
		return 0, err
	}
	hasDefault := len(existing) > 0 && existing[0].IsDefault

	created := 0
	for _, t := range baseTemplates() {
		if t.IsDefault && hasDefault {
			t.IsDefault = false
		}
		ok, err := s.repo.CrearSiNoExiste(ctx, &t)
		if err != nil {
			return created, translate(err, "label template "+t.Key)
		}
		if ok {
			created++
			log.Info().Str("key", t.Key).Msg("label template seeded")
		}
	}
	if created > 0 {
		s.layouts.InvalidateAll(ctx)
	}
	return created, nil
}

func (s *labelTemplateService) ResolverParaCliente(ctx context.Context, clientID uuid.UUID) (labels.Layout, error) {
	if clientID != uuid.Nil {
		if l, ok := s.layouts.get(ctx, clientID); ok {
			return l, nil
		}
	}
	l, err := s.resolve(ctx, clientID)
	if err != nil {
		return labels.Layout{}, err
	}
	if clientID != uuid.Nil {
		s.layouts.set(ctx, clientID, l)
	}
	return l, nil
}

// resolve picks, in order: the client's assigned active template, an active
// template owned by the client, the global default, the FERMIR classic
// template, the first active template, the built-in layout.
func (s *labelTemplateService) resolve(ctx context.Context, clientID uuid.UUID) (labels.Layout, error) {
	active := true
	f := repository.LabelTemplateFilter{Active: &active}
	if clientID != uuid.Nil {
		c, err := s.clients.ObtenerPorID(ctx, clientID)
		switch {
		case err == nil:
			if t := c.LabelTemplate; t != nil && t.Active {
				return labels.NormalizeLayout(t.Layout.Data()), nil
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return labels.Layout{}, err
		}
		f.ClientID = &clientID
	}

	list, err := s.repo.Listar(ctx, f)
	if err != nil {
		return labels.Layout{}, err
	}
	if t := pickTemplate(list, clientID); t != nil {
		return labels.NormalizeLayout(t.Layout.Data()), nil
	}
	return labels.DefaultLayout(), nil
}

func pickTemplate(list []model.LabelTemplate, clientID uuid.UUID) *model.LabelTemplate {
	if len(list) == 0 {
		return nil
	}
	preds := []func(model.LabelTemplate) bool{
		func(t model.LabelTemplate) bool {
			return clientID != uuid.Nil && t.ClientID != nil && *t.ClientID == clientID
		},
		func(t model.LabelTemplate) bool { return t.IsDefault },
		func(t model.LabelTemplate) bool { return t.Key == FermirClassicKey },
	}
	for _, match := range preds {
		for i := range list {
			if match(list[i]) {
				return &list[i]
			}
		}
	}
	return &list[0]
}
