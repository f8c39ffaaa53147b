package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/model"
	"github.com/vitorf997/packing-creator/internal/packing"
	"github.com/vitorf997/packing-creator/internal/repository"
)

// ClientService defines business operations for clients and their label fields.
type ClientService interface {
	Crear(ctx context.Context, req dto.ClientRequest) (dto.ClientResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.ClientResponse, error)
	Listar(ctx context.Context, q string) ([]dto.ClientResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ClientRequest) (dto.ClientResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	// LabelFields returns the client's normalized label field definitions.
	LabelFields(ctx context.Context, id uuid.UUID) ([]packing.LabelFieldDef, error)
}

type clientService struct {
	repo      repository.ClientRepository
	templates repository.LabelTemplateRepository
	layouts   *LayoutCache
}

func NewClientService(repo repository.ClientRepository, templates repository.LabelTemplateRepository, layouts *LayoutCache) ClientService {
	return &clientService{repo: repo, templates: templates, layouts: layouts}
}

func mapClient(c model.Client) dto.ClientResponse {
	resp := dto.ClientResponse{
		ID:              c.ID,
		Name:            c.Name,
		Code:            c.Code,
		Contact:         c.Contact,
		Notes:           c.Notes,
		LabelFields:     packing.NormalizeLabelFieldDefs(c.LabelFields),
		LabelTemplateID: c.LabelTemplateID,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if t := c.LabelTemplate; t != nil {
		resp.LabelTemplate = &dto.LabelTemplateSummary{ID: t.ID, Name: t.Name, Key: t.Key, Active: t.Active}
	}
	return resp
}

// checkTemplate enforces the assignment rules: the template must exist and be
// active; a new client may only use a global template, an existing one its
// own or a global one.
func (s *clientService) checkTemplate(ctx context.Context, templateID *uuid.UUID, clientID uuid.UUID) error {
	if templateID == nil {
		return nil
	}
	t, err := s.templates.ObtenerPorID(ctx, *templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("label template does not exist")
		}
		return err
	}
	switch {
	case !t.Active:
		return invalid("label template is inactive")
	case clientID == uuid.Nil && t.ClientID != nil:
		return invalid("a new client can only use a global label template")
	case t.ClientID != nil && *t.ClientID != clientID:
		return invalid("label template belongs to another client")
	}
	return nil
}

func applyClient(c *model.Client, req dto.ClientRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Code = strings.TrimSpace(req.Code)
	c.Contact = strings.TrimSpace(req.Contact)
	c.Notes = strings.TrimSpace(req.Notes)
	c.LabelFields = packing.NormalizeLabelFieldDefs(req.LabelFields)
	c.LabelTemplateID = req.LabelTemplateID
}

func (s *clientService) Crear(ctx context.Context, req dto.ClientRequest) (dto.ClientResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return dto.ClientResponse{}, invalid("name is required")
	}
	if err := s.checkTemplate(ctx, req.LabelTemplateID, uuid.Nil); err != nil {
		return dto.ClientResponse{}, err
	}
	c := &model.Client{}
	applyClient(c, req)
	if err := s.repo.Crear(ctx, c); err != nil {
		return dto.ClientResponse{}, translate(err, "client")
	}
	return mapClient(*c), nil
}

func (s *clientService) ObtenerPorID(ctx context.Context, id uuid.UUID) (dto.ClientResponse, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.ClientResponse{}, translate(err, "client")
	}
	return mapClient(*c), nil
}

func (s *clientService) Listar(ctx context.Context, q string) ([]dto.ClientResponse, error) {
	list, err := s.repo.Listar(ctx, strings.TrimSpace(q))
	if err != nil {
		return nil, err
	}
	result := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapClient(c))
	}
	return result, nil
}

func (s *clientService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ClientRequest) (dto.ClientResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return dto.ClientResponse{}, invalid("name is required")
	}
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.ClientResponse{}, translate(err, "client")
	}
	if err := s.checkTemplate(ctx, req.LabelTemplateID, id); err != nil {
		return dto.ClientResponse{}, err
	}
	applyClient(c, req)
	c.LabelTemplate = nil
	if err := s.repo.Actualizar(ctx, c); err != nil {
		return dto.ClientResponse{}, translate(err, "client")
	}
	s.layouts.Invalidate(ctx, id)

	updated, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.ClientResponse{}, translate(err, "client")
	}
	return mapClient(*updated), nil
}

func (s *clientService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Eliminar(ctx, id); err != nil {
		return translate(err, "client")
	}
	s.layouts.Invalidate(ctx, id)
	return nil
}

func (s *clientService) LabelFields(ctx context.Context, id uuid.UUID) ([]packing.LabelFieldDef, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, translate(err, "client")
	}
	return packing.NormalizeLabelFieldDefs(c.LabelFields), nil
}
