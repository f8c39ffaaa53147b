package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/metrics"
	"github.com/vitorf997/packing-creator/internal/packing"
	"github.com/vitorf997/packing-creator/internal/repository"
)

// AllocationService exposes allocation editing sessions. Each call loads the
// session, applies at most one event and stores it back, so one edit always
// runs to completion before the next is read. Concurrent writers to the same
// session are last-write-wins.
type AllocationService interface {
	CrearSesion(ctx context.Context, req dto.CrearSesionRequest) (dto.SessionResponse, error)
	ObtenerSesion(ctx context.Context, id string) (dto.SessionResponse, error)
	Aplicar(ctx context.Context, id string, ev packing.Event) (dto.SessionResponse, error)
	Validar(ctx context.Context, id string) (dto.ValidateResponse, error)
	Confirmar(ctx context.Context, id string) (dto.SubmitResponse, error)
	EliminarSesion(ctx context.Context, id string) error
}

type allocationService struct {
	sessions repository.SessionStore
	clients  repository.ClientRepository
	matrices repository.SizeMatrixRepository
	lists    repository.PackingListRepository
}

func NewAllocationService(
	sessions repository.SessionStore,
	clients repository.ClientRepository,
	matrices repository.SizeMatrixRepository,
	lists repository.PackingListRepository,
) AllocationService {
	return &allocationService{sessions: sessions, clients: clients, matrices: matrices, lists: lists}
}

func mapSession(s *repository.Session, a *packing.Allocation) dto.SessionResponse {
	st := a.Snapshot()
	rows := make([]dto.SessionRow, 0, len(st.Rows))
	for _, r := range st.Rows {
		rows = append(rows, dto.SessionRow{Row: r, Valid: a.Valid(r.RowID)})
	}
	return dto.SessionResponse{
		ID:         s.ID,
		Sizes:      st.Sizes,
		FieldDefs:  st.FieldDefs,
		Items:      st.Items,
		Rows:       rows,
		TotalUnits: a.TotalUnits(),
		UpdatedAt:  s.UpdatedAt,
	}
}

// defsFromItems collects the label fields named by the items themselves, for
// sessions opened without a client.
func defsFromItems(items []packing.ReferenceItem) []packing.LabelFieldDef {
	var defs []packing.LabelFieldDef
	seen := map[string]bool{}
	for _, it := range items {
		for _, f := range packing.NormalizeFieldValues(it.Fields) {
			if !seen[f.FieldID] {
				seen[f.FieldID] = true
				defs = append(defs, packing.LabelFieldDef{FieldID: f.FieldID, Name: f.Name})
			}
		}
	}
	return packing.NormalizeLabelFieldDefs(defs)
}

func (s *allocationService) CrearSesion(ctx context.Context, req dto.CrearSesionRequest) (dto.SessionResponse, error) {
	sess := &repository.Session{ID: uuid.NewString()}
	var (
		sizes   = cleanSizes(req.Sizes)
		items   = req.LabelItems
		entries = req.Entries
		defs    []packing.LabelFieldDef
	)

	if req.PackingListID != nil {
		p, err := s.lists.ObtenerPorID(ctx, *req.PackingListID)
		if err != nil {
			return dto.SessionResponse{}, translate(err, "packing list")
		}
		sizes, items, entries = p.Sizes, p.LabelItems, p.Entries
		if p.Client != nil {
			defs = p.Client.LabelFields
		}
		sess.ClientID = p.ClientID.String()
		sess.SizeMatrixID = p.SizeMatrixID.String()
	} else {
		if req.ClientID != nil {
			c, err := s.clients.ObtenerPorID(ctx, *req.ClientID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return dto.SessionResponse{}, invalid("client does not exist")
				}
				return dto.SessionResponse{}, err
			}
			defs = c.LabelFields
			sess.ClientID = c.ID.String()
		} else {
			defs = defsFromItems(items)
		}
		if req.SizeMatrixID != nil {
			m, err := s.matrices.ObtenerPorID(ctx, *req.SizeMatrixID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return dto.SessionResponse{}, invalid("size matrix does not exist")
				}
				return dto.SessionResponse{}, err
			}
			if len(sizes) == 0 {
				sizes = cleanSizes(m.Sizes)
			}
			sess.SizeMatrixID = m.ID.String()
		}
	}
	if len(sizes) == 0 {
		return dto.SessionResponse{}, invalid("sizes or size_matrix_id is required")
	}

	defs = packing.NormalizeLabelFieldDefs(defs)
	a := packing.NewAllocation(sizes, defs, packing.NormalizeReferenceItems(items, defs), entries)
	sess.State = a.Snapshot()
	if err := s.sessions.Guardar(ctx, sess); err != nil {
		return dto.SessionResponse{}, err
	}
	log.Info().Str("session_id", sess.ID).Int("rows", len(sess.State.Rows)).Msg("allocation session opened")
	return mapSession(sess, a), nil
}

func (s *allocationService) cargar(ctx context.Context, id string) (*repository.Session, *packing.Allocation, error) {
	sess, err := s.sessions.Cargar(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil, notFound("allocation session")
		}
		return nil, nil, err
	}
	return sess, packing.Restore(sess.State), nil
}

func (s *allocationService) ObtenerSesion(ctx context.Context, id string) (dto.SessionResponse, error) {
	sess, a, err := s.cargar(ctx, id)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	return mapSession(sess, a), nil
}

func (s *allocationService) Aplicar(ctx context.Context, id string, ev packing.Event) (dto.SessionResponse, error) {
	sess, a, err := s.cargar(ctx, id)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	if !a.Apply(ev) {
		metrics.SessionEventsTotal.WithLabelValues(string(ev.Kind), "ignored").Inc()
		if ev.RowID != "" {
			if _, ok := a.Row(ev.RowID); !ok {
				return dto.SessionResponse{}, notFound("row " + ev.RowID)
			}
		}
		return dto.SessionResponse{}, invalid("unknown field, item or size")
	}
	metrics.SessionEventsTotal.WithLabelValues(string(ev.Kind), "applied").Inc()

	sess.State = a.Snapshot()
	if err := s.sessions.Guardar(ctx, sess); err != nil {
		return dto.SessionResponse{}, err
	}
	log.Debug().Str("session_id", id).Str("kind", string(ev.Kind)).Str("row_id", ev.RowID).Msg("allocation event applied")
	return mapSession(sess, a), nil
}

func (s *allocationService) Validar(ctx context.Context, id string) (dto.ValidateResponse, error) {
	_, a, err := s.cargar(ctx, id)
	if err != nil {
		return dto.ValidateResponse{}, err
	}
	errs := a.Validate()
	return dto.ValidateResponse{Valid: len(errs) == 0, Rows: errs}, nil
}

func (s *allocationService) Confirmar(ctx context.Context, id string) (dto.SubmitResponse, error) {
	_, a, err := s.cargar(ctx, id)
	if err != nil {
		return dto.SubmitResponse{}, err
	}
	res, rej := a.Submit()
	if rej != nil {
		metrics.SubmitsTotal.WithLabelValues("session", "rejected").Inc()
		return dto.SubmitResponse{}, rejected(rej)
	}
	metrics.SubmitsTotal.WithLabelValues("session", "accepted").Inc()
	return dto.SubmitResponse{Entries: res.Entries, TotalUnits: res.TotalUnits}, nil
}

func (s *allocationService) EliminarSesion(ctx context.Context, id string) error {
	if _, _, err := s.cargar(ctx, id); err != nil {
		return err
	}
	return s.sessions.Eliminar(ctx, id)
}
