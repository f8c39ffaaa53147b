package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vitorf997/packing-creator/internal/cache"
	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/infra"
	"github.com/vitorf997/packing-creator/internal/labels"
	"github.com/vitorf997/packing-creator/internal/metrics"
	"github.com/vitorf997/packing-creator/internal/packing"
	"github.com/vitorf997/packing-creator/internal/repository"
	"github.com/vitorf997/packing-creator/internal/worker"
)

// LabelService turns a stored packing list into box labels: the JSON sheet,
// an A6 PDF, an xlsx export, or an asynchronous render job.
type LabelService interface {
	Sheet(ctx context.Context, packingListID uuid.UUID) (labels.Sheet, error)
	PDF(ctx context.Context, packingListID uuid.UUID, w io.Writer) error
	XLSX(ctx context.Context, packingListID uuid.UUID, w io.Writer) error
	RenderLabelFile(ctx context.Context, packingListID uuid.UUID, dir string) (string, error)
	EncolarTrabajo(ctx context.Context, packingListID uuid.UUID, req dto.LabelJobRequest) (dto.LabelJobResponse, error)
	EstadoTrabajo(ctx context.Context, jobID string) (dto.LabelJobResponse, error)
}

// LabelJobQueue is the part of worker.Dispatcher used to queue renders.
type LabelJobQueue interface {
	EnqueueLabels(ctx context.Context, payload worker.LabelJobPayload) (string, error)
}

type labelService struct {
	lists       repository.PackingListRepository
	clients     ClientService
	templates   LabelTemplateService
	jobs        LabelJobQueue
	store       cache.Store
	mailEnabled bool
}

func NewLabelService(
	lists repository.PackingListRepository,
	clients ClientService,
	templates LabelTemplateService,
	jobs LabelJobQueue,
	store cache.Store,
	mailEnabled bool,
) LabelService {
	return &labelService{
		lists:       lists,
		clients:     clients,
		templates:   templates,
		jobs:        jobs,
		store:       store,
		mailEnabled: mailEnabled,
	}
}

// load gathers the packing list, the client's label fields and the resolved
// layout, and builds the sheet. The entries returned are the stored ones.
func (s *labelService) load(ctx context.Context, id uuid.UUID) (labels.Sheet, *sheetSource, error) {
	p, err := s.lists.ObtenerPorID(ctx, id)
	if err != nil {
		return labels.Sheet{}, nil, translate(err, "packing list")
	}
	defs, err := s.clients.LabelFields(ctx, p.ClientID)
	if err != nil {
		return labels.Sheet{}, nil, err
	}
	layout, err := s.templates.ResolverParaCliente(ctx, p.ClientID)
	if err != nil {
		return labels.Sheet{}, nil, err
	}
	clientName := ""
	if p.Client != nil {
		clientName = p.Client.Name
	}
	sheet := labels.BuildSheet(labels.SheetInput{
		ClientName: clientName,
		PO:         p.PO,
		Model:      p.Model,
		Sizes:      p.Sizes,
		FieldDefs:  defs,
		Items:      p.LabelItems,
		Entries:    p.Entries,
		Layout:     layout,
	})
	metrics.LabelsDerived.Add(float64(len(sheet.Labels)))
	return sheet, &sheetSource{po: p.PO, totalUnits: p.TotalUnits, entries: p.Entries}, nil
}

func (s *labelService) Sheet(ctx context.Context, id uuid.UUID) (labels.Sheet, error) {
	sheet, _, err := s.load(ctx, id)
	return sheet, err
}

func (s *labelService) PDF(ctx context.Context, id uuid.UUID, w io.Writer) error {
	sheet, _, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	defer metrics.ObserveRender("pdf", time.Now())
	// render fully before writing so a failure never leaves half a document
	var buf bytes.Buffer
	if err := infra.RenderLabelsPDF(sheet, &buf); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func (s *labelService) XLSX(ctx context.Context, id uuid.UUID, w io.Writer) error {
	sheet, src, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	defer metrics.ObserveRender("xlsx", time.Now())
	var buf bytes.Buffer
	if err := infra.ExportXLSX(sheet, src.entries, src.totalUnits, &buf); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func (s *labelService) RenderLabelFile(ctx context.Context, id uuid.UUID, dir string) (string, error) {
	sheet, src, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	defer metrics.ObserveRender("pdf_file", time.Now())
	return infra.WriteLabelsPDF(sheet, dir, labelFileName(id, src.po))
}

func (s *labelService) EncolarTrabajo(ctx context.Context, id uuid.UUID, req dto.LabelJobRequest) (dto.LabelJobResponse, error) {
	if s.jobs == nil {
		return dto.LabelJobResponse{}, fmt.Errorf("label jobs are not running: %w", ErrUnavailable)
	}
	email := strings.TrimSpace(req.Email)
	if email != "" && !s.mailEnabled {
		return dto.LabelJobResponse{}, fmt.Errorf("email delivery is not configured: %w", ErrUnavailable)
	}
	if _, err := s.lists.ObtenerPorID(ctx, id); err != nil {
		return dto.LabelJobResponse{}, translate(err, "packing list")
	}

	st := worker.JobStatus{JobID: uuid.NewString(), PackingListID: id, Status: worker.JobQueued, Email: email}
	// the status is written first so a fast worker can overwrite it
	if err := worker.SaveJobStatus(ctx, s.store, st); err != nil {
		log.Warn().Err(err).Str("job_id", st.JobID).Msg("failed to store label job status")
	}
	if _, err := s.jobs.EnqueueLabels(ctx, worker.LabelJobPayload{JobID: st.JobID, PackingListID: id, Email: email}); err != nil {
		return dto.LabelJobResponse{}, fmt.Errorf("enqueue label job: %w", err)
	}
	log.Info().
		Str("job_id", st.JobID).
		Str("packing_list_id", id.String()).
		Bool("email", email != "").
		Msg("label job queued")
	return mapJobStatus(st), nil
}

func (s *labelService) EstadoTrabajo(ctx context.Context, jobID string) (dto.LabelJobResponse, error) {
	st, ok, err := worker.LoadJobStatus(ctx, s.store, jobID)
	if err != nil {
		return dto.LabelJobResponse{}, err
	}
	if !ok {
		return dto.LabelJobResponse{}, notFound("label job")
	}
	return mapJobStatus(st), nil
}

type sheetSource struct {
	po         string
	totalUnits int
	entries    []packing.Entry
}

func mapJobStatus(st worker.JobStatus) dto.LabelJobResponse {
	resp := dto.LabelJobResponse{
		JobID:         st.JobID,
		PackingListID: st.PackingListID,
		Status:        st.Status,
		Email:         st.Email,
		Error:         st.Error,
	}
	if st.File != "" {
		resp.File = filepath.Base(st.File)
	}
	return resp
}

// labelFileName is "labels-<po>-<id>.pdf" with the PO reduced to safe
// characters, or "labels-<id>.pdf" without one.
func labelFileName(id uuid.UUID, po string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '/' || r == '.':
			return '_'
		}
		return -1
	}, strings.TrimSpace(po))
	if safe == "" {
		return "labels-" + id.String() + ".pdf"
	}
	return "labels-" + safe + "-" + id.String() + ".pdf"
}
