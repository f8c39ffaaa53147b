package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/labels"
	"github.com/vitorf997/packing-creator/internal/packing"
	"github.com/vitorf997/packing-creator/internal/worker"
)

var modelField = packing.LabelFieldDef{FieldID: "field_1", Name: "Model"}

func modelValue(v string) []packing.FieldValue {
	return []packing.FieldValue{{FieldID: "field_1", Name: "Model", Value: v}}
}

// validEntries pack 28 units in four boxes, the last one a remainder box.
func validEntries() []packing.Entry {
	return []packing.Entry{
		{Size: "S", ItemFields: modelValue("A123"), BoxFrom: 1, BoxTo: 2, UnitsPerBox: 10, RemainBox: 4, RemainUnits: 3, TotalPerSize: 999},
		{Size: "M", ItemFields: modelValue("A123"), BoxFrom: 3, BoxTo: 3, UnitsPerBox: 5},
	}
}

func packingRequest(f *fixture, entries []packing.Entry) dto.PackingListRequest {
	c := f.client("ACME", modelField)
	m := f.matrix("S", "M")
	return dto.PackingListRequest{
		PO:           " PO-77 ",
		Model:        "Summer",
		ClientID:     c.ID,
		SizeMatrixID: m.ID,
		Sizes:        []string{"S", "M"},
		LabelItems:   []packing.ReferenceItem{{ItemID: "item_1", Fields: modelValue("A123")}},
		Entries:      entries,
	}
}

// ── Packing lists ────────────────────────────────────────────────────────────

func TestPackingList_CreateRecomputesTotals(t *testing.T) {
	f := newFixture()
	svc := NewPackingListService(f.lists, f.clients, f.matrices)

	resp, err := svc.Crear(context.Background(), packingRequest(f, validEntries()))
	require.NoError(t, err)
	assert.Equal(t, "PO-77", resp.PO)
	assert.Equal(t, "ACME", resp.ClientName)
	assert.Equal(t, "Adult", resp.SizeMatrixName)
	assert.Equal(t, 28, resp.TotalUnits)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, 23, resp.Entries[0].TotalPerSize, "stored totals are never trusted")
	assert.Equal(t, 5, resp.Entries[1].TotalPerSize)
}

func TestPackingList_EmptyEntriesAreAccepted(t *testing.T) {
	f := newFixture()
	svc := NewPackingListService(f.lists, f.clients, f.matrices)

	resp, err := svc.Crear(context.Background(), packingRequest(f, []packing.Entry{}))
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)
	assert.Zero(t, resp.TotalUnits)
}

func TestPackingList_RejectsOverlappingRanges(t *testing.T) {
	f := newFixture()
	svc := NewPackingListService(f.lists, f.clients, f.matrices)
	entries := []packing.Entry{
		{Size: "S", BoxFrom: 1, BoxTo: 3, UnitsPerBox: 10},
		{Size: "M", BoxFrom: 2, BoxTo: 4, UnitsPerBox: 5},
	}

	_, err := svc.Crear(context.Background(), packingRequest(f, entries))
	var rej *AllocationRejectedError
	require.True(t, errors.As(err, &rej))
	require.Contains(t, rej.Rows, "row_1")
	require.Contains(t, rej.Rows, "row_2")
	assert.Equal(t, packing.MsgOverlappingRange, rej.Rows["row_1"].BoxRange)
	assert.Empty(t, f.lists.items, "a rejected list is never persisted")
}

func TestPackingList_RejectsOversizedBoxNumbers(t *testing.T) {
	f := newFixture()
	svc := NewPackingListService(f.lists, f.clients, f.matrices)
	entries := []packing.Entry{{Size: "S", BoxFrom: 1, BoxTo: 1 << 62, UnitsPerBox: 3}}

	_, err := svc.Crear(context.Background(), packingRequest(f, entries))
	var rej *AllocationRejectedError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, packing.MsgBoxTooLarge, rej.Rows["row_1"].BoxRange)
	assert.Empty(t, f.lists.items)
}

func TestPackingList_RejectsSizeOutsideMatrix(t *testing.T) {
	f := newFixture()
	svc := NewPackingListService(f.lists, f.clients, f.matrices)
	entries := []packing.Entry{
		{Size: "S", BoxFrom: 1, BoxTo: 1, UnitsPerBox: 10},
		{Size: "XXXL", BoxFrom: 2, BoxTo: 2, UnitsPerBox: 10},
	}

	_, err := svc.Crear(context.Background(), packingRequest(f, entries))
	var rej *AllocationRejectedError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, packing.MsgUnknownSize, rej.Rows["row_2"].Size)
	assert.Empty(t, f.lists.items)
}

func TestPackingList_UnknownReferencesAreInvalid(t *testing.T) {
	f := newFixture()
	svc := NewPackingListService(f.lists, f.clients, f.matrices)

	req := packingRequest(f, validEntries())
	req.ClientID = uuid.New()
	_, err := svc.Crear(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalid)

	req = packingRequest(f, validEntries())
	req.SizeMatrixID = uuid.New()
	_, err = svc.Crear(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalid)

	req = packingRequest(f, nil)
	_, err = svc.Crear(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestPackingList_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := NewPackingListService(f.lists, f.clients, f.matrices)
	created, err := svc.Crear(ctx, packingRequest(f, validEntries()))
	require.NoError(t, err)

	req := packingRequest(f, validEntries()[:1])
	req.Notes = "  second shipment "
	updated, err := svc.Actualizar(ctx, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 23, updated.TotalUnits)
	assert.Equal(t, "second shipment", updated.Notes)

	_, err = svc.Actualizar(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Eliminar(ctx, created.ID))
	_, err = svc.ObtenerPorID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// ── Allocation sessions ──────────────────────────────────────────────────────

func newAllocationService(f *fixture) AllocationService {
	return NewAllocationService(repositorySessions(f), f.clients, f.matrices, f.lists)
}

func TestAllocation_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newAllocationService(f)
	c := f.client("ACME", modelField)
	m := f.matrix("S", "M")

	sess, err := svc.CrearSesion(ctx, dto.CrearSesionRequest{
		ClientID:     &c.ID,
		SizeMatrixID: &m.ID,
		LabelItems:   []packing.ReferenceItem{{ItemID: "item_1", Fields: modelValue("A123")}},
	})
	require.NoError(t, err)
	require.Len(t, sess.Rows, 2)
	assert.Equal(t, "row_1", sess.Rows[0].RowID)
	assert.Equal(t, "S", sess.Rows[0].Size)
	assert.Equal(t, "A123", sess.Rows[0].ItemFields[0].Value)

	set := func(row string, field packing.Field, raw string) dto.SessionResponse {
		t.Helper()
		resp, err := svc.Aplicar(ctx, sess.ID, packing.Event{Kind: packing.EventSetField, RowID: row, Field: field, Raw: raw})
		require.NoError(t, err)
		return resp
	}
	set("row_1", packing.FieldBoxFrom, "1")
	set("row_1", packing.FieldBoxTo, "2")
	resp := set("row_1", packing.FieldUnitsPerBox, "10")
	assert.Equal(t, 20, resp.TotalUnits)

	set("row_2", packing.FieldBoxFrom, "2")
	resp = set("row_2", packing.FieldBoxTo, "3")
	assert.False(t, resp.Rows[1].Valid, "overlaps row_1")

	v, err := svc.Validar(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, packing.MsgOverlappingRange, v.Rows["row_2"].BoxRange)

	_, err = svc.Confirmar(ctx, sess.ID)
	var rej *AllocationRejectedError
	require.ErrorAs(t, err, &rej)

	set("row_2", packing.FieldBoxFrom, "3")
	resp = set("row_2", packing.FieldUnitsPerBox, "5")
	assert.Equal(t, 25, resp.TotalUnits)

	out, err := svc.Confirmar(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, out.TotalUnits)
	require.Len(t, out.Entries, 2)

	require.NoError(t, svc.EliminarSesion(ctx, sess.ID))
	_, err = svc.ObtenerSesion(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllocation_AddRemoveAndItemFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newAllocationService(f)

	sess, err := svc.CrearSesion(ctx, dto.CrearSesionRequest{
		Sizes:      []string{"S"},
		LabelItems: []packing.ReferenceItem{{ItemID: "item_1", Fields: modelValue("A123")}},
	})
	require.NoError(t, err)
	require.Len(t, sess.FieldDefs, 1, "defs come from the items without a client")

	resp, err := svc.Aplicar(ctx, sess.ID, packing.Event{Kind: packing.EventAddRow, ItemID: "item_1", Size: "S"})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "row_2", resp.Rows[1].RowID)

	resp, err = svc.Aplicar(ctx, sess.ID, packing.Event{Kind: packing.EventSetItemField, RowID: "row_2", FieldID: "field_1", Value: " B456 "})
	require.NoError(t, err)
	assert.Equal(t, " B456 ", resp.Rows[1].ItemFields[0].Value, "stored as typed")

	_, err = svc.Aplicar(ctx, sess.ID, packing.Event{Kind: packing.EventAddRow, ItemID: "missing", Size: "S"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Aplicar(ctx, sess.ID, packing.Event{Kind: packing.EventAddRow, ItemID: "item_1", Size: "XXXL"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Aplicar(ctx, sess.ID, packing.Event{Kind: packing.EventRemoveRow, RowID: "row_9"})
	assert.ErrorIs(t, err, ErrNotFound)

	resp, err = svc.Aplicar(ctx, sess.ID, packing.Event{Kind: packing.EventRemoveRow, RowID: "row_1"})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "row_2", resp.Rows[0].RowID)
}

func TestAllocation_SeededFromPackingList(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	lists := NewPackingListService(f.lists, f.clients, f.matrices)
	created, err := lists.Crear(ctx, packingRequest(f, validEntries()))
	require.NoError(t, err)

	svc := newAllocationService(f)
	sess, err := svc.CrearSesion(ctx, dto.CrearSesionRequest{PackingListID: &created.ID})
	require.NoError(t, err)
	assert.Len(t, sess.Rows, 2)
	assert.Equal(t, 28, sess.TotalUnits)
	assert.Equal(t, []string{"S", "M"}, sess.Sizes)
}

func TestAllocation_RequiresSizes(t *testing.T) {
	svc := newAllocationService(newFixture())
	_, err := svc.CrearSesion(context.Background(), dto.CrearSesionRequest{})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.ObtenerSesion(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ── Labels ───────────────────────────────────────────────────────────────────

type labelFixture struct {
	*fixture
	svc    LabelService
	queue  *worker.MemoryQueue
	listID uuid.UUID
}

func newLabelFixture(t *testing.T, mailEnabled bool) *labelFixture {
	t.Helper()
	f := newFixture()
	clients := NewClientService(f.clients, f.templates, f.layouts)
	templates := NewLabelTemplateService(f.templates, f.clients, f.layouts)
	lists := NewPackingListService(f.lists, f.clients, f.matrices)
	created, err := lists.Crear(context.Background(), packingRequest(f, validEntries()))
	require.NoError(t, err)

	q := worker.NewMemoryQueue()
	d := worker.NewDispatcher(q, 1)
	return &labelFixture{
		fixture: f,
		svc:     NewLabelService(f.lists, clients, templates, d, f.store, mailEnabled),
		queue:   q,
		listID:  created.ID,
	}
}

func TestLabels_Sheet(t *testing.T) {
	lf := newLabelFixture(t, false)
	sheet, err := lf.svc.Sheet(context.Background(), lf.listID)
	require.NoError(t, err)

	assert.Equal(t, "ACME", sheet.ClientName)
	assert.Equal(t, 4, sheet.TotalBoxes)
	require.Len(t, sheet.Labels, 4)
	assert.True(t, sheet.Labels[3].IsRemainder)
	assert.Equal(t, 3, sheet.Labels[3].Rows[0].QuantitiesBySize["S"])
	assert.Equal(t, labels.DefaultLayout(), sheet.Layout)
	assert.Equal(t, "Summer", sheet.TopLeft)
	assert.Equal(t, "PO-77", sheet.TopRight)

	_, err = lf.svc.Sheet(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLabels_PDFAndXLSX(t *testing.T) {
	lf := newLabelFixture(t, false)
	ctx := context.Background()

	var pdf bytes.Buffer
	require.NoError(t, lf.svc.PDF(ctx, lf.listID, &pdf))
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")))

	var xlsx bytes.Buffer
	require.NoError(t, lf.svc.XLSX(ctx, lf.listID, &xlsx))
	wb, err := excelize.OpenReader(&xlsx)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("Allocation")
	require.NoError(t, err)
	assert.Equal(t, "28", rows[len(rows)-1][len(rows[0])-1])
}

func TestLabels_RenderLabelFile(t *testing.T) {
	lf := newLabelFixture(t, false)
	dir := filepath.Join(t.TempDir(), "out")

	path, err := lf.svc.RenderLabelFile(context.Background(), lf.listID, dir)
	require.NoError(t, err)
	assert.Equal(t, "labels-PO-77-"+lf.listID.String()+".pdf", filepath.Base(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestLabels_JobIsQueuedAndTracked(t *testing.T) {
	ctx := context.Background()
	lf := newLabelFixture(t, true)

	job, err := lf.svc.EncolarTrabajo(ctx, lf.listID, dto.LabelJobRequest{Email: "ops@example.com"})
	require.NoError(t, err)
	assert.Equal(t, worker.JobQueued, job.Status)
	assert.NotEmpty(t, job.JobID)

	_, raw, err := lf.queue.Pop(ctx, 10*time.Millisecond, worker.QueueLabels)
	require.NoError(t, err)
	var envelope worker.Job
	require.NoError(t, json.Unmarshal(raw, &envelope))
	var payload worker.LabelJobPayload
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, job.JobID, payload.JobID)
	assert.Equal(t, lf.listID, payload.PackingListID)

	// run the worker against the same service and store
	w := worker.NewLabelWorker(lf.svc, nil, lf.store, t.TempDir())
	require.NoError(t, w.Process(ctx, envelope.Payload))

	st, err := lf.svc.EstadoTrabajo(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, worker.JobDone, st.Status)
	assert.Equal(t, "labels-PO-77-"+lf.listID.String()+".pdf", st.File)

	_, err = lf.svc.EstadoTrabajo(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLabels_JobErrors(t *testing.T) {
	ctx := context.Background()
	lf := newLabelFixture(t, false)

	_, err := lf.svc.EncolarTrabajo(ctx, lf.listID, dto.LabelJobRequest{Email: "ops@example.com"})
	assert.ErrorIs(t, err, ErrUnavailable, "email needs SMTP")

	_, err = lf.svc.EncolarTrabajo(ctx, uuid.New(), dto.LabelJobRequest{})
	assert.ErrorIs(t, err, ErrNotFound)

	n, _ := lf.queue.Len(ctx, worker.QueueLabels)
	assert.Zero(t, n)
}

func TestLabelFileName(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	assert.Equal(t, "labels-"+id.String()+".pdf", labelFileName(id, "  "))
	assert.Equal(t, "labels-PO_12_A-"+id.String()+".pdf", labelFileName(id, "PO/12.A*"))
}
