package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/cache"
	"github.com/vitorf997/packing-creator/internal/model"
	"github.com/vitorf997/packing-creator/internal/packing"
	"github.com/vitorf997/packing-creator/internal/repository"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubTemplateRepo is an in-memory LabelTemplateRepository.
type stubTemplateRepo struct {
	items []*model.LabelTemplate
}

func (r *stubTemplateRepo) find(id uuid.UUID) *model.LabelTemplate {
	for _, t := range r.items {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (r *stubTemplateRepo) Crear(_ context.Context, t *model.LabelTemplate) error {
	for _, x := range r.items {
		if x.Key == t.Key {
			return gorm.ErrDuplicatedKey
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	r.items = append(r.items, &cp)
	return nil
}

func (r *stubTemplateRepo) CrearSiNoExiste(ctx context.Context, t *model.LabelTemplate) (bool, error) {
	if _, err := r.ObtenerPorKey(ctx, t.Key); err == nil {
		return false, nil
	}
	return true, r.Crear(ctx, t)
}

func (r *stubTemplateRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.LabelTemplate, error) {
	if t := r.find(id); t != nil {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTemplateRepo) ObtenerPorKey(_ context.Context, key string) (*model.LabelTemplate, error) {
	for _, t := range r.items {
		if t.Key == key {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTemplateRepo) Listar(_ context.Context, f repository.LabelTemplateFilter) ([]model.LabelTemplate, error) {
	var out []model.LabelTemplate
	for _, t := range r.items {
		if f.ClientID != nil && t.ClientID != nil && *t.ClientID != *f.ClientID {
			continue
		}
		if f.Active != nil && t.Active != *f.Active {
			continue
		}
		if q := strings.ToLower(f.Q); q != "" && !strings.Contains(strings.ToLower(t.Name), q) && !strings.Contains(t.Key, q) {
			continue
		}
		out = append(out, *t)
	}
	slices.SortStableFunc(out, func(a, b model.LabelTemplate) int {
		switch {
		case a.IsDefault && !b.IsDefault:
			return -1
		case b.IsDefault && !a.IsDefault:
			return 1
		}
		return 0
	})
	return out, nil
}

func (r *stubTemplateRepo) Actualizar(_ context.Context, t *model.LabelTemplate) error {
	for _, x := range r.items {
		if x.Key == t.Key && x.ID != t.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	cur := r.find(t.ID)
	if cur == nil {
		return gorm.ErrRecordNotFound
	}
	*cur = *t
	return nil
}

func (r *stubTemplateRepo) Eliminar(_ context.Context, id uuid.UUID) error {
	i := slices.IndexFunc(r.items, func(t *model.LabelTemplate) bool { return t.ID == id })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	r.items = slices.Delete(r.items, i, i+1)
	return nil
}

func (r *stubTemplateRepo) QuitarDefaultExcepto(_ context.Context, id uuid.UUID) error {
	for _, t := range r.items {
		if t.ID != id {
			t.IsDefault = false
		}
	}
	return nil
}

var _ repository.LabelTemplateRepository = (*stubTemplateRepo)(nil)

// stubClientRepo is an in-memory ClientRepository. ObtenerPorID fills
// LabelTemplate from templates the way the gorm preload does.
type stubClientRepo struct {
	clients   map[uuid.UUID]*model.Client
	templates *stubTemplateRepo
	reads     int
}

func newStubClientRepo(templates *stubTemplateRepo) *stubClientRepo {
	return &stubClientRepo{clients: map[uuid.UUID]*model.Client{}, templates: templates}
}

func (r *stubClientRepo) Crear(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.clients[c.ID] = &cp
	return nil
}

func (r *stubClientRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	r.reads++
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.LabelTemplate = nil
	if cp.LabelTemplateID != nil && r.templates != nil {
		if t := r.templates.find(*cp.LabelTemplateID); t != nil {
			tc := *t
			cp.LabelTemplate = &tc
		}
	}
	return &cp, nil
}

func (r *stubClientRepo) Listar(_ context.Context, q string) ([]model.Client, error) {
	var out []model.Client
	for _, c := range r.clients {
		if q == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(q)) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClientRepo) Actualizar(_ context.Context, c *model.Client) error {
	if _, ok := r.clients[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	r.clients[c.ID] = &cp
	return nil
}

func (r *stubClientRepo) Eliminar(_ context.Context, id uuid.UUID) error {
	if _, ok := r.clients[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.clients, id)
	return nil
}

func (r *stubClientRepo) DesasignarTemplate(_ context.Context, templateID uuid.UUID) error {
	for _, c := range r.clients {
		if c.LabelTemplateID != nil && *c.LabelTemplateID == templateID {
			c.LabelTemplateID = nil
		}
	}
	return nil
}

var _ repository.ClientRepository = (*stubClientRepo)(nil)

type stubSizeMatrixRepo struct {
	items map[uuid.UUID]*model.SizeMatrix
}

func newStubSizeMatrixRepo() *stubSizeMatrixRepo {
	return &stubSizeMatrixRepo{items: map[uuid.UUID]*model.SizeMatrix{}}
}

func (r *stubSizeMatrixRepo) Crear(_ context.Context, m *model.SizeMatrix) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *stubSizeMatrixRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.SizeMatrix, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *stubSizeMatrixRepo) Listar(context.Context, string) ([]model.SizeMatrix, error) {
	out := make([]model.SizeMatrix, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubSizeMatrixRepo) Actualizar(_ context.Context, m *model.SizeMatrix) error {
	if _, ok := r.items[m.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *stubSizeMatrixRepo) Eliminar(_ context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.items, id)
	return nil
}

var _ repository.SizeMatrixRepository = (*stubSizeMatrixRepo)(nil)

// stubPackingListRepo fills Client and SizeMatrix on read like the preloads.
type stubPackingListRepo struct {
	items    map[uuid.UUID]*model.PackingList
	clients  *stubClientRepo
	matrices *stubSizeMatrixRepo
}

func newStubPackingListRepo(clients *stubClientRepo, matrices *stubSizeMatrixRepo) *stubPackingListRepo {
	return &stubPackingListRepo{items: map[uuid.UUID]*model.PackingList{}, clients: clients, matrices: matrices}
}

func (r *stubPackingListRepo) Crear(_ context.Context, p *model.PackingList) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *stubPackingListRepo) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.PackingList, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	if c, err := r.clients.ObtenerPorID(ctx, p.ClientID); err == nil {
		cp.Client = c
	}
	if m, err := r.matrices.ObtenerPorID(ctx, p.SizeMatrixID); err == nil {
		cp.SizeMatrix = m
	}
	return &cp, nil
}

func (r *stubPackingListRepo) Listar(_ context.Context, f repository.PackingListFilter) ([]model.PackingList, error) {
	var out []model.PackingList
	for _, p := range r.items {
		if f.ClientID != nil && p.ClientID != *f.ClientID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubPackingListRepo) Actualizar(_ context.Context, p *model.PackingList) error {
	if _, ok := r.items[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *stubPackingListRepo) Eliminar(_ context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.items, id)
	return nil
}

var _ repository.PackingListRepository = (*stubPackingListRepo)(nil)

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	store     *cache.MemoryStore
	layouts   *LayoutCache
	templates *stubTemplateRepo
	clients   *stubClientRepo
	matrices  *stubSizeMatrixRepo
	lists     *stubPackingListRepo
}

func newFixture() *fixture {
	f := &fixture{store: cache.NewMemoryStore(), templates: &stubTemplateRepo{}}
	f.layouts = NewLayoutCache(f.store, time.Minute)
	f.clients = newStubClientRepo(f.templates)
	f.matrices = newStubSizeMatrixRepo()
	f.lists = newStubPackingListRepo(f.clients, f.matrices)
	return f
}

func repositorySessions(f *fixture) repository.SessionStore {
	return repository.NewSessionStore(f.store, time.Hour)
}

func (f *fixture) client(name string, defs ...packing.LabelFieldDef) *model.Client {
	c := &model.Client{Name: name, LabelFields: defs}
	_ = f.clients.Crear(context.Background(), c)
	return c
}

func (f *fixture) matrix(sizes ...string) *model.SizeMatrix {
	m := &model.SizeMatrix{Name: "Adult", Sizes: sizes}
	_ = f.matrices.Crear(context.Background(), m)
	return m
}
