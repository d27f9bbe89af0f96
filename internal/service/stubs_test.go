package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/model"
	"github.com/bfrpaulondev/fitness-api/internal/repository"
	"github.com/bfrpaulondev/fitness-api/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var ahora = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func comprado(nombre, qty, unidad, precio string, fecha time.Time) model.ItemLista {
	return model.ItemLista{
		ID:           uuid.New(),
		Nombre:       nombre,
		Cantidad:     dec(qty),
		Unidad:       unidad,
		PrecioPagado: dec(precio),
		Comprado:     true,
		CreatedAt:    fecha,
	}
}

func pendiente(nombre, qty, unidad string) model.ItemLista {
	return model.ItemLista{ID: uuid.New(), Nombre: nombre, Cantidad: dec(qty), Unidad: unidad, CreatedAt: ahora}
}

// ── stubListaRepo ────────────────────────────────────────────────────────────

var _ repository.ListaCompraRepository = (*stubListaRepo)(nil)

type stubListaRepo struct {
	mu      sync.Mutex
	listas  map[uuid.UUID]model.ListaCompra
	creates int
	updates int
	listErr error
}

func newStubListaRepo(listas ...model.ListaCompra) *stubListaRepo {
	r := &stubListaRepo{listas: make(map[uuid.UUID]model.ListaCompra)}
	for _, l := range listas {
		r.listas[l.ID] = copiar(l)
	}
	return r
}

// copiar detaches the stored list from the caller like a database round trip.
func copiar(l model.ListaCompra) model.ListaCompra {
	items := make(datatypes.JSONSlice[model.ItemLista], 0, len(l.Items))
	for _, it := range l.Items {
		it.HistorialPrecios = append([]model.EntradaPrecio(nil), it.HistorialPrecios...)
		items = append(items, it)
	}
	l.Items = items
	return l
}

func (r *stubListaRepo) Create(_ context.Context, l *model.ListaCompra) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	l.CreatedAt, l.UpdatedAt = ahora, ahora
	r.listas[l.ID] = copiar(*l)
	return nil
}

func (r *stubListaRepo) FindByIDForUser(_ context.Context, id, userID uuid.UUID) (*model.ListaCompra, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listas[id]
	if !ok || l.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := copiar(l)
	return &cp, nil
}

func (r *stubListaRepo) ListByUser(_ context.Context, userID uuid.UUID, since *time.Time) ([]model.ListaCompra, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []model.ListaCompra
	for _, l := range r.listas {
		if l.UserID != userID {
			continue
		}
		if since != nil && l.UpdatedAt.Before(*since) {
			continue
		}
		out = append(out, copiar(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *stubListaRepo) Update(_ context.Context, l *model.ListaCompra) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.listas[l.ID]
	if !ok || prev.UserID != l.UserID {
		return repository.ErrNotFound
	}
	r.updates++
	r.listas[l.ID] = copiar(*l)
	return nil
}

func (r *stubListaRepo) get(id uuid.UUID) model.ListaCompra {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copiar(r.listas[id])
}

// ── stubCache ────────────────────────────────────────────────────────────────

var _ repository.PrecioCache = (*stubCache)(nil)

type stubCache struct {
	mu            sync.Mutex
	entries       map[string][]byte
	generaciones  map[uuid.UUID]int64
	gets, hits    int
	invalidations int
	failGet       bool
	antesDeSet    func() // runs before each Set, outside the lock
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]byte), generaciones: make(map[uuid.UUID]int64)}
}

func stubKey(userID uuid.UUID, gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", userID, gen, key)
}

func (c *stubCache) Generation(_ context.Context, userID uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generaciones[userID], nil
}

func (c *stubCache) Get(_ context.Context, userID uuid.UUID, gen int64, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return false, errors.New("redis caido")
	}
	b, ok := c.entries[stubKey(userID, gen, key)]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *stubCache) Set(_ context.Context, userID uuid.UUID, gen int64, key string, v interface{}) error {
	if c.antesDeSet != nil {
		c.antesDeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[stubKey(userID, gen, key)] = b
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	c.generaciones[userID]++
	return nil
}

// ── stubPublisher ────────────────────────────────────────────────────────────

var _ AlertPublisher = (*stubPublisher)(nil)

type stubPublisher struct {
	sent chan worker.BudgetAlertPayload
	err  error
}

func newStubPublisher(err error) *stubPublisher {
	return &stubPublisher{sent: make(chan worker.BudgetAlertPayload, 4), err: err}
}

func (p *stubPublisher) EnqueueBudgetAlert(_ context.Context, payload worker.BudgetAlertPayload) error {
	p.sent <- payload
	return p.err
}
