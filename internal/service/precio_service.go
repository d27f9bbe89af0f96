package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/category"
	"github.com/bfrpaulondev/fitness-api/internal/dto"
	"github.com/bfrpaulondev/fitness-api/internal/model"
	"github.com/bfrpaulondev/fitness-api/internal/pricing"
	"github.com/bfrpaulondev/fitness-api/internal/repository"
	"github.com/bfrpaulondev/fitness-api/internal/units"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrListaNoEncontrada covers both missing lists and lists of other users.
var ErrListaNoEncontrada = errors.New("lista no encontrada")

var ErrBusquedaVacia = errors.New("el nombre a buscar no puede estar vacio")

// UnknownIngredientsError aborts a meal-plan synthesis. Items holds every
// ingredient without purchase history, not just the first one.
type UnknownIngredientsError struct {
	Items []dto.IngredienteDesconocido
}

func (e *UnknownIngredientsError) Error() string {
	names := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		names = append(names, it.Name)
	}
	return "ingredientes sin historial de compra: " + strings.Join(names, ", ")
}

var (
	fraccionAvisoDefault  = decimal.RequireFromString("0.8")
	fraccionExcesoDefault = decimal.NewFromInt(1)
)

// PrecioService estimates prices from the user's own purchase history.
type PrecioService interface {
	EstimarPrecios(ctx context.Context, userID, listaID uuid.UUID, req dto.EstimarPreciosRequest) (*dto.ListaCompraResponse, error)
	CrearDesdePlan(ctx context.Context, userID uuid.UUID, req dto.CrearDesdePlanRequest) (*dto.ListaCompraResponse, error)
	BuscarPrecios(ctx context.Context, userID uuid.UUID, q dto.BuscarPreciosQuery) (*dto.BuscarPreciosResponse, error)
}

type precioService struct {
	repo  repository.ListaCompraRepository
	cache repository.PrecioCache
	now   func() time.Time
}

// NewPrecioService accepts a nil cache; searches then always hit the database.
func NewPrecioService(repo repository.ListaCompraRepository, cache repository.PrecioCache) PrecioService {
	if cache == nil {
		cache = noopCache{}
	}
	return &precioService{repo: repo, cache: cache, now: time.Now}
}

// historial loads the user's lists once and groups their purchases.
func (s *precioService) historial(ctx context.Context, userID uuid.UUID, store string, days *int) (map[string]*pricing.Group, error) {
	f := pricing.Filter{Store: store}
	if days != nil {
		f.SinceDays = *days
	}
	now := s.now()
	listas, err := s.repo.ListByUser(ctx, userID, f.Cutoff(now))
	if err != nil {
		return nil, err
	}
	return pricing.Aggregate(listas, f, now), nil
}

// ── EstimarPrecios ───────────────────────────────────────────────────────────
// Items without history are left as they are. The list is written once.

func (s *precioService) EstimarPrecios(ctx context.Context, userID, listaID uuid.UUID, req dto.EstimarPreciosRequest) (*dto.ListaCompraResponse, error) {
	strategy, err := pricing.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}

	lista, err := s.repo.FindByIDForUser(ctx, listaID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrListaNoEncontrada
	}
	if err != nil {
		return nil, err
	}

	groups, err := s.historial(ctx, userID, req.Store, req.Days)
	if err != nil {
		return nil, err
	}

	soloFaltantes := req.SoloFaltantes()
	estimados := 0
	for i := range lista.Items {
		it := &lista.Items[i]
		if soloFaltantes && it.PrecioPlaneado.IsPositive() {
			continue
		}
		g, ok := groups[units.GroupKey(it.Nombre, it.Unidad)]
		if !ok || len(g.Records) == 0 {
			continue
		}
		// UpdatedAt is left alone: a planned price is not a purchase event
		it.PrecioPlaneado = pricing.Estimate(g.Records, it.Cantidad, it.Unidad, strategy)
		if strings.TrimSpace(it.Categoria) == "" {
			it.Categoria = g.CategoryMode
		}
		estimados++
	}

	if estimados > 0 {
		if err := s.repo.Update(ctx, lista); err != nil {
			return nil, err
		}
		s.invalidar(ctx, userID)
	}

	log.Info().
		Str("lista_id", listaID.String()).
		Str("strategy", string(strategy)).
		Int("items", len(lista.Items)).
		Int("estimados", estimados).
		Msg("precios estimados")

	return toListaResponse(lista), nil
}

// ── CrearDesdePlan ───────────────────────────────────────────────────────────
// All-or-nothing: a single unknown ingredient without allowUnknown means
// no list is created and every unresolved ingredient is reported.

func (s *precioService) CrearDesdePlan(ctx context.Context, userID uuid.UUID, req dto.CrearDesdePlanRequest) (*dto.ListaCompraResponse, error) {
	strategy, err := pricing.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}

	groups, err := s.historial(ctx, userID, req.Store, req.Days)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]model.ItemLista, 0, len(req.Plan.Items))
	var desconocidos []dto.IngredienteDesconocido

	for _, ing := range req.Plan.Items {
		info := units.Normalize(ing.Unit)
		item := model.ItemLista{
			ID:        uuid.New(),
			Nombre:    strings.TrimSpace(ing.Name),
			Cantidad:  ing.Qty,
			Unidad:    info.Name,
			Notas:     ing.Notes,
			CreatedAt: now,
		}

		g, ok := groups[units.GroupKey(ing.Name, ing.Unit)]
		switch {
		case ok && len(g.Records) > 0:
			item.PrecioPlaneado = pricing.Estimate(g.Records, ing.Qty, ing.Unit, strategy)
			item.Categoria = g.CategoryMode
			if item.Categoria == "" {
				item.Categoria = category.Classify(item.Nombre)
			}
		case req.AllowUnknown:
			item.PrecioPlaneado = decimal.Zero
			item.Categoria = category.Classify(item.Nombre)
		default:
			desconocidos = append(desconocidos, dto.IngredienteDesconocido{
				Name: item.Nombre,
				Unit: info.Name,
				Qty:  ing.Qty,
			})
			continue
		}
		items = append(items, item)
	}

	if len(desconocidos) > 0 {
		return nil, &UnknownIngredientsError{Items: desconocidos}
	}

	lista := &model.ListaCompra{
		ID:             uuid.New(),
		UserID:         userID,
		Nombre:         fmt.Sprintf("Plan alimentario %04d-%02d", now.Year(), int(now.Month())),
		Anio:           now.Year(),
		Mes:            int(now.Month()),
		Presupuesto:    decimal.Zero,
		FraccionAviso:  fraccionAvisoDefault,
		FraccionExceso: fraccionExcesoDefault,
		Notificar:      true,
		Items:          items,
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		lista.Nombre = strings.TrimSpace(*req.Name)
	}
	if req.Year != nil {
		lista.Anio = *req.Year
	}
	if req.Month != nil {
		lista.Mes = *req.Month
	}
	if req.Budget != nil {
		lista.Presupuesto = *req.Budget
	}

	if err := s.repo.Create(ctx, lista); err != nil {
		return nil, err
	}
	s.invalidar(ctx, userID)

	log.Info().
		Str("lista_id", lista.ID.String()).
		Int("items", len(items)).
		Bool("allow_unknown", req.AllowUnknown).
		Msg("lista creada desde plan alimentario")

	return toListaResponse(lista), nil
}

// ── BuscarPrecios ────────────────────────────────────────────────────────────
// Cache-aside: a Redis failure degrades to a database scan, never to an error.

func (s *precioService) BuscarPrecios(ctx context.Context, userID uuid.UUID, q dto.BuscarPreciosQuery) (*dto.BuscarPreciosResponse, error) {
	name := units.NormalizeName(q.Name)
	if name == "" {
		return nil, ErrBusquedaVacia
	}
	store := strings.TrimSpace(q.Store)
	cacheKey := "buscar:" + name + "|" + strings.ToLower(store)

	// the generation is pinned before the scan; see repository.PrecioCache
	gen, err := s.cache.Generation(ctx, userID)
	usarCache := err == nil
	if err != nil {
		log.Warn().Err(err).Msg("precio cache: generacion ilegible")
	}
	if usarCache {
		var cached dto.BuscarPreciosResponse
		if hit, err := s.cache.Get(ctx, userID, gen, cacheKey, &cached); err != nil {
			log.Warn().Err(err).Msg("precio cache: lectura fallida")
		} else if hit {
			return &cached, nil
		}
	}

	listas, err := s.repo.ListByUser(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	type fila struct {
		fecha time.Time
		dto.PrecioEncontrado
	}
	var filas []fila
	for _, l := range listas {
		for _, it := range l.Items {
			if !strings.Contains(units.NormalizeName(it.Nombre), name) {
				continue
			}
			for _, e := range it.HistorialPrecios {
				if store != "" && !strings.EqualFold(strings.TrimSpace(e.Tienda), store) {
					continue
				}
				filas = append(filas, fila{
					fecha: e.Fecha,
					PrecioEncontrado: dto.PrecioEncontrado{
						ListaID: l.ID.String(),
						ItemID:  it.ID.String(),
						Name:    it.Nombre,
						Unit:    it.Unidad,
						Date:    e.Fecha.UTC().Format(time.RFC3339),
						Store:   e.Tienda,
						Price:   e.Precio,
					},
				})
			}
		}
	}
	sort.SliceStable(filas, func(i, j int) bool { return filas[i].fecha.After(filas[j].fecha) })

	resp := &dto.BuscarPreciosResponse{Data: make([]dto.PrecioEncontrado, 0, len(filas)), Total: len(filas)}
	for _, f := range filas {
		resp.Data = append(resp.Data, f.PrecioEncontrado)
	}

	if usarCache {
		if err := s.cache.Set(ctx, userID, gen, cacheKey, resp); err != nil {
			log.Warn().Err(err).Msg("precio cache: escritura fallida")
		}
	}
	return resp, nil
}

func (s *precioService) invalidar(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("precio cache: invalidacion fallida")
	}
}

type noopCache struct{}

func (noopCache) Generation(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (noopCache) Get(context.Context, uuid.UUID, int64, string, interface{}) (bool, error) {
	return false, nil
}

func (noopCache) Set(context.Context, uuid.UUID, int64, string, interface{}) error {
	return nil
}

func (noopCache) Invalidate(context.Context, uuid.UUID) error {
	return nil
}
