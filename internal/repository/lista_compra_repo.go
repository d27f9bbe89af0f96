package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a row is missing or owned by another user.
var ErrNotFound = errors.New("registro no encontrado")

// ListaCompraRepository is the data access contract for shopping lists.
// Items live inside the list row, so every write replaces the whole list.
type ListaCompraRepository interface {
	Create(ctx context.Context, l *model.ListaCompra) error
	// FindByIDForUser never distinguishes "missing" from "owned by someone else".
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.ListaCompra, error)
	// ListByUser returns every list of the user, optionally only the ones
	// touched since the given time.
	ListByUser(ctx context.Context, userID uuid.UUID, since *time.Time) ([]model.ListaCompra, error)
	Update(ctx context.Context, l *model.ListaCompra) error
}

type listaCompraRepo struct{ db *gorm.DB }

func NewListaCompraRepository(db *gorm.DB) ListaCompraRepository {
	return &listaCompraRepo{db: db}
}

func (r *listaCompraRepo) Create(ctx context.Context, l *model.ListaCompra) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("crear lista: %w", err)
	}
	return nil
}

func (r *listaCompraRepo) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.ListaCompra, error) {
	var l model.ListaCompra
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("buscar lista %s: %w", id, err)
	}
	return &l, nil
}

// ListByUser orders by updated_at so the scan is stable between calls.
// Lists not touched since `since` cannot hold items newer than that, because
// every item change rewrites its list row.
func (r *listaCompraRepo) ListByUser(ctx context.Context, userID uuid.UUID, since *time.Time) ([]model.ListaCompra, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("updated_at >= ?", *since)
	}
	var rows []model.ListaCompra
	if err := q.Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listar listas de %s: %w", userID, err)
	}
	return rows, nil
}

// Update writes the whole list in a single statement, scoped to its owner.
func (r *listaCompraRepo) Update(ctx context.Context, l *model.ListaCompra) error {
	l.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.ListaCompra{}).
		Where("id = ? AND user_id = ?", l.ID, l.UserID).
		Updates(map[string]interface{}{
			"nombre":          l.Nombre,
			"anio":            l.Anio,
			"mes":             l.Mes,
			"presupuesto":     l.Presupuesto,
			"fraccion_aviso":  l.FraccionAviso,
			"fraccion_exceso": l.FraccionExceso,
			"notificar":       l.Notificar,
			"items":           l.Items,
			"updated_at":      l.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("actualizar lista %s: %w", l.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
