package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ListaCompra is a monthly shopping list owned by exactly one user.
// Items are embedded (jsonb) and only addressable through their owning list.
type ListaCompra struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Nombre      string          `gorm:"not null"`
	Anio        int             `gorm:"not null"`
	Mes         int             `gorm:"not null"`
	Presupuesto decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// FraccionAviso <= FraccionExceso is expected but not enforced (defaults 0.8 / 1.0)
	FraccionAviso  decimal.Decimal                `gorm:"type:decimal(5,4);not null;default:0.8"`
	FraccionExceso decimal.Decimal                `gorm:"type:decimal(5,4);not null;default:1"`
	Notificar      bool                           `gorm:"not null;default:true"`
	Items          datatypes.JSONSlice[ItemLista] `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides GORM's default pluralization for Spanish names.
func (ListaCompra) TableName() string { return "listas_compra" }

// ItemLista is one line of a shopping list.
// Only Comprado=true makes PrecioPagado/Cantidad usable as purchase history.
type ItemLista struct {
	ID               uuid.UUID       `json:"id"`
	Nombre           string          `json:"name"`
	Cantidad         decimal.Decimal `json:"qty"`
	Unidad           string          `json:"unit"`
	Categoria        string          `json:"category"`
	PrecioPlaneado   decimal.Decimal `json:"plannedPrice"`
	PrecioPagado     decimal.Decimal `json:"purchasedPrice"`
	Comprado         bool            `json:"purchased"`
	Tienda           string          `json:"store,omitempty"`
	Notas            string          `json:"notes,omitempty"`
	HistorialPrecios []EntradaPrecio `json:"priceHistory,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        *time.Time      `json:"updatedAt,omitempty"`
}

// EntradaPrecio is an append-only price observation for an item.
type EntradaPrecio struct {
	Fecha  time.Time       `json:"date"`
	Tienda string          `json:"store,omitempty"`
	Precio decimal.Decimal `json:"price"`
}

// FechaEfectiva is the date an item's purchase is attributed to: its own
// update time, then its creation time, then the owning list's timestamps.
func (i ItemLista) FechaEfectiva(lista *ListaCompra) time.Time {
	switch {
	case i.UpdatedAt != nil && !i.UpdatedAt.IsZero():
		return *i.UpdatedAt
	case !i.CreatedAt.IsZero():
		return i.CreatedAt
	case !lista.UpdatedAt.IsZero():
		return lista.UpdatedAt
	default:
		return lista.CreatedAt
	}
}
