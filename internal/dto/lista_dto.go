package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// EstimarPreciosRequest is the body of POST /v1/listas/:id/estimate-prices.
type EstimarPreciosRequest struct {
	Strategy    string `json:"strategy"    validate:"omitempty,oneof=last avg median"`
	Store       string `json:"store"       validate:"max=120"`
	Days        *int   `json:"days"        validate:"omitempty,min=1,max=3650"`
	OnlyMissing *bool  `json:"onlyMissing"`
}

// SoloFaltantes defaults to true when the caller omits onlyMissing.
func (r EstimarPreciosRequest) SoloFaltantes() bool {
	return r.OnlyMissing == nil || *r.OnlyMissing
}

// CrearDesdePlanRequest is the body of POST /v1/listas/from-mealplan.
type CrearDesdePlanRequest struct {
	Name         *string          `json:"name"         validate:"omitempty,min=1,max=120"`
	Year         *int             `json:"year"         validate:"omitempty,min=2000,max=2100"`
	Month        *int             `json:"month"        validate:"omitempty,min=1,max=12"`
	Budget       *decimal.Decimal `json:"budget"       validate:"omitempty,min=0"`
	AllowUnknown bool             `json:"allowUnknown"`
	Strategy     string           `json:"strategy"     validate:"omitempty,oneof=last avg median"`
	Store        string           `json:"store"        validate:"max=120"`
	Days         *int             `json:"days"         validate:"omitempty,min=1,max=3650"`
	Plan         PlanRequest      `json:"plan"`
}

type PlanRequest struct {
	Items []IngredienteRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

type IngredienteRequest struct {
	Name  string          `json:"name"  validate:"required,max=120"`
	Qty   decimal.Decimal `json:"qty"   validate:"gt=0"`
	Unit  string          `json:"unit"  validate:"max=30"`
	Notes string          `json:"notes" validate:"max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EntradaPrecioResponse struct {
	Date  string          `json:"date"`
	Store string          `json:"store,omitempty"`
	Price decimal.Decimal `json:"price"`
}

type ItemListaResponse struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Qty            decimal.Decimal         `json:"qty"`
	Unit           string                  `json:"unit"`
	Category       string                  `json:"category"`
	PlannedPrice   decimal.Decimal         `json:"plannedPrice"`
	PurchasedPrice decimal.Decimal         `json:"purchasedPrice"`
	Purchased      bool                    `json:"purchased"`
	Store          string                  `json:"store,omitempty"`
	Notes          string                  `json:"notes,omitempty"`
	PriceHistory   []EntradaPrecioResponse `json:"priceHistory"`
}

type ListaCompraResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Year         int                 `json:"year"`
	Month        int                 `json:"month"`
	Budget       decimal.Decimal     `json:"budget"`
	WarnFraction decimal.Decimal     `json:"warnFraction"`
	OverFraction decimal.Decimal     `json:"overFraction"`
	Notify       bool                `json:"notify"`
	Items        []ItemListaResponse `json:"items"`
	CreatedAt    string              `json:"createdAt"`
	UpdatedAt    string              `json:"updatedAt"`
}

// IngredienteDesconocido is an ingredient without purchase history.
type IngredienteDesconocido struct {
	Name string          `json:"name"`
	Unit string          `json:"unit"`
	Qty  decimal.Decimal `json:"qty"`
}

// ResumenResponse is returned by GET /v1/listas/:id/summary.
type ResumenResponse struct {
	ListaID   string          `json:"listId"`
	Planned   decimal.Decimal `json:"planned"`
	Spent     decimal.Decimal `json:"spent"`
	Budget    decimal.Decimal `json:"budget"`
	Remaining decimal.Decimal `json:"remaining"`
	Status    string          `json:"status"` // ok | warn | over
}
