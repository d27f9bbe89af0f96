package dto

import "github.com/shopspring/decimal"

// BuscarPreciosQuery binds GET /v1/listas/precios/buscar.
type BuscarPreciosQuery struct {
	Name  string `form:"name"  validate:"required,min=1,max=120"`
	Store string `form:"store" validate:"max=120"`
}

// PrecioEncontrado is one price-history entry matching the search.
type PrecioEncontrado struct {
	ListaID string          `json:"listId"`
	ItemID  string          `json:"itemId"`
	Name    string          `json:"name"`
	Unit    string          `json:"unit"`
	Date    string          `json:"date"`
	Store   string          `json:"store,omitempty"`
	Price   decimal.Decimal `json:"price"`
}

type BuscarPreciosResponse struct {
	Data  []PrecioEncontrado `json:"data"`
	Total int                `json:"total"`
}
