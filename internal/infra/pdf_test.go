package infra

import (
	"bytes"
	"testing"

	"github.com/bfrpaulondev/fitness-api/internal/budget"
	"github.com/bfrpaulondev/fitness-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateListaPDF(t *testing.T) {
	lista := &model.ListaCompra{
		ID:          uuid.New(),
		Nombre:      "Compra de marzo",
		Anio:        2026,
		Mes:         3,
		Presupuesto: decimal.NewFromInt(100),
		Items: []model.ItemLista{
			{ID: uuid.New(), Nombre: "Atún", Cantidad: decimal.NewFromInt(3), Unidad: "lata", Categoria: "proteinas", PrecioPlaneado: decimal.RequireFromString("4.5")},
			{ID: uuid.New(), Nombre: "Arroz", Cantidad: decimal.NewFromInt(1), Unidad: "kg", Comprado: true, PrecioPagado: decimal.NewFromInt(3)},
		},
	}

	out, err := GenerateListaPDF(lista, budget.Summarize(lista))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
