package service

import (
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/dto"
	"github.com/bfrpaulondev/fitness-api/internal/model"
)

func toListaResponse(l *model.ListaCompra) *dto.ListaCompraResponse {
	items := make([]dto.ItemListaResponse, 0, len(l.Items))
	for _, it := range l.Items {
		historial := make([]dto.EntradaPrecioResponse, 0, len(it.HistorialPrecios))
		for _, e := range it.HistorialPrecios {
			historial = append(historial, dto.EntradaPrecioResponse{
				Date:  e.Fecha.UTC().Format(time.RFC3339),
				Store: e.Tienda,
				Price: e.Precio,
			})
		}
		items = append(items, dto.ItemListaResponse{
			ID:             it.ID.String(),
			Name:           it.Nombre,
			Qty:            it.Cantidad,
			Unit:           it.Unidad,
			Category:       it.Categoria,
			PlannedPrice:   it.PrecioPlaneado,
			PurchasedPrice: it.PrecioPagado,
			Purchased:      it.Comprado,
			Store:          it.Tienda,
			Notes:          it.Notas,
			PriceHistory:   historial,
		})
	}
	return &dto.ListaCompraResponse{
		ID:           l.ID.String(),
		Name:         l.Nombre,
		Year:         l.Anio,
		Month:        l.Mes,
		Budget:       l.Presupuesto,
		WarnFraction: l.FraccionAviso,
		OverFraction: l.FraccionExceso,
		Notify:       l.Notificar,
		Items:        items,
		CreatedAt:    l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    l.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
