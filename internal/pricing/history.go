// Package pricing turns a user's past purchases into price estimates.
//
// Aggregate scans persisted shopping lists and builds history groups keyed by
// units.GroupKey. Estimate picks a representative per-base-unit price from a
// group and scales it to a requested quantity. Both are pure functions.
package pricing

import (
	"sort"
	"strings"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/model"
	"github.com/bfrpaulondev/fitness-api/internal/units"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is one historically purchased item, converted to its base unit.
type Record struct {
	ListaID       uuid.UUID
	ItemID        uuid.UUID
	Name          string
	Unit          string
	Qty           decimal.Decimal
	BaseQty       decimal.Decimal
	Price         decimal.Decimal
	UnitPriceBase decimal.Decimal
	Store         string
	Date          time.Time
	Category      string
}

// Group is every record sharing a normalized name and unit dimension.
// Records are sorted most recent first.
type Group struct {
	Key          string
	Records      []Record
	CategoryMode string

	categories map[string]int
}

// Filter narrows the purchases that count as history.
type Filter struct {
	Store     string // case-insensitive exact match; empty means any store
	SinceDays int    // only purchases newer than now-SinceDays; 0 means no limit
}

// Cutoff returns the oldest accepted purchase date, or nil when unbounded.
func (f Filter) Cutoff(now time.Time) *time.Time {
	if f.SinceDays <= 0 {
		return nil
	}
	t := now.AddDate(0, 0, -f.SinceDays)
	return &t
}

// Aggregate builds the purchase history groups for the given lists.
// It never mutates its input; zero matching items yields an empty map.
func Aggregate(listas []model.ListaCompra, f Filter, now time.Time) map[string]*Group {
	groups := make(map[string]*Group)
	store := strings.TrimSpace(f.Store)
	cutoff := f.Cutoff(now)

	for li := range listas {
		lista := &listas[li]
		for _, item := range lista.Items {
			if !item.Comprado || !item.PrecioPagado.IsPositive() || !item.Cantidad.IsPositive() {
				continue
			}
			if store != "" && !strings.EqualFold(strings.TrimSpace(item.Tienda), store) {
				continue
			}
			date := item.FechaEfectiva(lista)
			if cutoff != nil && date.Before(*cutoff) {
				continue
			}

			info := units.Normalize(item.Unidad)
			base := item.Cantidad.Mul(info.Factor)
			if !base.IsPositive() {
				continue
			}

			key := units.GroupKey(item.Nombre, item.Unidad)
			g, ok := groups[key]
			if !ok {
				g = &Group{Key: key, categories: make(map[string]int)}
				groups[key] = g
			}
			g.Records = append(g.Records, Record{
				ListaID:       lista.ID,
				ItemID:        item.ID,
				Name:          units.NormalizeName(item.Nombre),
				Unit:          info.Name,
				Qty:           item.Cantidad,
				BaseQty:       base,
				Price:         item.PrecioPagado,
				UnitPriceBase: item.PrecioPagado.Div(base),
				Store:         item.Tienda,
				Date:          date,
				Category:      item.Categoria,
			})
			if c := strings.TrimSpace(item.Categoria); c != "" {
				g.categories[c]++
			}
		}
	}

	for _, g := range groups {
		sort.SliceStable(g.Records, func(i, j int) bool {
			return g.Records[i].Date.After(g.Records[j].Date)
		})
		g.CategoryMode = mode(g.categories)
	}
	return groups
}

// mode returns the most frequent category; equal counts resolve to the
// lexicographically smallest name so results are reproducible.
func mode(counts map[string]int) string {
	best, bestN := "", 0
	for c, n := range counts {
		if n > bestN || (n == bestN && c < best) {
			best, bestN = c, n
		}
	}
	return best
}
