// Package budget computes planned vs. spent totals of a shopping list and
// classifies spend against the list's alert thresholds.
package budget

import (
	"github.com/bfrpaulondev/fitness-api/internal/model"

	"github.com/shopspring/decimal"
)

// Status of a list's spend relative to its budget.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusOver Status = "over"
)

// Alerting reports whether the status should emit a budget alert.
func (s Status) Alerting() bool { return s == StatusWarn || s == StatusOver }

// Summary is the budget/spend snapshot of one list.
type Summary struct {
	Planned   decimal.Decimal
	Spent     decimal.Decimal
	Budget    decimal.Decimal
	Remaining decimal.Decimal
	Status    Status
}

// Summarize totals the list. Planned sums every item; spent only purchased ones.
func Summarize(l *model.ListaCompra) Summary {
	planned, spent := decimal.Zero, decimal.Zero
	for _, it := range l.Items {
		planned = planned.Add(it.PrecioPlaneado)
		if it.Comprado {
			spent = spent.Add(it.PrecioPagado)
		}
	}
	return Summary{
		Planned:   planned,
		Spent:     spent,
		Budget:    l.Presupuesto,
		Remaining: decimal.Max(decimal.Zero, l.Presupuesto.Sub(spent)),
		Status:    Classify(spent, l.Presupuesto, l.FraccionAviso, l.FraccionExceso),
	}
}

// Classify returns over | warn | ok. A non-positive budget is always ok.
func Classify(spent, budget, warnFraction, overFraction decimal.Decimal) Status {
	if !budget.IsPositive() {
		return StatusOK
	}
	switch {
	case spent.GreaterThanOrEqual(budget.Mul(overFraction)):
		return StatusOver
	case spent.GreaterThanOrEqual(budget.Mul(warnFraction)):
		return StatusWarn
	default:
		return StatusOK
	}
}
