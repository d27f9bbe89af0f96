package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bfrpaulondev/fitness-api/internal/units"

	"github.com/shopspring/decimal"
)

// Strategy selects the representative historical unit price.
type Strategy string

const (
	StrategyLast   Strategy = "last"
	StrategyAvg    Strategy = "avg"
	StrategyMedian Strategy = "median"
)

// DefaultStrategy is used when the caller does not pick one.
const DefaultStrategy = StrategyMedian

var ErrUnknownStrategy = errors.New("estrategia de precio desconocida")

var two = decimal.NewFromInt(2)

// ParseStrategy maps request input to a Strategy. Empty input is the default.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultStrategy, nil
	case StrategyLast:
		return StrategyLast, nil
	case StrategyAvg:
		return StrategyAvg, nil
	case StrategyMedian:
		return StrategyMedian, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// Estimate returns the total price for qty of unit, rounded to 2 decimals.
// records must be ordered most recent first (as produced by Aggregate).
// A non-positive qty always estimates 0.
func Estimate(records []Record, qty decimal.Decimal, unit string, strategy Strategy) decimal.Decimal {
	if !qty.IsPositive() || len(records) == 0 {
		return decimal.Zero
	}
	desired := units.ToBaseQuantity(qty, unit)

	valid := make([]decimal.Decimal, 0, len(records))
	for _, r := range records {
		if r.UnitPriceBase.IsPositive() {
			valid = append(valid, r.UnitPriceBase)
		}
	}

	var representative decimal.Decimal
	if len(valid) == 0 {
		// best-effort single point from the most recent record
		latest := records[0]
		if !latest.BaseQty.IsPositive() {
			return decimal.Zero
		}
		representative = latest.Price.Div(latest.BaseQty)
	} else {
		switch strategy {
		case StrategyLast:
			representative = valid[0]
		case StrategyAvg:
			representative = decimal.Avg(valid[0], valid[1:]...)
		default:
			representative = median(valid)
		}
	}

	total := representative.Mul(desired).Round(2)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func median(values []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(two)
}
