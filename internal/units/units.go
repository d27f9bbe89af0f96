// Package units canonicalizes the free-text units typed on shopping list items
// and decides which quantities are comparable with each other.
//
// Weight quantities are expressed in grams and volume quantities in
// milliliters. Anything else (count-like units, kitchen measures, unknown
// words) is kept as its own unit with factor 1 and is never converted.
package units

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Group is a conversion group: units inside a group convert to each other
// through a fixed multiplier.
type Group string

const (
	GroupWeight Group = "weight" // base: g
	GroupVolume Group = "volume" // base: ml
	GroupOther  Group = "other"  // base: the unit itself
)

// DefaultUnit is assigned when an item has no unit at all.
const DefaultUnit = "un"

// Info describes a normalized unit.
type Info struct {
	Name   string          // canonical short form, e.g. "kg", "ml", "un"
	Group  Group           // conversion group
	Factor decimal.Decimal // multiplier to the group's base unit
}

// Dimension is the comparability label used in history group keys.
// Weight and volume collapse to their group; every "other" unit is its own
// dimension, so "2 un" and "3 fatia" of the same product never mix.
func (i Info) Dimension() string {
	if i.Group == GroupOther {
		return string(GroupOther) + ":" + i.Name
	}
	return string(i.Group)
}

var (
	one      = decimal.NewFromInt(1)
	thousand = decimal.NewFromInt(1000)
)

var (
	gram       = Info{Name: "g", Group: GroupWeight, Factor: one}
	kilogram   = Info{Name: "kg", Group: GroupWeight, Factor: thousand}
	milliliter = Info{Name: "ml", Group: GroupVolume, Factor: one}
	liter      = Info{Name: "l", Group: GroupVolume, Factor: thousand}
)

// convertible maps every recognized spelling of a weight or volume unit.
var convertible = map[string]Info{
	"g": gram, "gr": gram, "grs": gram, "gram": gram, "grams": gram,
	"gramo": gram, "gramos": gram, "grama": gram, "gramas": gram,

	"kg": kilogram, "kgs": kilogram, "kilo": kilogram, "kilos": kilogram,
	"kilogram": kilogram, "kilograms": kilogram, "kilogramo": kilogram,
	"kilogramos": kilogram, "quilo": kilogram, "quilos": kilogram,
	"quilograma": kilogram, "quilogramas": kilogram,

	"ml": milliliter, "mls": milliliter, "milliliter": milliliter,
	"milliliters": milliliter, "millilitre": milliliter, "millilitres": milliliter,
	"mililitro": milliliter, "mililitros": milliliter,

	"l": liter, "lt": liter, "lts": liter, "ltr": liter, "liter": liter,
	"liters": liter, "litre": liter, "litres": liter, "litro": liter, "litros": liter,
}

// aliases folds plurals and translations of non-convertible units onto a
// single canonical name. The result still lives in GroupOther.
var aliases = map[string]string{
	"u": "un", "un": "un", "und": "un", "unds": "un", "unid": "un",
	"unidad": "un", "unidades": "un", "unidade": "un", "unit": "un",
	"units": "un", "pc": "un", "pcs": "un", "piece": "un", "pieces": "un",
	"pieza": "un", "piezas": "un", "peça": "un", "peças": "un", "ea": "un",
	"each": "un",

	"slice": "fatia", "slices": "fatia", "fatia": "fatia", "fatias": "fatia",
	"rebanada": "fatia", "rebanadas": "fatia", "feta": "fatia", "fetas": "fatia",

	"pinch": "pitada", "pinches": "pitada", "pitada": "pitada", "pitadas": "pitada",
	"pizca": "pitada", "pizcas": "pitada",

	"cup": "xicara", "cups": "xicara", "taza": "xicara", "tazas": "xicara",
	"xicara": "xicara", "xicaras": "xicara", "xícara": "xicara", "xícaras": "xicara",

	"tbsp": "cda", "tablespoon": "cda", "tablespoons": "cda", "cda": "cda",
	"cdas": "cda", "cucharada": "cda", "cucharadas": "cda", "colher": "cda",
	"colheres": "cda",

	"tsp": "cdta", "teaspoon": "cdta", "teaspoons": "cdta", "cdta": "cdta",
	"cdtas": "cdta", "cucharadita": "cdta", "cucharaditas": "cdta",

	"pack": "pacote", "packs": "pacote", "pacote": "pacote", "pacotes": "pacote",
	"paquete": "pacote", "paquetes": "pacote", "pkt": "pacote",

	"can": "lata", "cans": "lata", "lata": "lata", "latas": "lata", "tin": "lata",

	"dozen": "duzia", "dz": "duzia", "docena": "duzia", "docenas": "duzia",
	"duzia": "duzia", "dúzia": "duzia", "duzias": "duzia",
}

// Normalize canonicalizes a raw unit string. It never fails: unknown input
// is returned lower-cased and trimmed as its own GroupOther unit.
func Normalize(raw string) Info {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.TrimSuffix(key, ".")
	if key == "" {
		return Info{Name: DefaultUnit, Group: GroupOther, Factor: one}
	}
	if info, ok := convertible[key]; ok {
		return info
	}
	if name, ok := aliases[key]; ok {
		return Info{Name: name, Group: GroupOther, Factor: one}
	}
	return Info{Name: key, Group: GroupOther, Factor: one}
}

// ToBaseQuantity converts qty expressed in raw to the base unit of its group.
func ToBaseQuantity(qty decimal.Decimal, raw string) decimal.Decimal {
	return qty.Mul(Normalize(raw).Factor)
}

// NormalizeName is the product-name half of a group key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GroupKey identifies the purchase-history group of a product bought in raw units.
func GroupKey(name, raw string) string {
	return NormalizeName(name) + "::" + Normalize(raw).Dimension()
}
