// Package category assigns a shopping category to a product name when no
// purchase history says otherwise.
package category

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	Higiene        = "higiene"
	Limpieza       = "limpieza"
	Proteinas      = "proteinas"
	FrutasVerduras = "frutas_verduras"
	Granos         = "granos"
	Lacteos        = "lacteos"
	Bebidas        = "bebidas"
	Otros          = "otros"
)

type rule struct {
	category string
	keywords []string
}

// rules are evaluated in order and the first keyword hit wins. Non-food
// categories go first so "pasta de dientes" or "agua sanitaria" never land
// in a food bucket. Keywords are already lower-case and without diacritics.
var rules = []rule{
	{Higiene, []string{
		"pasta de dientes", "pasta de dente", "creme dental", "toothpaste",
		"cepillo de dientes", "escova de dente", "hilo dental", "fio dental",
		"champu", "shampoo", "acondicionador", "condicionador", "desodorante",
		"jabon de manos", "jabon de tocador", "sabonete", "papel higienico",
		"maquinilla", "afeitar", "compresa", "absorvente", "toallita",
	}},
	{Limpieza, []string{
		"detergente", "detergent", "lavavajillas", "lava-loucas", "lejia",
		"bleach", "cloro", "agua sanitaria", "desinfectante", "desinfetante",
		"limpiador", "multiuso", "esponja", "suavizante", "amaciante",
		"jabon en polvo", "sabao", "bolsas de basura", "saco de lixo", "fregasuelos",
	}},
	{Proteinas, []string{
		"pollo", "pechuga", "frango", "chicken", "carne", "beef", "steak",
		"ternera", "cerdo", "porco", "pork", "pavo", "turkey", "jamon",
		"presunto", "atun", "atum", "tuna", "salmon", "pescado", "peixe",
		"fish", "merluza", "sardina", "camaron", "gamba", "camarao", "shrimp",
		"huevo", "ovos", "tofu", "whey", "proteina", "protein",
	}},
	{FrutasVerduras, []string{
		"fruta", "verdura", "hortaliza", "manzana", "apple", "banana", "platano",
		"naranja", "laranja", "orange", "limon", "limao", "lemon", "fresa",
		"morango", "strawberr", "uva", "pina", "abacaxi", "mango", "papaya",
		"mamao", "aguacate", "abacate", "avocado", "tomate", "tomato", "lechuga",
		"alface", "lettuce", "cebolla", "cebola", "onion", "zanahoria", "cenoura",
		"carrot", "brocoli", "broccoli", "espinaca", "espinafre", "spinach",
		"pepino", "calabacin", "abobrinha", "patata", "batata", "potato", "alho",
	}},
	{Granos, []string{
		"arroz", "rice", "avena", "aveia", "oats", "quinoa", "pasta", "macarrao",
		"espagueti", "fideo", "pan de molde", "pan integral", "pao", "bread",
		"harina", "farinha", "flour", "lenteja", "lentilha", "lentil", "frijol",
		"feijao", "garbanzo", "grao de bico", "cereal", "granola", "maiz",
		"milho", "trigo", "tortilla",
	}},
	{Lacteos, []string{
		"leche", "leite", "milk", "queso", "queijo", "cheese", "yogur", "iogurte",
		"yogurt", "mantequilla", "manteiga", "butter", "nata", "requeson",
		"requeijao", "kefir", "cuajada",
	}},
	{Bebidas, []string{
		"agua", "water", "zumo", "jugo", "suco", "juice", "cafe", "coffee",
		"infusion", "refresco", "refrigerante", "soda", "kombucha", "cerveza",
		"cerveja", "beer", "vino", "vinho", "wine", "bebida", "isotonic",
	}},
}

// Classify returns the category for name. Matching is a substring test on
// the lower-cased name with diacritics removed. No hit yields Otros.
func Classify(name string) string {
	n := fold(name)
	if n == "" {
		return Otros
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(n, kw) {
				return r.category
			}
		}
	}
	return Otros
}

// fold lower-cases s and strips combining marks ("Atún" -> "atun").
func fold(s string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(s)))
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
