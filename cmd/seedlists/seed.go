package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/category"
	"github.com/bfrpaulondev/fitness-api/internal/model"
	"github.com/bfrpaulondev/fitness-api/internal/units"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
)

// seedFile is the YAML layout accepted by seedlists. Amounts are strings so
// they reach decimal.Decimal without a float round trip.
type seedFile struct {
	UserID string      `yaml:"user_id"`
	Listas []seedLista `yaml:"listas"`
}

type seedLista struct {
	Nombre         string     `yaml:"nombre"`
	Anio           int        `yaml:"anio"`
	Mes            int        `yaml:"mes"`
	Presupuesto    string     `yaml:"presupuesto"`
	FraccionAviso  string     `yaml:"fraccion_aviso"`
	FraccionExceso string     `yaml:"fraccion_exceso"`
	Notificar      *bool      `yaml:"notificar"`
	Items          []seedItem `yaml:"items"`
}

type seedItem struct {
	Nombre         string `yaml:"nombre"`
	Cantidad       string `yaml:"cantidad"`
	Unidad         string `yaml:"unidad"`
	Categoria      string `yaml:"categoria"`
	PrecioPlaneado string `yaml:"precio_planeado"`
	PrecioPagado   string `yaml:"precio_pagado"`
	Comprado       bool   `yaml:"comprado"`
	Tienda         string `yaml:"tienda"`
	Notas          string `yaml:"notas"`
	Fecha          string `yaml:"fecha"` // 2006-01-02; purchase date of a bought item
}

func readSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// buildListas converts the seed into models. userOverride, when set, wins
// over the file's user_id.
func buildListas(f *seedFile, userOverride string, now time.Time) ([]model.ListaCompra, error) {
	raw := userOverride
	if raw == "" {
		raw = f.UserID
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("user_id %q: %w", raw, err)
	}

	out := make([]model.ListaCompra, 0, len(f.Listas))
	for li, sl := range f.Listas {
		l, err := buildLista(sl, userID, now)
		if err != nil {
			return nil, fmt.Errorf("lista %d (%s): %w", li+1, sl.Nombre, err)
		}
		out = append(out, l)
	}
	return out, nil
}

func buildLista(sl seedLista, userID uuid.UUID, now time.Time) (model.ListaCompra, error) {
	l := model.ListaCompra{
		ID:        uuid.New(),
		UserID:    userID,
		Nombre:    strings.TrimSpace(sl.Nombre),
		Anio:      sl.Anio,
		Mes:       sl.Mes,
		Notificar: sl.Notificar == nil || *sl.Notificar,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if l.Anio == 0 {
		l.Anio = now.Year()
	}
	if l.Mes == 0 {
		l.Mes = int(now.Month())
	}
	if l.Mes < 1 || l.Mes > 12 {
		return l, fmt.Errorf("mes %d fuera de rango", l.Mes)
	}
	if l.Nombre == "" {
		l.Nombre = fmt.Sprintf("Lista %04d-%02d", l.Anio, l.Mes)
	}

	var err error
	if l.Presupuesto, err = parseDecimal(sl.Presupuesto, "0"); err != nil {
		return l, fmt.Errorf("presupuesto: %w", err)
	}
	if l.FraccionAviso, err = parseDecimal(sl.FraccionAviso, "0.8"); err != nil {
		return l, fmt.Errorf("fraccion_aviso: %w", err)
	}
	if l.FraccionExceso, err = parseDecimal(sl.FraccionExceso, "1"); err != nil {
		return l, fmt.Errorf("fraccion_exceso: %w", err)
	}

	items := make(datatypes.JSONSlice[model.ItemLista], 0, len(sl.Items))
	for ii, si := range sl.Items {
		it, err := buildItem(si, now)
		if err != nil {
			return l, fmt.Errorf("item %d (%s): %w", ii+1, si.Nombre, err)
		}
		items = append(items, it)
	}
	l.Items = items
	return l, nil
}

func buildItem(si seedItem, now time.Time) (model.ItemLista, error) {
	it := model.ItemLista{
		ID:        uuid.New(),
		Nombre:    strings.TrimSpace(si.Nombre),
		Unidad:    units.Normalize(si.Unidad).Name,
		Categoria: strings.TrimSpace(si.Categoria),
		Comprado:  si.Comprado,
		Tienda:    strings.TrimSpace(si.Tienda),
		Notas:     si.Notas,
		CreatedAt: now,
	}
	if it.Nombre == "" {
		return it, fmt.Errorf("nombre vacio")
	}
	if it.Categoria == "" {
		it.Categoria = category.Classify(it.Nombre)
	}

	var err error
	if it.Cantidad, err = parseDecimal(si.Cantidad, "1"); err != nil {
		return it, fmt.Errorf("cantidad: %w", err)
	}
	if it.PrecioPlaneado, err = parseDecimal(si.PrecioPlaneado, "0"); err != nil {
		return it, fmt.Errorf("precio_planeado: %w", err)
	}
	if it.PrecioPagado, err = parseDecimal(si.PrecioPagado, "0"); err != nil {
		return it, fmt.Errorf("precio_pagado: %w", err)
	}

	if it.Comprado && it.PrecioPagado.IsPositive() {
		fecha := now
		if si.Fecha != "" {
			if fecha, err = time.Parse(time.DateOnly, si.Fecha); err != nil {
				return it, fmt.Errorf("fecha: %w", err)
			}
		}
		it.CreatedAt = fecha
		it.UpdatedAt = &fecha
		it.HistorialPrecios = []model.EntradaPrecio{{Fecha: fecha, Tienda: it.Tienda, Precio: it.PrecioPagado}}
	}
	return it, nil
}

func parseDecimal(s, def string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = def
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s es negativo", s)
	}
	return d, nil
}
