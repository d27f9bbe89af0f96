package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ahora = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

const seedYAML = `
user_id: 6f1c1b0e-8a55-4d1e-9a63-0d8f4c2b7a10
listas:
  - nombre: Febrero
    anio: 2026
    mes: 2
    presupuesto: "250.00"
    items:
      - nombre: Arroz
        cantidad: "1"
        unidad: Kilos
        comprado: true
        precio_pagado: "3.00"
        tienda: Lidl
        fecha: "2026-02-10"
      - nombre: Yogur natural
        cantidad: "4"
        unidad: unidades
        categoria: lacteos
      - nombre: Detergente
  - mes: 3
    notificar: false
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBuildListas(t *testing.T) {
	f, err := readSeedFile(writeSeed(t, seedYAML))
	require.NoError(t, err)

	listas, err := buildListas(f, "", ahora)
	require.NoError(t, err)
	require.Len(t, listas, 2)

	feb := listas[0]
	assert.Equal(t, "6f1c1b0e-8a55-4d1e-9a63-0d8f4c2b7a10", feb.UserID.String())
	assert.Equal(t, "250", feb.Presupuesto.String())
	assert.Equal(t, "0.8", feb.FraccionAviso.String())
	assert.Equal(t, "1", feb.FraccionExceso.String())
	assert.True(t, feb.Notificar)
	require.Len(t, feb.Items, 3)

	arroz := feb.Items[0]
	assert.Equal(t, "kg", arroz.Unidad)
	assert.Equal(t, "granos", arroz.Categoria)
	require.NotNil(t, arroz.UpdatedAt)
	assert.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), *arroz.UpdatedAt)
	require.Len(t, arroz.HistorialPrecios, 1)
	assert.Equal(t, "Lidl", arroz.HistorialPrecios[0].Tienda)
	assert.Equal(t, "3", arroz.HistorialPrecios[0].Precio.String())

	yogur := feb.Items[1]
	assert.Equal(t, "un", yogur.Unidad)
	assert.Equal(t, "lacteos", yogur.Categoria)
	assert.Empty(t, yogur.HistorialPrecios)
	assert.Nil(t, yogur.UpdatedAt)

	detergente := feb.Items[2]
	assert.Equal(t, "1", detergente.Cantidad.String())
	assert.Equal(t, "limpieza", detergente.Categoria)

	marzo := listas[1]
	assert.Equal(t, "Lista 2026-03", marzo.Nombre)
	assert.Equal(t, 2026, marzo.Anio)
	assert.False(t, marzo.Notificar)
	assert.Empty(t, marzo.Items)
}

func TestBuildListas_UsuarioSobrescrito(t *testing.T) {
	f, err := readSeedFile(writeSeed(t, seedYAML))
	require.NoError(t, err)

	other := uuid.New()
	listas, err := buildListas(f, other.String(), ahora)
	require.NoError(t, err)
	assert.Equal(t, other, listas[0].UserID)
}

func TestBuildListas_Errores(t *testing.T) {
	cases := map[string]string{
		"usuario invalido":   "user_id: nope\nlistas: [{nombre: X}]\n",
		"mes fuera de rango": "user_id: 6f1c1b0e-8a55-4d1e-9a63-0d8f4c2b7a10\nlistas: [{mes: 13}]\n",
		"precio negativo":    "user_id: 6f1c1b0e-8a55-4d1e-9a63-0d8f4c2b7a10\nlistas: [{items: [{nombre: Pan, precio_pagado: \"-1\"}]}]\n",
		"item sin nombre":    "user_id: 6f1c1b0e-8a55-4d1e-9a63-0d8f4c2b7a10\nlistas: [{items: [{cantidad: \"2\"}]}]\n",
		"fecha invalida":     "user_id: 6f1c1b0e-8a55-4d1e-9a63-0d8f4c2b7a10\nlistas: [{items: [{nombre: Pan, comprado: true, precio_pagado: \"1\", fecha: ayer}]}]\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := readSeedFile(writeSeed(t, content))
			require.NoError(t, err)
			_, err = buildListas(f, "", ahora)
			assert.Error(t, err)
		})
	}
}

func TestReadSeedFile_YAMLInvalido(t *testing.T) {
	_, err := readSeedFile(writeSeed(t, "listas: [\n"))
	assert.Error(t, err)
}

func TestDryRun(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--file", writeSeed(t, seedYAML), "--dry-run"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "2 listas validas\n", out.String())
}

func TestDevToken(t *testing.T) {
	userID := uuid.NewString()
	tok, err := devToken("secreto", userID)
	require.NoError(t, err)

	claims := &middleware.JWTClaims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) { return []byte("secreto"), nil })
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, err = devToken("", userID)
	assert.Error(t, err)
}
