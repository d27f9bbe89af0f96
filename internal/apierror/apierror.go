// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "github.com/bfrpaulondev/fitness-api/internal/dto"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// UnknownIngredients is the 400 body of a meal-plan request that names
// ingredients the user never bought.
type UnknownIngredients struct {
	Message string                       `json:"message"`
	Unknown []dto.IngredienteDesconocido `json:"unknown"`
}

func NewUnknownIngredients(items []dto.IngredienteDesconocido) *UnknownIngredients {
	return &UnknownIngredients{
		Message: "Ingredientes sin historial de compra; reintente con allowUnknown=true",
		Unknown: items,
	}
}
