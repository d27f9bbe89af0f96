package handler

import (
	"errors"
	"io"
	"net/http"
	"reflect"

	"github.com/bfrpaulondev/fitness-api/internal/apierror"
	"github.com/bfrpaulondev/fitness-api/internal/middleware"
	"github.com/bfrpaulondev/fitness-api/internal/pricing"
	"github.com/bfrpaulondev/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindOptionalAndValidate is bindAndValidate for endpoints whose body may be
// omitted. A request without JSON content, whether it has no body, a
// chunked empty one or only whitespace, leaves req at its zero value.
func bindOptionalAndValidate(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQueryAndValidate is bindAndValidate for query strings.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range ve {
			fields[fe.Namespace()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// usuarioActual reads the authenticated user set by middleware.JWTAuth.
func usuarioActual(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("Usuario no autenticado"))
		return uuid.Nil, false
	}
	return id, true
}

func parseListaID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de lista invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// responderError maps service errors to HTTP responses. Anything unexpected
// is attached to the context so ErrorHandler logs it, and the client only
// sees a generic 500.
func responderError(c *gin.Context, err error) {
	var unknown *service.UnknownIngredientsError
	switch {
	case errors.Is(err, service.ErrListaNoEncontrada):
		c.JSON(http.StatusNotFound, apierror.New("Lista no encontrada"))
	case errors.As(err, &unknown):
		c.JSON(http.StatusBadRequest, apierror.NewUnknownIngredients(unknown.Items))
	case errors.Is(err, pricing.ErrUnknownStrategy), errors.Is(err, service.ErrBusquedaVacia):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}
