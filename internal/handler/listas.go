package handler

import (
	"net/http"
	"strconv"

	"github.com/bfrpaulondev/fitness-api/internal/dto"
	"github.com/bfrpaulondev/fitness-api/internal/middleware"
	"github.com/bfrpaulondev/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
)

type ListasHandler struct {
	precios service.PrecioService
	resumen service.ResumenService
}

func NewListasHandler(precios service.PrecioService, resumen service.ResumenService) *ListasHandler {
	return &ListasHandler{precios: precios, resumen: resumen}
}

// EstimarPrecios godoc
// @Summary      Estimar precios planeados
// @Description  Completa el precio planeado de cada item a partir del historial de compras del usuario.
// @Tags         listas
// @Security     BearerAuth
// @Param        id    path     string                     true  "UUID de la lista"
// @Param        body  body     dto.EstimarPreciosRequest  false "Estrategia y filtros"
// @Success      200   {object} dto.ListaCompraResponse
// @Failure      400   {object} apierror.APIError
// @Failure      404   {object} apierror.APIError
// @Failure      422   {object} apierror.ValidationError
// @Router       /v1/listas/{id}/estimate-prices [post]
func (h *ListasHandler) EstimarPrecios(c *gin.Context) {
	userID, ok := usuarioActual(c)
	if !ok {
		return
	}
	id, ok := parseListaID(c)
	if !ok {
		return
	}
	var req dto.EstimarPreciosRequest
	// an empty body means "all defaults"
	if !bindOptionalAndValidate(c, &req) {
		return
	}
	resp, err := h.precios.EstimarPrecios(c.Request.Context(), userID, id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CrearDesdePlan godoc
// @Summary      Crear lista desde un plan alimentario
// @Description  Sintetiza una lista de compras con precios estimados. Si algun ingrediente no tiene historial y allowUnknown es false, no se crea nada.
// @Tags         listas
// @Security     BearerAuth
// @Param        body  body     dto.CrearDesdePlanRequest  true  "Plan alimentario"
// @Success      201   {object} dto.ListaCompraResponse
// @Failure      400   {object} apierror.UnknownIngredients
// @Failure      422   {object} apierror.ValidationError
// @Router       /v1/listas/from-mealplan [post]
func (h *ListasHandler) CrearDesdePlan(c *gin.Context) {
	userID, ok := usuarioActual(c)
	if !ok {
		return
	}
	var req dto.CrearDesdePlanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.precios.CrearDesdePlan(c.Request.Context(), userID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Resumen godoc
// @Summary      Resumen de presupuesto
// @Description  Totales planeado y gastado y estado del presupuesto. Un estado warn u over con notificaciones activas encola una alerta por email.
// @Tags         listas
// @Security     BearerAuth
// @Param        id    path     string  true  "UUID de la lista"
// @Success      200   {object} dto.ResumenResponse
// @Failure      404   {object} apierror.APIError
// @Router       /v1/listas/{id}/summary [get]
func (h *ListasHandler) Resumen(c *gin.Context) {
	userID, ok := usuarioActual(c)
	if !ok {
		return
	}
	id, ok := parseListaID(c)
	if !ok {
		return
	}
	var email string
	if claims := middleware.GetClaims(c); claims != nil {
		email = claims.Email
	}
	resp, err := h.resumen.Resumen(c.Request.Context(), userID, id, email)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF godoc
// @Summary      Lista en PDF
// @Tags         listas
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id    path     string  true  "UUID de la lista"
// @Success      200
// @Failure      404   {object} apierror.APIError
// @Router       /v1/listas/{id}/pdf [get]
func (h *ListasHandler) DescargarPDF(c *gin.Context) {
	userID, ok := usuarioActual(c)
	if !ok {
		return
	}
	id, ok := parseListaID(c)
	if !ok {
		return
	}
	out, filename, err := h.resumen.ExportarPDF(c.Request.Context(), userID, id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	c.Data(http.StatusOK, "application/pdf", out)
}
