package handler

import (
	"net/http"

	"github.com/bfrpaulondev/fitness-api/internal/dto"
	"github.com/bfrpaulondev/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
)

type PreciosHandler struct{ svc service.PrecioService }

func NewPreciosHandler(svc service.PrecioService) *PreciosHandler {
	return &PreciosHandler{svc: svc}
}

// Buscar godoc
// @Summary      Buscar precios pagados
// @Description  Busca en el historial de precios de las listas del usuario, del mas reciente al mas antiguo.
// @Tags         precios
// @Security     BearerAuth
// @Param        name   query    string  true  "Nombre o parte del nombre (sin distinguir mayusculas)"
// @Param        store  query    string  false "Tienda exacta (sin distinguir mayusculas)"
// @Success      200    {object} dto.BuscarPreciosResponse
// @Failure      400    {object} apierror.APIError
// @Failure      422    {object} apierror.ValidationError
// @Router       /v1/listas/precios/buscar [get]
func (h *PreciosHandler) Buscar(c *gin.Context) {
	userID, ok := usuarioActual(c)
	if !ok {
		return
	}
	var q dto.BuscarPreciosQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	resp, err := h.svc.BuscarPrecios(c.Request.Context(), userID, q)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
