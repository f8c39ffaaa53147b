package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/service"
)

type ClientsHandler struct{ svc service.ClientService }

func NewClientsHandler(svc service.ClientService) *ClientsHandler {
	return &ClientsHandler{svc: svc}
}

// Crear godoc
// @Summary      Create a client
// @Description  Label fields are normalized; an assigned template must be active and global.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body body     dto.ClientRequest true "Client"
// @Success      201  {object} dto.ClientResponse
// @Failure      400  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/clients [post]
func (h *ClientsHandler) Crear(c *gin.Context) {
	var req dto.ClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary  List clients
// @Tags     clients
// @Produce  json
// @Param    q   query    string false "Name, code or contact"
// @Success  200 {array}  dto.ClientResponse
// @Router   /v1/clients [get]
func (h *ClientsHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID GET /v1/clients/:id
func (h *ClientsHandler) ObtenerPorID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary  Replace a client
// @Tags     clients
// @Accept   json
// @Produce  json
// @Param    id   path     string            true "Client id"
// @Param    body body     dto.ClientRequest true "Client"
// @Success  200  {object} dto.ClientResponse
// @Failure  404  {object} apierror.APIError
// @Router   /v1/clients/{id} [put]
func (h *ClientsHandler) Actualizar(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar DELETE /v1/clients/:id
func (h *ClientsHandler) Eliminar(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LabelFields GET /v1/clients/:id/label-fields
func (h *ClientsHandler) LabelFields(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	defs, err := h.svc.LabelFields(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, defs)
}
