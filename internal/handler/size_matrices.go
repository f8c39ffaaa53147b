package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/service"
)

type SizeMatricesHandler struct{ svc service.SizeMatrixService }

func NewSizeMatricesHandler(svc service.SizeMatrixService) *SizeMatricesHandler {
	return &SizeMatricesHandler{svc: svc}
}

// Crear godoc
// @Summary  Create a size matrix
// @Tags     size-matrices
// @Accept   json
// @Produce  json
// @Param    body body     dto.SizeMatrixRequest true "Size matrix"
// @Success  201  {object} dto.SizeMatrixResponse
// @Failure  400  {object} apierror.APIError
// @Router   /v1/size-matrices [post]
func (h *SizeMatricesHandler) Crear(c *gin.Context) {
	var req dto.SizeMatrixRequest
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

// Listar GET /v1/size-matrices
func (h *SizeMatricesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID GET /v1/size-matrices/:id
func (h *SizeMatricesHandler) ObtenerPorID(c *gin.Context) {
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

// Actualizar PUT /v1/size-matrices/:id
func (h *SizeMatricesHandler) Actualizar(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SizeMatrixRequest
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

// Eliminar DELETE /v1/size-matrices/:id
func (h *SizeMatricesHandler) Eliminar(c *gin.Context) {
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
