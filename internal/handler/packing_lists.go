package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/service"
)

type PackingListsHandler struct{ svc service.PackingListService }

func NewPackingListsHandler(svc service.PackingListService) *PackingListsHandler {
	return &PackingListsHandler{svc: svc}
}

// Crear godoc
// @Summary      Save a packing list
// @Description  Entries run through the allocation submit gate. Any invalid row rejects the whole list with per-row errors.
// @Tags         packing-lists
// @Accept       json
// @Produce      json
// @Param        body body     dto.PackingListRequest true "Packing list"
// @Success      201  {object} dto.PackingListResponse
// @Failure      400  {object} apierror.APIError
// @Failure      422  {object} apierror.RowsError
// @Router       /v1/packing-lists [post]
func (h *PackingListsHandler) Crear(c *gin.Context) {
	var req dto.PackingListRequest
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
// @Summary  List packing lists, newest first
// @Tags     packing-lists
// @Produce  json
// @Param    q              query    string false "PO or model"
// @Param    client_id      query    string false "Client id"
// @Param    size_matrix_id query    string false "Size matrix id"
// @Success  200            {array}  dto.PackingListResponse
// @Router   /v1/packing-lists [get]
func (h *PackingListsHandler) Listar(c *gin.Context) {
	f := dto.PackingListFilter{Q: c.Query("q")}
	var ok bool
	if f.ClientID, ok = queryID(c, "client_id"); !ok {
		return
	}
	if f.SizeMatrixID, ok = queryID(c, "size_matrix_id"); !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID GET /v1/packing-lists/:id
func (h *PackingListsHandler) ObtenerPorID(c *gin.Context) {
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

// Actualizar PUT /v1/packing-lists/:id
func (h *PackingListsHandler) Actualizar(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.PackingListRequest
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

// Eliminar DELETE /v1/packing-lists/:id
func (h *PackingListsHandler) Eliminar(c *gin.Context) {
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
