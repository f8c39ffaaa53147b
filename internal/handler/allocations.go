package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitorf997/packing-creator/internal/apierror"
	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/packing"
	"github.com/vitorf997/packing-creator/internal/service"
)

// AllocationsHandler drives allocation sessions. Every edit answers with the
// whole session so the client can redraw rows and their validity.
type AllocationsHandler struct{ svc service.AllocationService }

func NewAllocationsHandler(svc service.AllocationService) *AllocationsHandler {
	return &AllocationsHandler{svc: svc}
}

// CrearSesion godoc
// @Summary      Open an allocation session
// @Description  Seeds from a stored packing list when packing_list_id is set, otherwise from the given sizes, items and entries. An empty allocation starts with one blank row.
// @Tags         allocations
// @Accept       json
// @Produce      json
// @Param        body body     dto.CrearSesionRequest true "Session seed"
// @Success      201  {object} dto.SessionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/allocations [post]
func (h *AllocationsHandler) CrearSesion(c *gin.Context) {
	var req dto.CrearSesionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearSesion(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ObtenerSesion GET /v1/allocations/:id
func (h *AllocationsHandler) ObtenerSesion(c *gin.Context) {
	resp, err := h.svc.ObtenerSesion(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarSesion DELETE /v1/allocations/:id
func (h *AllocationsHandler) EliminarSesion(c *gin.Context) {
	if err := h.svc.EliminarSesion(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetField godoc
// @Summary      Edit a numeric row field
// @Description  The raw text is kept as typed; non-digits read as 0. Editing the units per box clears both remainder fields.
// @Tags         allocations
// @Accept       json
// @Produce      json
// @Param        id     path     string              true "Session id"
// @Param        row_id path     string              true "Row id"
// @Param        body   body     dto.SetFieldRequest true "Field and value"
// @Success      200    {object} dto.SessionResponse
// @Failure      404    {object} apierror.APIError
// @Router       /v1/allocations/{id}/rows/{row_id} [patch]
func (h *AllocationsHandler) SetField(c *gin.Context) {
	var req dto.SetFieldRequest
	if !bindAndValidate(c, &req) {
		return
	}
	field, ok := packing.ParseField(req.Field)
	if !ok {
		c.JSON(http.StatusBadRequest, apierror.New("unknown field "+req.Field))
		return
	}
	h.apply(c, packing.Event{
		Kind:  packing.EventSetField,
		RowID: c.Param("row_id"),
		Field: field,
		Raw:   req.Value,
	})
}

// SetItemField PATCH /v1/allocations/:id/rows/:row_id/item-fields
func (h *AllocationsHandler) SetItemField(c *gin.Context) {
	var req dto.SetItemFieldRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.apply(c, packing.Event{
		Kind:    packing.EventSetItemField,
		RowID:   c.Param("row_id"),
		FieldID: req.FieldID,
		Value:   req.Value,
	})
}

// AddRow POST /v1/allocations/:id/rows
func (h *AllocationsHandler) AddRow(c *gin.Context) {
	var req dto.AddRowRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.apply(c, packing.Event{Kind: packing.EventAddRow, ItemID: req.ItemID, Size: req.Size})
}

// RemoveRow DELETE /v1/allocations/:id/rows/:row_id
func (h *AllocationsHandler) RemoveRow(c *gin.Context) {
	h.apply(c, packing.Event{Kind: packing.EventRemoveRow, RowID: c.Param("row_id")})
}

func (h *AllocationsHandler) apply(c *gin.Context, ev packing.Event) {
	resp, err := h.svc.Aplicar(c.Request.Context(), c.Param("id"), ev)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Validar godoc
// @Summary  Per-row validation messages
// @Tags     allocations
// @Produce  json
// @Param    id  path     string true "Session id"
// @Success  200 {object} dto.ValidateResponse
// @Router   /v1/allocations/{id}/validate [post]
func (h *AllocationsHandler) Validar(c *gin.Context) {
	resp, err := h.svc.Validar(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirmar godoc
// @Summary      Submit the allocation
// @Description  Returns the normalized entries, or 422 with every invalid row when any row fails.
// @Tags         allocations
// @Produce      json
// @Param        id  path     string true "Session id"
// @Success      200 {object} dto.SubmitResponse
// @Failure      422 {object} apierror.RowsError
// @Router       /v1/allocations/{id}/submit [post]
func (h *AllocationsHandler) Confirmar(c *gin.Context) {
	resp, err := h.svc.Confirmar(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
