package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vitorf997/packing-creator/internal/apierror"
	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/service"
)

type LabelTemplatesHandler struct{ svc service.LabelTemplateService }

func NewLabelTemplatesHandler(svc service.LabelTemplateService) *LabelTemplatesHandler {
	return &LabelTemplatesHandler{svc: svc}
}

// Crear godoc
// @Summary      Create a label template
// @Description  Key is lower-cased and unique. A default template is global and clears the default flag on every other template.
// @Tags         label-templates
// @Accept       json
// @Produce      json
// @Param        body body     dto.LabelTemplateRequest true "Template"
// @Success      201  {object} dto.LabelTemplateResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/label-templates [post]
func (h *LabelTemplatesHandler) Crear(c *gin.Context) {
	var req dto.LabelTemplateRequest
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
// @Summary  List label templates
// @Tags     label-templates
// @Produce  json
// @Param    q         query    string false "Name or key"
// @Param    client_id query    string false "Templates usable by this client"
// @Param    active    query    bool   false "Only active or inactive templates"
// @Success  200       {array}  dto.LabelTemplateResponse
// @Router   /v1/label-templates [get]
func (h *LabelTemplatesHandler) Listar(c *gin.Context) {
	f := dto.LabelTemplateFilter{Q: c.Query("q")}
	clientID, ok := queryID(c, "client_id")
	if !ok {
		return
	}
	f.ClientID = clientID
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid active"))
			return
		}
		f.Active = &active
	}
	resp, err := h.svc.Listar(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID GET /v1/label-templates/:id
func (h *LabelTemplatesHandler) ObtenerPorID(c *gin.Context) {
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

// Actualizar PUT /v1/label-templates/:id
func (h *LabelTemplatesHandler) Actualizar(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.LabelTemplateRequest
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

// Eliminar DELETE /v1/label-templates/:id
func (h *LabelTemplatesHandler) Eliminar(c *gin.Context) {
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

// Resolve godoc
// @Summary  Layout a client prints with
// @Tags     label-templates
// @Produce  json
// @Param    client_id query    string false "Client id; omitted resolves without a client"
// @Success  200       {object} labels.Layout
// @Router   /v1/label-templates/resolve [get]
func (h *LabelTemplatesHandler) Resolve(c *gin.Context) {
	clientID, ok := queryID(c, "client_id")
	if !ok {
		return
	}
	id := uuid.Nil
	if clientID != nil {
		id = *clientID
	}
	layout, err := h.svc.ResolverParaCliente(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, layout)
}
