package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitorf997/packing-creator/internal/dto"
	"github.com/vitorf997/packing-creator/internal/service"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type LabelsHandler struct{ svc service.LabelService }

func NewLabelsHandler(svc service.LabelService) *LabelsHandler {
	return &LabelsHandler{svc: svc}
}

// Sheet godoc
// @Summary  Derived box labels of a packing list
// @Tags     labels
// @Produce  json
// @Param    id  path     string true "Packing list id"
// @Success  200 {object} labels.Sheet
// @Failure  404 {object} apierror.APIError
// @Router   /v1/packing-lists/{id}/labels [get]
func (h *LabelsHandler) Sheet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sheet, err := h.svc.Sheet(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

// PDF godoc
// @Summary  Box labels as an A6 landscape PDF, one label per page
// @Tags     labels
// @Produce  application/pdf
// @Param    id  path string true "Packing list id"
// @Success  200 {file} binary
// @Router   /v1/packing-lists/{id}/labels.pdf [get]
func (h *LabelsHandler) PDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.PDF(c.Request.Context(), id, &buf); err != nil {
		writeError(c, err)
		return
	}
	attachment(c, fmt.Sprintf("labels-%s.pdf", id), mimePDF, buf.Bytes())
}

// XLSX godoc
// @Summary  Allocation and per-box labels as a spreadsheet
// @Tags     labels
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param    id  path string true "Packing list id"
// @Success  200 {file} binary
// @Router   /v1/packing-lists/{id}/export.xlsx [get]
func (h *LabelsHandler) XLSX(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.XLSX(c.Request.Context(), id, &buf); err != nil {
		writeError(c, err)
		return
	}
	attachment(c, fmt.Sprintf("packing-%s.xlsx", id), mimeXLSX, buf.Bytes())
}

// EncolarTrabajo godoc
// @Summary      Render labels in the background
// @Description  The PDF is written to the label storage path. With an email the file is mailed once rendered.
// @Tags         labels
// @Accept       json
// @Produce      json
// @Param        id   path     string              true  "Packing list id"
// @Param        body body     dto.LabelJobRequest false "Delivery"
// @Success      202  {object} dto.LabelJobResponse
// @Failure      503  {object} apierror.APIError
// @Router       /v1/packing-lists/{id}/labels/jobs [post]
func (h *LabelsHandler) EncolarTrabajo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.LabelJobRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EncolarTrabajo(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// EstadoTrabajo godoc
// @Summary  Status of a label render job
// @Tags     labels
// @Produce  json
// @Param    job_id path     string true "Job id"
// @Success  200    {object} dto.LabelJobResponse
// @Failure  404    {object} apierror.APIError
// @Router   /v1/label-jobs/{job_id} [get]
func (h *LabelsHandler) EstadoTrabajo(c *gin.Context) {
	resp, err := h.svc.EstadoTrabajo(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func attachment(c *gin.Context, name, mime string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, mime, data)
}
