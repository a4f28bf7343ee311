package handler

import (
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"billdoc/internal/csvexport"
	"billdoc/internal/domain"
	"billdoc/internal/service"
	"billdoc/internal/xlsxexport"
)

// GenerationHandler handles generation history endpoints.
type GenerationHandler struct {
	generationService service.GenerationService
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generationService service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// GenerationDetail is a generation record with a fresh download link.
type GenerationDetail struct {
	*domain.Generation
	DownloadURL string `json:"download_url,omitempty"`
}

// List handles GET /api/v1/generations
// @Summary List generations
// @Tags generations
// @Produce json
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Limit (max 100)" default(20)
// @Success 200 {object} APIResponse{data=[]domain.Generation,meta=PagMeta} "Generations, newest first"
// @Failure 500 {object} APIResponse "Internal error"
// @Router /generations [get]
func (h *GenerationHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	gens, total, err := h.generationService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	if gens == nil {
		gens = []domain.Generation{}
	}
	RespondPaginated(c, gens, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/generations/:id
// @Summary Get a generation
// @Description Returns the generation record and, for successful generations, a fresh presigned download URL
// @Tags generations
// @Produce json
// @Param id path string true "Generation ID (UUID)"
// @Success 200 {object} APIResponse{data=GenerationDetail} "Generation"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 404 {object} APIResponse "Generation not found"
// @Router /generations/{id} [get]
func (h *GenerationHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid generation ID")
		return
	}

	gen, err := h.generationService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	detail := GenerationDetail{Generation: gen}
	if gen.Status == domain.GenerationStatusSucceeded {
		url, urlErr := h.generationService.GetDownloadURL(c.Request.Context(), id)
		if urlErr != nil {
			_ = c.Error(urlErr)
		}
		detail.DownloadURL = url
	}
	RespondOK(c, detail)
}

// Export handles GET /api/v1/generations/export?format=xlsx|csv
// @Summary Export generation history
// @Tags generations
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Param format query string false "xlsx or csv" Enums(xlsx, csv) default(xlsx)
// @Success 200 {file} file "Generation report"
// @Failure 400 {object} APIResponse "Unknown format"
// @Failure 500 {object} APIResponse "Export failed"
// @Router /generations/export [get]
func (h *GenerationHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatXLSX)

	var contentType string
	switch format {
	case service.ExportFormatXLSX:
		contentType = xlsxexport.ContentType
	case service.ExportFormatCSV:
		contentType = "text/csv; charset=utf-8"
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be xlsx or csv")
		return
	}

	filename := csvexport.BuildFilename("부과내역", format, time.Now())
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Status(http.StatusOK)

	if err := h.generationService.Export(c.Request.Context(), c.Writer, format); err != nil {
		if !c.Writer.Written() {
			c.Header("Content-Type", "")
			c.Header("Content-Disposition", "")
			HandleError(c, err)
			return
		}
		// Headers are already sent; the client gets a truncated body.
		_ = c.Error(err)
	}
}
