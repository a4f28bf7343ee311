package handler

import (
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"billdoc/internal/domain"
	"billdoc/internal/odt"
	"billdoc/internal/service"
)

// WarningsHeader carries non-fatal generation warnings on rendered documents,
// each one percent-encoded and separated by ", ".
const WarningsHeader = "X-Billdoc-Warnings"

// DocumentHandler handles notice generation endpoints.
type DocumentHandler struct {
	generationService service.GenerationService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(generationService service.GenerationService) *DocumentHandler {
	return &DocumentHandler{generationService: generationService}
}

// GenerateRequest is the body of POST /api/v1/documents.
type GenerateRequest struct {
	Data     domain.ExtractedBillData `json:"data"`
	Template string                   `json:"template"`
	Notify   []string                 `json:"notify" binding:"omitempty,dive,email"`
}

// Render handles POST /api/v1/documents/render
// The body is an extracted bill record; the generated .odt is returned directly.
// @Summary Render a notice
// @Description Fill the template with values derived from the bill record and stream the .odt back. Nothing is stored.
// @Tags documents
// @Accept json
// @Produce application/vnd.oasis.opendocument.text
// @Param template query string false "Template file name (defaults to the configured template)"
// @Param request body domain.ExtractedBillData true "Bill record"
// @Success 200 {file} file "Generated document"
// @Header 200 {string} X-Billdoc-Warnings "Percent-encoded warnings, comma separated"
// @Failure 400 {object} APIResponse "Invalid request or template name"
// @Failure 404 {object} APIResponse "Template not found"
// @Failure 422 {object} APIResponse "Template is not a usable document"
// @Router /documents/render [post]
func (h *DocumentHandler) Render(c *gin.Context) {
	var data domain.ExtractedBillData
	if err := c.ShouldBindJSON(&data); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	rendered, err := h.generationService.Render(c.Request.Context(), data, c.Query("template"))
	if err != nil {
		HandleError(c, err)
		return
	}

	if warnings := rendered.Result.Warnings; len(warnings) > 0 {
		encoded := make([]string, len(warnings))
		for i, w := range warnings {
			encoded[i] = url.PathEscape(w)
		}
		c.Header(WarningsHeader, strings.Join(encoded, ", "))
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rendered.FileName}))
	c.Data(http.StatusOK, odt.MimeType, rendered.Document)
}

// Generate handles POST /api/v1/documents
// @Summary Generate and store a notice
// @Description Generate the notice, upload it, record the generation and optionally email a download link
// @Tags documents
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Bill record, template and notice recipients"
// @Success 201 {object} APIResponse{data=service.GenerationResult} "Generation recorded"
// @Failure 400 {object} APIResponse "Invalid request or template name"
// @Failure 404 {object} APIResponse "Template not found"
// @Failure 422 {object} APIResponse "Template is not a usable document"
// @Failure 500 {object} APIResponse "Upload failed"
// @Router /documents [post]
func (h *DocumentHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.generationService.Generate(c.Request.Context(), service.GenerateInput{
		Data:         req.Data,
		TemplateName: req.Template,
		Notify:       req.Notify,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, result)
}

// FromBill handles POST /api/v1/documents/from-bill
// A scanned bill is extracted and the resulting notice generated in one request.
// @Summary Generate a notice from a scanned bill
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Scanned bill (PDF, JPG or PNG)"
// @Param template formData string false "Template file name"
// @Param notify formData []string false "Notice recipients" collectionFormat(multi)
// @Success 201 {object} APIResponse{data=service.GenerationResult} "Generation recorded"
// @Failure 400 {object} APIResponse "Missing file, unsupported type or invalid template name"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 422 {object} APIResponse "Template is not a usable document"
// @Failure 429 {object} APIResponse "All extraction providers rate limited"
// @Failure 502 {object} APIResponse "Extraction failed"
// @Router /documents/from-bill [post]
func (h *DocumentHandler) FromBill(c *gin.Context) {
	input, ok := formUpload(c)
	if !ok {
		return
	}
	defer input.close()

	result, err := h.generationService.ExtractAndGenerate(c.Request.Context(),
		input.BillUploadInput, c.PostForm("template"), c.PostFormArray("notify"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, result)
}
