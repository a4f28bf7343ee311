package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billdoc/internal/service"
)

// BillHandler handles bill extraction endpoints.
type BillHandler struct {
	billService service.BillService
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(billService service.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

// Extract handles POST /api/v1/bills/extract
// @Summary Extract bill data
// @Description Read the amount, usages and service period from a scanned water bill (PDF, JPG or PNG)
// @Tags bills
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Scanned bill"
// @Success 200 {object} APIResponse{data=service.BillExtraction} "Extracted bill record"
// @Failure 400 {object} APIResponse "Missing file or unsupported type"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 429 {object} APIResponse "All extraction providers rate limited"
// @Failure 502 {object} APIResponse "Extraction failed or returned malformed output"
// @Router /bills/extract [post]
func (h *BillHandler) Extract(c *gin.Context) {
	input, ok := formUpload(c)
	if !ok {
		return
	}
	defer input.close()

	extraction, err := h.billService.Extract(c.Request.Context(), input.BillUploadInput)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, extraction)
}

type formFile struct {
	service.BillUploadInput
	close func()
}

// formUpload reads the multipart "file" field. On failure the error response is already written.
func formUpload(c *gin.Context) (*formFile, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return nil, false
	}
	return &formFile{
		BillUploadInput: service.BillUploadInput{
			FileName: header.Filename,
			Size:     header.Size,
			Body:     file,
		},
		close: func() { _ = file.Close() },
	}, true
}
