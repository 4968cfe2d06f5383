package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/transfer"
	"github.com/jsamuelsen/quote-catalog/internal/app"
)

// importFileField is the multipart field carrying an uploaded import file.
const importFileField = "file"

// TransferHandler handles bulk import and export of the catalog.
type TransferHandler struct {
	service *app.TransferService
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(service *app.TransferService) *TransferHandler {
	return &TransferHandler{
		service: service,
	}
}

// Import handles POST /api/v1/admin/import
// The file is either the raw request body or a multipart "file" field. The
// format comes from the format query parameter, else the upload's file
// extension or content type, else JSON.
//
// @Summary Import quotes, authors and topics
// @Tags admin
// @Accept json,text/csv,multipart/form-data
// @Produce json
// @Param format query string false "csv or json"
// @Param dryRun query bool false "Validate without writing"
// @Param atomic query bool false "Undo every write when any record fails"
// @Success 200 {object} dto.ImportReportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/admin/import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	var req dto.TransferRequest
	if !bindQuery(c, &req) {
		return
	}

	body, hint, closeFn, err := importSource(c)
	if err != nil {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}
	defer closeFn()

	raw := req.Format
	if raw == "" {
		raw = hint
	}

	format, err := transfer.ParseFormat(raw)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	batch, err := transfer.Decode(format, body)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	report, err := h.service.Import(c.Request.Context(), batch, app.ImportOptions{
		Format: string(format),
		DryRun: req.DryRun,
		Atomic: req.Atomic,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromImportReport(report))
}

// importSource returns the upload reader and a format hint derived from the
// upload itself.
func importSource(c *gin.Context) (io.Reader, string, func(), error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile(importFileField)
		if err != nil {
			return nil, "", nil, err
		}

		f, err := header.Open()
		if err != nil {
			return nil, "", nil, err
		}

		var hint string
		if ext := strings.ToLower(filepath.Ext(header.Filename)); ext == ".csv" || ext == ".json" {
			hint = ext[1:]
		}

		return f, hint, func() { _ = f.Close() }, nil
	}

	var hint string
	if c.ContentType() == "text/csv" {
		hint = string(transfer.FormatCSV)
	}

	return c.Request.Body, hint, func() {}, nil
}

// Export handles GET /api/v1/admin/export
// The whole catalog is returned as a file download.
//
// @Summary Export the catalog
// @Tags admin
// @Produce json,text/csv
// @Param format query string false "csv or json"
// @Success 200 {file} file
// @Router /api/v1/admin/export [get]
func (h *TransferHandler) Export(c *gin.Context) {
	var req dto.TransferRequest
	if !bindQuery(c, &req) {
		return
	}

	format, err := transfer.ParseFormat(req.Format)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	data, err := h.service.Export(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	// Encode fully before writing so a failure can still produce an error envelope.
	var buf bytes.Buffer
	if err := transfer.Encode(format, &buf, data); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// RegisterTransferRoutes registers import and export on the admin group.
func (h *TransferHandler) RegisterTransferRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.Import)
	rg.GET("/export", h.Export)
}
