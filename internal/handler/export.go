package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
	"github.com/capitalize-ai/investor-finder/internal/middleware"
	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/internal/service"
)

// ExportHandler serves investor lists as CSV or XLSX downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Conversation handles GET /api/v1/export/{id}/{format}
func (h *ExportHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format, err := exportFormat(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	name, err := h.exports.Conversation(ctx, &buf, middleware.GetUserID(ctx), id, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, format, name, &buf)
}

// Direct handles POST /api/v1/export/{format}
func (h *ExportHandler) Direct(w http.ResponseWriter, r *http.Request) {
	format, err := exportFormat(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req model.ExportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	name, err := h.exports.Direct(&buf, &req, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, format, name, &buf)
}

func exportFormat(r *http.Request) (string, error) {
	switch f := chi.URLParam(r, "format"); f {
	case service.FormatCSV, service.FormatXLSX:
		return f, nil
	default:
		return "", apperr.Newf(apperr.KindValidation, "export", "unsupported export format %q", f)
	}
}

func writeFile(w http.ResponseWriter, format, name string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", service.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
