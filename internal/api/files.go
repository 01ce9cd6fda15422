package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"examgen/internal/exam"
	"examgen/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RenderWorksheetRequest is the JSON payload of the render endpoint.
type RenderWorksheetRequest struct {
	Worksheet models.Worksheet `json:"worksheet" binding:"required"`
}

// HandleRenderWorksheet renders a caller-supplied worksheet and streams the
// resulting document. Items are reindexed 1..N before rendering so the
// document always carries final sequential numbering.
func (h *Handler) HandleRenderWorksheet(c *gin.Context) {
	var req RenderWorksheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusUnprocessableEntity, "Invalid worksheet payload", err)
		return
	}

	final := exam.Reindex(req.Worksheet)

	filename := fmt.Sprintf("worksheet_%.8s.pdf", uuid.NewString())
	outputPath, err := h.outputPath(filename)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to prepare output directory", err)
		return
	}
	if err := h.Renderer.Render(final, outputPath); err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to render output document", err)
		return
	}

	c.FileAttachment(outputPath, filename)
}

// HandleDownload serves a previously generated output file.
func (h *Handler) HandleDownload(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" || filename == "." || filename == ".." || filename != filepath.Base(filename) {
		h.handleError(c, http.StatusBadRequest, "Invalid filename", fmt.Errorf("path traversal attempt: %q", filename))
		return
	}

	path := filepath.Join(h.Config.OutputDir, filename)
	if _, err := os.Stat(path); err != nil {
		h.handleError(c, http.StatusNotFound, "File not found", err)
		return
	}

	c.FileAttachment(path, filename)
}
