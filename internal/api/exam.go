package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"examgen/internal/exam"
	"examgen/internal/upload"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateExamResponse is the JSON body returned by the full pipeline
// endpoint. Warning is set when fewer items were generated than requested.
type GenerateExamResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	Filename       string `json:"filename"`
	Brief          string `json:"brief"`
	DownloadURL    string `json:"download_url"`
	RequestedCount int    `json:"requested_count"`
	TotalGenerated int    `json:"total_generated"`
	BatchesPlanned int    `json:"batches_planned"`
	Warning        string `json:"warning,omitempty"`
}

// HandleGenerateExam runs the full pipeline: resolve the source PDF, upload
// it once, analyze, generate in batches, reindex, and render the output
// document.
func (h *Handler) HandleGenerateExam(c *gin.Context) {
	startTime := time.Now()
	ctx := c.Request.Context()

	req, err := generationRequest(c)
	if err != nil {
		h.handleError(c, http.StatusUnprocessableEntity, err.Error(), err)
		return
	}

	path, err := h.resolveSource(c)
	if err != nil {
		h.handleError(c, http.StatusUnprocessableEntity, err.Error(), err)
		return
	}
	defer upload.Remove(path)

	client, cleanup, err := h.clientFor(c)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Configuration error", err)
		return
	}
	defer cleanup()

	source, err := client.UploadPDF(ctx, path)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to upload source document", err)
		return
	}
	defer client.DeleteFile(ctx, source)

	brief, err := client.Analyze(ctx, source, req)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Content analysis failed", err)
		return
	}

	worksheet, err := h.orchestrator(client).Generate(ctx, req, source, brief)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, exam.ErrInvalidArgument) {
			status = http.StatusUnprocessableEntity
		}
		h.handleError(c, status, "Exam generation failed", err)
		return
	}
	final := exam.Reindex(*worksheet)

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

	batches, _ := exam.PlanBatches(req.QuestionCount, h.Config.MaxBatch)
	resp := GenerateExamResponse{
		Status:         "success",
		Message:        "Exam generated successfully",
		Filename:       filename,
		Brief:          brief,
		DownloadURL:    "/download/" + filename,
		RequestedCount: req.QuestionCount,
		TotalGenerated: len(final.Items),
		BatchesPlanned: len(batches),
	}
	if len(final.Items) < req.QuestionCount {
		resp.Warning = fmt.Sprintf(
			"Generated %d of %d questions. Partial success due to model output variability.",
			len(final.Items), req.QuestionCount)
	}

	log.Printf("INFO: Generated exam %q with %d/%d items in %s", final.Title, len(final.Items), req.QuestionCount, time.Since(startTime))
	c.JSON(http.StatusOK, resp)
}

// HandleAnalyze runs only the analysis stage and returns the design brief,
// letting a caller drive batch generation itself.
func (h *Handler) HandleAnalyze(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := generationRequest(c)
	if err != nil {
		h.handleError(c, http.StatusUnprocessableEntity, err.Error(), err)
		return
	}

	path, err := h.resolveSource(c)
	if err != nil {
		h.handleError(c, http.StatusUnprocessableEntity, err.Error(), err)
		return
	}
	defer upload.Remove(path)

	client, cleanup, err := h.clientFor(c)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Configuration error", err)
		return
	}
	defer cleanup()

	source, err := client.UploadPDF(ctx, path)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to upload source document", err)
		return
	}
	defer client.DeleteFile(ctx, source)

	brief, err := client.Analyze(ctx, source, req)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Content analysis failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"brief": brief})
}

// HandleGenerateBatch generates a single batch with caller-supplied brief,
// batch context, and avoid-topics, returning the batch worksheet and the
// normalized topics it introduced.
func (h *Handler) HandleGenerateBatch(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := generationRequest(c)
	if err != nil {
		h.handleError(c, http.StatusUnprocessableEntity, err.Error(), err)
		return
	}

	brief := c.PostForm("design_brief")
	if brief == "" {
		h.handleError(c, http.StatusUnprocessableEntity, "design_brief is required", fmt.Errorf("missing design_brief"))
		return
	}
	position := c.DefaultPostForm("batch_info", "Batch 1/1")

	var avoid []string
	for _, topic := range strings.Split(c.PostForm("avoid_topics"), ",") {
		if normalized := exam.NormalizeTopic(topic); normalized != "" {
			avoid = append(avoid, normalized)
		}
	}

	path, err := h.resolveSource(c)
	if err != nil {
		h.handleError(c, http.StatusUnprocessableEntity, err.Error(), err)
		return
	}
	defer upload.Remove(path)

	client, cleanup, err := h.clientFor(c)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Configuration error", err)
		return
	}
	defer cleanup()

	source, err := client.UploadPDF(ctx, path)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to upload source document", err)
		return
	}
	defer client.DeleteFile(ctx, source)

	worksheet, err := client.GenerateBatch(ctx, exam.BatchRequest{
		Position:    position,
		Size:        req.QuestionCount,
		AvoidTopics: exam.NewTopicSet(avoid...).Sorted(),
		Brief:       brief,
		Source:      source,
		Request:     req,
	})
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Batch generation failed", err)
		return
	}

	newTopics := make([]string, 0, len(worksheet.Items))
	for _, item := range worksheet.Items {
		newTopics = append(newTopics, exam.NormalizeTopic(item.Question))
	}

	c.JSON(http.StatusOK, gin.H{"worksheet": worksheet, "new_topics": newTopics})
}

// outputPath places filename under the configured transient output dir,
// creating the dir on first use.
func (h *Handler) outputPath(filename string) (string, error) {
	if err := os.MkdirAll(h.Config.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", h.Config.OutputDir, err)
	}
	return filepath.Join(h.Config.OutputDir, filename), nil
}
