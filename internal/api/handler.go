package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"examgen/internal/config"
	"examgen/internal/docgen"
	"examgen/internal/exam"
	"examgen/internal/gemini"
	"examgen/internal/models"
	"examgen/internal/upload"

	"github.com/gin-gonic/gin"
)

// apiKeyHeader lets a caller supply their own Gemini key per request instead
// of using the server's configured one.
const apiKeyHeader = "X-Gemini-API-Key"

// Form defaults mirror the service's primary audience.
const (
	defaultInstruction = "ขอข้อสอบแนววิเคราะห์"
	defaultLanguage    = "ไทย"
)

var (
	allowedCounts    = map[int]bool{10: true, 20: true, 30: true, 50: true}
	allowedLanguages = map[string]bool{"ไทย": true, "English": true}
)

// Handler contains the API handlers' dependencies.
type Handler struct {
	Config   *config.Config
	Gemini   *gemini.Client
	Renderer *docgen.Renderer
}

// NewHandler creates a new Handler.
func NewHandler(cfg *config.Config, client *gemini.Client, renderer *docgen.Renderer) *Handler {
	return &Handler{Config: cfg, Gemini: client, Renderer: renderer}
}

// handleError logs the internal error and sends a JSON error response.
func (h *Handler) handleError(c *gin.Context, status int, message string, err error) {
	log.Printf("ERROR: %s: %v", message, err)
	c.JSON(status, models.ErrorResponse{Error: message})
}

// clientFor returns the Gemini client for this request: a fresh one when the
// caller supplied an API key header, otherwise the shared client. cleanup
// must be called when the request is done.
func (h *Handler) clientFor(c *gin.Context) (*gemini.Client, func(), error) {
	key := c.GetHeader(apiKeyHeader)
	if key == "" {
		return h.Gemini, func() {}, nil
	}
	client, err := gemini.NewClient(c.Request.Context(), key, h.Config.ModelName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create client for request-scoped API key: %w", err)
	}
	return client, client.Close, nil
}

// generationRequest validates the shared form fields and builds the
// immutable request for this run.
func generationRequest(c *gin.Context) (exam.GenerationRequest, error) {
	instruction := c.DefaultPostForm("instruction", defaultInstruction)
	language := c.DefaultPostForm("language", defaultLanguage)
	examType := c.DefaultPostForm("exam_type", string(exam.ExamTypeAuto))
	countStr := c.DefaultPostForm("question_count", "10")

	count, err := strconv.Atoi(countStr)
	if err != nil {
		return exam.GenerationRequest{}, fmt.Errorf("invalid question_count %q", countStr)
	}
	if !allowedCounts[count] {
		return exam.GenerationRequest{}, fmt.Errorf("invalid question_count. Allowed: 10, 20, 30, 50")
	}
	if !allowedLanguages[language] {
		return exam.GenerationRequest{}, fmt.Errorf("invalid language. Allowed: ไทย, English")
	}
	if !exam.ValidExamType(examType) {
		return exam.GenerationRequest{}, fmt.Errorf("invalid exam_type. Allowed: auto, multiple_choice, true_false, subjective")
	}

	return exam.GenerationRequest{
		Instruction:   instruction,
		QuestionCount: count,
		Language:      language,
		ExamType:      exam.ExamType(examType),
	}, nil
}

// resolveSource saves the request's PDF (multipart file or remote URL) to a
// temp file and verifies it parses as a PDF. The caller must remove the
// returned path.
func (h *Handler) resolveSource(c *gin.Context) (string, error) {
	var path string
	if header, err := c.FormFile("file"); err == nil {
		path, err = upload.FromMultipart(header)
		if err != nil {
			return "", err
		}
	} else if fileURL := c.PostForm("file_url"); fileURL != "" {
		var err error
		path, err = upload.FetchURL(c.Request.Context(), fileURL)
		if err != nil {
			return "", err
		}
	} else {
		return "", fmt.Errorf("file or file_url is required")
	}

	pages, err := upload.PageCount(path)
	if err != nil {
		upload.Remove(path)
		return "", err
	}
	log.Printf("INFO: Accepted source PDF %s (%d pages)", path, pages)
	return path, nil
}

func (h *Handler) orchestrator(client *gemini.Client) *exam.Orchestrator {
	return exam.NewOrchestrator(client, exam.Options{
		MaxBatch:          h.Config.MaxBatch,
		BatchTimeout:      h.Config.BatchTimeout,
		SkipFailedBatches: h.Config.SkipFailedBatches,
	})
}

// HandleHealth is the liveness endpoint.
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "examgen"})
}
