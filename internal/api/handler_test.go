package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"examgen/internal/config"
	"examgen/internal/docgen"
	"examgen/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testHandler(t *testing.T) *Handler {
	t.Helper()
	cfg := &config.Config{
		Port:          "8080",
		ModelName:     config.DefaultModelName,
		AllowedOrigin: "http://localhost:5173",
		OutputDir:     t.TempDir(),
		MaxBatch:      config.DefaultMaxBatch,
	}
	return NewHandler(cfg, nil, docgen.NewRenderer(docgen.DefaultConfig()))
}

func testRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	h := testHandler(t)
	router := gin.New()
	SetupRoutes(router, h)
	return router, h
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestGenerateExam_RejectsInvalidForm(t *testing.T) {
	router, _ := testRouter(t)

	cases := []struct {
		name string
		form url.Values
	}{
		{"count not allowed", url.Values{"question_count": {"15"}}},
		{"count not a number", url.Values{"question_count": {"ten"}}},
		{"unknown language", url.Values{"language": {"Klingon"}}},
		{"unknown exam type", url.Values{"exam_type": {"essay"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postForm(router, "/api/exams/generate", tc.form)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestGenerateExam_RequiresSourceDocument(t *testing.T) {
	router, _ := testRouter(t)

	w := postForm(router, "/api/exams/generate", url.Values{"question_count": {"10"}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "file or file_url is required")
}

func TestGenerateBatch_RequiresDesignBrief(t *testing.T) {
	router, _ := testRouter(t)

	w := postForm(router, "/api/exams/batch", url.Values{"question_count": {"10"}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "design_brief is required")
}

func TestAnalyze_RequiresSourceDocument(t *testing.T) {
	router, _ := testRouter(t)

	w := postForm(router, "/api/analyze", url.Values{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRenderWorksheet(t *testing.T) {
	router, _ := testRouter(t)

	payload := RenderWorksheetRequest{
		Worksheet: models.Worksheet{
			Title:       "Render Test",
			Subject:     "Biology",
			TargetLevel: "Grade 10",
			Items: []models.ExamItem{
				{
					ID:            5,
					Question:      "Explain osmosis.",
					Type:          models.QuestionSubjective,
					CorrectAnswer: "Diffusion of water across a membrane.",
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/exams/render", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "worksheet_")
	assert.NotZero(t, w.Body.Len())
}

func TestRenderWorksheet_InvalidPayload(t *testing.T) {
	router, _ := testRouter(t)

	for _, body := range []string{"{not json", "{}"} {
		req := httptest.NewRequest(http.MethodPost, "/api/exams/render", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	}
}

func TestHandleDownload_RejectsTraversal(t *testing.T) {
	h := testHandler(t)

	for _, filename := range []string{"", ".", "..", "../secret", "a/b.pdf"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/download/x", nil)
		c.Params = gin.Params{{Key: "filename", Value: filename}}

		h.HandleDownload(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, "filename %q", filename)
	}
}

func TestHandleDownload_MissingFile(t *testing.T) {
	h := testHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/download/missing.pdf", nil)
	c.Params = gin.Params{{Key: "filename", Value: "missing.pdf"}}

	h.HandleDownload(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleDownload_ServesExistingFile(t *testing.T) {
	h := testHandler(t)
	content := []byte("%PDF-1.4 fake")
	require.NoError(t, os.WriteFile(filepath.Join(h.Config.OutputDir, "ready.pdf"), content, 0644))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/download/ready.pdf", nil)
	c.Params = gin.Params{{Key: "filename", Value: "ready.pdf"}}

	h.HandleDownload(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ready.pdf")
	assert.Equal(t, content, w.Body.Bytes())
}

func TestCORSMiddleware_PreflightAndHeaders(t *testing.T) {
	router, h := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/exams/generate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, h.Config.AllowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), apiKeyHeader)
}
