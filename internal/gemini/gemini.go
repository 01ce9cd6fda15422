// Package gemini adapts the Gemini API to the generation contracts the exam
// pipeline consumes: a reusable uploaded-content handle, a free-text analysis
// call, and a schema-constrained structured generation call.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"examgen/internal/exam"
	"examgen/internal/models"
	"examgen/internal/prompts"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client wraps the Gemini client for one API key and model.
type Client struct {
	client    *genai.Client
	modelName string
}

// NewClient creates a Gemini client. The key and model come from explicit
// configuration; nothing is read from the environment here.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini API key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, modelName: modelName}, nil
}

// Close closes the underlying client.
func (c *Client) Close() {
	c.client.Close()
}

// UploadPDF uploads the file at path to the File API and returns a handle
// reusable across generation calls. The caller owns the handle's lifetime
// and should release it with DeleteFile when the request is done.
func (c *Client) UploadPDF(ctx context.Context, path string) (exam.SourceRef, error) {
	file, err := c.client.UploadFileFromPath(ctx, path, &genai.UploadFileOptions{MIMEType: "application/pdf"})
	if err != nil {
		return exam.SourceRef{}, fmt.Errorf("failed to upload file %s: %w", path, err)
	}
	log.Printf("INFO: Uploaded file %q as %s (state: %s)", path, file.URI, file.State)
	return exam.SourceRef{URI: file.URI, MIMEType: file.MIMEType, Name: file.Name}, nil
}

// DeleteFile releases an uploaded file. Failures are logged, not returned;
// uploads expire server-side anyway.
func (c *Client) DeleteFile(ctx context.Context, source exam.SourceRef) {
	if source.Name == "" {
		return
	}
	if err := c.client.DeleteFile(ctx, source.Name); err != nil {
		log.Printf("WARN: Failed to delete uploaded file %s: %v", source.Name, err)
	}
}

// Analyze runs the first stage: a free-text design brief describing the
// document's topics, level, and question strategy.
func (c *Client) Analyze(ctx context.Context, source exam.SourceRef, req exam.GenerationRequest) (string, error) {
	model := c.client.GenerativeModel(c.modelName)

	resp, err := model.GenerateContent(ctx,
		genai.FileData{MIMEType: source.MIMEType, URI: source.URI},
		genai.Text(prompts.Analyst(req)),
	)
	if err != nil {
		return "", fmt.Errorf("analysis call failed: %w", err)
	}

	brief := responseText(resp)
	if brief == "" {
		return "", fmt.Errorf("analysis returned no text")
	}
	return brief, nil
}

// GenerateBatch runs one structured generation call. It returns
// exam.ErrEmptyGenerationResult (wrapped) when the response carries no
// parseable worksheet, keeping that outcome distinct from transport errors,
// which propagate unmodified.
func (c *Client) GenerateBatch(ctx context.Context, batch exam.BatchRequest) (*models.Worksheet, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = worksheetSchema
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)

	resp, err := model.GenerateContent(ctx,
		genai.FileData{MIMEType: batch.Source.MIMEType, URI: batch.Source.URI},
		genai.Text(prompts.Architect(batch)),
	)
	if err != nil {
		return nil, fmt.Errorf("generation call failed: %w", err)
	}

	text := extractJSON(responseText(resp))
	if text == "" {
		return nil, fmt.Errorf("%w: response contained no JSON", exam.ErrEmptyGenerationResult)
	}

	var ws models.Worksheet
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&ws); err != nil {
		log.Printf("WARN: Unparseable generation payload: %v", err)
		return nil, fmt.Errorf("%w: %v", exam.ErrEmptyGenerationResult, err)
	}
	return &ws, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

// extractJSON strips markdown fences and surrounding prose the model
// sometimes wraps around the payload despite the JSON response MIME type.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// worksheetSchema constrains the structured generation output to the
// worksheet shape, mirroring models.Worksheet.
var worksheetSchema = &genai.Schema{
	Type:     genai.TypeObject,
	Required: []string{"title", "subject", "target_level", "items"},
	Properties: map[string]*genai.Schema{
		"title":        {Type: genai.TypeString},
		"subject":      {Type: genai.TypeString},
		"target_level": {Type: genai.TypeString},
		"items": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type:     genai.TypeObject,
				Required: []string{"id", "question", "type", "correct_answer"},
				Properties: map[string]*genai.Schema{
					"id":       {Type: genai.TypeInteger},
					"question": {Type: genai.TypeString},
					"type": {
						Type: genai.TypeString,
						Enum: []string{"multiple_choice", "true_false", "subjective"},
					},
					"options": {
						Type:     genai.TypeArray,
						Nullable: true,
						Items: &genai.Schema{
							Type:     genai.TypeObject,
							Required: []string{"label", "text"},
							Properties: map[string]*genai.Schema{
								"label": {Type: genai.TypeString},
								"text":  {Type: genai.TypeString},
							},
						},
					},
					"correct_answer": {Type: genai.TypeString},
					"explanation":    {Type: genai.TypeString, Nullable: true},
					"image_prompt":   {Type: genai.TypeString, Nullable: true},
				},
			},
		},
	},
}
