// Package config builds the explicit configuration object the rest of the
// service is constructed with. Environment reads happen here and only here;
// core logic receives values, never looks them up.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults.
const (
	DefaultModelName    = "gemini-2.0-flash"
	DefaultPort         = "8080"
	DefaultOutputDir    = "./output"
	DefaultMaxBatch     = 10
	DefaultBatchTimeout = 15 * time.Minute
)

// Config carries everything the server needs, read once at startup.
type Config struct {
	Port          string
	GeminiAPIKey  string
	ModelName     string
	AllowedOrigin string
	OutputDir     string

	// MaxBatch caps the question count per generation call.
	MaxBatch int
	// BatchTimeout bounds each outbound generation call.
	BatchTimeout time.Duration
	// SkipFailedBatches makes the orchestrator tolerate individual batch
	// failures and aggregate what survived.
	SkipFailedBatches bool

	// PDF rendering fonts; FontPath is a UTF-8 TTF needed for non-Latin
	// output languages.
	FontFamily string
	FontPath   string
}

// Load reads configuration from the environment. The API key is required;
// everything else has a default.
func Load() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	cfg := &Config{
		Port:              envOr("PORT", DefaultPort),
		GeminiAPIKey:      apiKey,
		ModelName:         envOr("GEMINI_MODEL", DefaultModelName),
		AllowedOrigin:     envOr("FRONTEND_URL", "http://localhost:5173"),
		OutputDir:         envOr("EXAM_OUTPUT_DIR", DefaultOutputDir),
		MaxBatch:          DefaultMaxBatch,
		BatchTimeout:      DefaultBatchTimeout,
		SkipFailedBatches: os.Getenv("EXAM_SKIP_FAILED_BATCHES") == "true",
		FontFamily:        envOr("EXAM_PDF_FONT_FAMILY", "Helvetica"),
		FontPath:          os.Getenv("EXAM_PDF_FONT_PATH"),
	}

	if v := os.Getenv("EXAM_MAX_BATCH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid EXAM_MAX_BATCH %q", v)
		}
		cfg.MaxBatch = n
	}
	if v := os.Getenv("EXAM_BATCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid EXAM_BATCH_TIMEOUT %q", v)
		}
		cfg.BatchTimeout = d
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
