package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultModelName, cfg.ModelName)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultMaxBatch, cfg.MaxBatch)
	assert.Equal(t, DefaultBatchTimeout, cfg.BatchTimeout)
	assert.False(t, cfg.SkipFailedBatches)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "9000")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("EXAM_MAX_BATCH", "5")
	t.Setenv("EXAM_BATCH_TIMEOUT", "2m")
	t.Setenv("EXAM_SKIP_FAILED_BATCHES", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.ModelName)
	assert.Equal(t, 5, cfg.MaxBatch)
	assert.Equal(t, 2*time.Minute, cfg.BatchTimeout)
	assert.True(t, cfg.SkipFailedBatches)
}

func TestLoad_RejectsBadNumericValues(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	t.Setenv("EXAM_MAX_BATCH", "zero")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("EXAM_MAX_BATCH", "-1")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("EXAM_MAX_BATCH", "")
	t.Setenv("EXAM_BATCH_TIMEOUT", "soon")
	_, err = Load()
	assert.Error(t, err)
}
