package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredPostgres(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "starmatch")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "starmatch")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredPostgres(t)
	t.Setenv(ConfigPathEnv, "")

	c, err := Load(logger.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Http.Port)
	assert.Equal(t, []string{"*"}, c.Http.AllowedOrigins)
	assert.Equal(t, "localhost", c.Db.Host)
	assert.False(t, c.Qdrant.Enabled)
	assert.Equal(t, uint64(1024), c.Qdrant.VectorSize)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, 24*time.Hour, c.Redis.EmbeddingTTL)
	assert.Equal(t, ModelSourceMinio, c.Models.Source)
	assert.Equal(t, "brand_encoder.json", c.Models.BrandEncoderName)
	assert.Equal(t, "voyage-3-large", c.Embedding.Model)
	assert.Equal(t, "document", c.Embedding.InputType)
	assert.Equal(t, "gpt-4o-mini", c.LLM.Model)
	assert.Equal(t, 0.7, c.LLM.Temperature)
	assert.Equal(t, 220, c.LLM.MaxTokens)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoad_MissingPostgres(t *testing.T) {
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("POSTGRES_DB", "")

	_, err := Load(logger.NewNopLogger())
	assert.Error(t, err)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"http_port: \"9090\"\n"+
			"qdrant_host: qdrant\n"+
			"llm_temperature: 0.2\n"+
			"http_allowed_origins: \"https://a.example, https://b.example\"\n"+
			"model_source: local\n",
	), 0o600))

	setRequiredPostgres(t)
	t.Setenv(ConfigPathEnv, path)
	t.Setenv("HTTP_PORT", "7070")

	c, err := Load(logger.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, "7070", c.Http.Port, "environment must override the file")
	assert.True(t, c.Qdrant.Enabled)
	assert.Equal(t, "qdrant", c.Qdrant.Host)
	assert.Equal(t, 0.2, c.LLM.Temperature)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Http.AllowedOrigins)
	assert.Equal(t, ModelSourceLocal, c.Models.Source)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"HTTP_READ_TIMEOUT":       "soon",
		"QDRANT_GRPC_PORT":        "port",
		"VECTOR_SIZE":             "0",
		"EMBEDDING_CACHE_ENABLED": "maybe",
		"LLM_TEMPERATURE":         "warm",
		"MODEL_SOURCE":            "s3",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			setRequiredPostgres(t)
			t.Setenv(ConfigPathEnv, "")
			t.Setenv(key, value)

			_, err := Load(logger.NewNopLogger())
			assert.Error(t, err)
		})
	}
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("SOME_INT", "12abc")
	src, err := newSource("")
	require.NoError(t, err)

	v, err := src.parseIntEnv("SOME_INT", 7)
	assert.ErrorIs(t, err, e.ErrIncorrectEnvVariable)
	assert.Equal(t, 7, v)

	v, err = src.parseIntEnv("UNSET_INT_FOR_TEST", 7)
	assert.NoError(t, err)
	assert.Equal(t, 7, v)
}
