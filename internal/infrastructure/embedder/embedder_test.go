package embedder

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const embeddingResponse = `{
	"object": "list",
	"data": [{"object": "embedding", "index": 0, "embedding": [0.25, -0.5, 1]}],
	"model": "voyage-3-large",
	"usage": {"prompt_tokens": 3, "total_tokens": 3}
}`

func newTestEmbedder(srv *httptest.Server, failures uint32) *Embedder {
	return NewEmbedder(Config{
		APIKey:          "test-key",
		BaseURL:         srv.URL + "/",
		Model:           "voyage-3-large",
		InputType:       "document",
		BreakerFailures: failures,
		BreakerOpenFor:  time.Minute,
	}, logger.NewNopLogger())
}

func TestEmbedText_Success(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(embeddingResponse))
	}))
	defer srv.Close()

	vector, err := newTestEmbedder(srv, 3).EmbedText(context.Background(), "eco-friendly sneakers")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 1}, vector)

	assert.Equal(t, "eco-friendly sneakers", body["input"])
	assert.Equal(t, "voyage-3-large", body["model"])
	assert.Equal(t, "document", body["input_type"])
}

func TestEmbedText_NotConfigured(t *testing.T) {
	em := NewEmbedder(Config{Model: "m"}, logger.NewNopLogger())

	_, err := em.EmbedText(context.Background(), "text")
	assert.ErrorIs(t, err, e.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, e.ErrEmbeddingNotConfigured)
}

func TestEmbedText_EmptyInput(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := newTestEmbedder(srv, 3).EmbedText(context.Background(), "  ")
	assert.ErrorIs(t, err, e.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, e.ErrEmptyInput)
	assert.Zero(t, calls.Load())
}

func TestEmbedText_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object": "list", "data": [], "model": "m", "usage": {"prompt_tokens": 0, "total_tokens": 0}}`))
	}))
	defer srv.Close()

	_, err := newTestEmbedder(srv, 3).EmbedText(context.Background(), "text")
	assert.ErrorIs(t, err, e.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, e.ErrEmptyEmbedding)
}

func TestEmbedText_NoRetryAndBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "upstream failure", "type": "server_error"}}`))
	}))
	defer srv.Close()

	em := newTestEmbedder(srv, 2)

	_, err := em.EmbedText(context.Background(), "text")
	assert.ErrorIs(t, err, e.ErrEmbeddingUnavailable)
	assert.Equal(t, int32(1), calls.Load(), "a failed call must not be retried")

	_, err = em.EmbedText(context.Background(), "text")
	assert.ErrorIs(t, err, e.ErrEmbeddingUnavailable)

	// после двух подряд неудач breaker открыт и провайдер не вызывается
	_, err = em.EmbedText(context.Background(), "text")
	assert.ErrorIs(t, err, e.ErrEmbeddingUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}
