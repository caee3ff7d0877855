package embedder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/starmatch-backend/internal/metrics"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Config — параметры провайдера эмбеддингов с OpenAI-совместимым API.
type Config struct {
	APIKey           string
	BaseURL          string
	Model            string
	InputType        string // передаётся провайдеру как input_type, пусто — не передаётся
	BreakerFailures  uint32
	BreakerOpenFor   time.Duration
	BreakerHalfOpens uint32
}

// Embedder получает эмбеддинг текстового описания бренда у внешнего провайдера.
// Повторов нет: один неудачный вызов сразу возвращается вызывающему.
type Embedder struct {
	client    *openai.Client
	model     string
	inputType string
	cb        *gobreaker.CircuitBreaker[[]float32]
	logger    logger.Logger
}

func NewEmbedder(cfg Config, logger logger.Logger) *Embedder {
	em := &Embedder{
		model:     cfg.Model,
		inputType: cfg.InputType,
		logger:    logger,
	}

	if cfg.APIKey != "" {
		opts := []option.RequestOption{
			option.WithAPIKey(cfg.APIKey),
			option.WithMaxRetries(0),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}

		client := openai.NewClient(opts...)
		em.client = &client
	}

	failures := max(cfg.BreakerFailures, 1)
	em.cb = gobreaker.NewCircuitBreaker[[]float32](gobreaker.Settings{
		Name:        "embedding",
		MaxRequests: max(cfg.BreakerHalfOpens, 1),
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return em
}

// EmbedText возвращает эмбеддинг текста. Любая ошибка оборачивается в e.ErrEmbeddingUnavailable.
func (m *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	const op = "Embedder.EmbedText"

	if m.client == nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrEmbeddingUnavailable, e.ErrEmbeddingNotConfigured))
	}
	if strings.TrimSpace(text) == "" {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrEmbeddingUnavailable, e.ErrEmptyInput))
	}

	start := time.Now()
	vector, err := m.cb.Execute(func() ([]float32, error) {
		return m.request(ctx, text)
	})
	metrics.RecordExternalCall("embedding", time.Since(start), err)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrEmbeddingUnavailable, err))
	}

	return vector, nil
}

func (m *Embedder) request(ctx context.Context, text string) ([]float32, error) {
	var opts []option.RequestOption
	if m.inputType != "" {
		opts = append(opts, option.WithJSONSet("input_type", m.inputType))
	}

	resp, err := m.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(m.model),
	}, opts...)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, e.ErrEmptyEmbedding
	}

	vector := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float32(v)
	}

	return vector, nil
}
