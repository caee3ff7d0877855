package pitch

import (
	"context"
	"strings"
	"time"

	"github.com/DRSN-tech/starmatch-backend/internal/metrics"
	"github.com/DRSN-tech/starmatch-backend/internal/usecase"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Config — параметры генератора текста.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float64
	MaxTokens       int64
	BreakerFailures uint32
	BreakerOpenFor  time.Duration
}

// Generator генерирует короткое обоснование выбора артиста через chat completions API.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int64
	cb          *gobreaker.CircuitBreaker[string]
	logger      logger.Logger
}

func NewGenerator(cfg Config, logger logger.Logger) *Generator {
	g := &Generator{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
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
		g.client = &client
	}

	failures := max(cfg.BreakerFailures, 1)
	g.cb = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "pitch",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return g
}

// GeneratePitch возвращает текст-обоснование для собранного контекста.
func (g *Generator) GeneratePitch(ctx context.Context, pc *usecase.PitchContext) (string, error) {
	const op = "Generator.GeneratePitch"

	if g.client == nil {
		return "", e.Wrap(op, e.ErrLLMNotConfigured)
	}

	start := time.Now()
	text, err := g.cb.Execute(func() (string, error) {
		return g.request(ctx, pc)
	})
	metrics.RecordExternalCall("pitch", time.Since(start), err)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return text, nil
}

func (g *Generator) request(ctx context.Context, pc *usecase.PitchContext) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(pc)),
		},
		Temperature: openai.Float(g.temperature),
		MaxTokens:   openai.Int(g.maxTokens),
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", e.ErrEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", e.ErrEmptyCompletion
	}

	return text, nil
}
