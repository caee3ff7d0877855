package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки с векторами
	ErrEmptyVectors        = fmt.Errorf("empty vectors")
	ErrDimensionMismatch   = fmt.Errorf("vector dimension mismatch")
	ErrEmbeddingsMismatch  = fmt.Errorf("embeddings count does not match rows count")
	ErrInvalidModel        = fmt.Errorf("invalid projection model")
	ErrUnknownActivation   = fmt.Errorf("unknown activation")
	ErrEmbeddingTableStale = fmt.Errorf("embedding table not found for model version")
	ErrModelNotFound       = fmt.Errorf("model weights not found")

	// Внешние зависимости
	ErrEmbeddingUnavailable   = fmt.Errorf("text embedding unavailable")
	ErrEmbeddingNotConfigured = fmt.Errorf("embedding provider is not configured")
	ErrEmptyInput             = fmt.Errorf("input text is empty")
	ErrEmptyEmbedding         = fmt.Errorf("embedding provider returned no embeddings")
	ErrPitchGenerationFailed  = fmt.Errorf("pitch generation failed")
	ErrLLMNotConfigured       = fmt.Errorf("llm provider is not configured")
	ErrEmptyCompletion        = fmt.Errorf("llm returned empty completion")

	// 400 Bad Request
	ErrStatusBadRequest = fmt.Errorf("bad request")
	ErrInvalidQuery     = fmt.Errorf("invalid query parameters")
	ErrInvalidBody      = fmt.Errorf("invalid request body")
	ErrInvalidAgeWindow = fmt.Errorf("minAge must not be greater than maxAge")

	// 500 / 503
	ErrInternalServerError = fmt.Errorf("internal server error")
	ErrServiceUnavailable  = fmt.Errorf("service temporarily unavailable")

	// Конфигурация и импорт
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrMalformedCSV         = fmt.Errorf("malformed csv")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
