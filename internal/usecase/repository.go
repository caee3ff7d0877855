package usecase

import (
	"context"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
	"github.com/DRSN-tech/starmatch-backend/internal/domain"
)

type DatasetRepository interface {
	LoadDataset(ctx context.Context) (*catalog.Dataset, error)
}

// EmbeddingRepository хранит таблицу эмбеддингов знаменитостей по версии модели.
// Load возвращает e.ErrEmbeddingTableStale, если сохранённая таблица не соответствует rows строкам.
// DeleteOtherVersions удаляет таблицы всех версий, кроме modelVersion.
type EmbeddingRepository interface {
	Load(ctx context.Context, modelVersion string, rows int) ([][]float32, error)
	Upsert(ctx context.Context, vectors []domain.Embedding) error
	DeleteOtherVersions(ctx context.Context, modelVersion string) error
}

type CacheRepository interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, text string, vector []float32) error
}

type ModelRepository interface {
	GetModel(ctx context.Context, name string) ([]byte, error)
}
