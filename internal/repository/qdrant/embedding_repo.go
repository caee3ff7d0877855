package qdrant

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/starmatch-backend/internal/cfg"
	"github.com/DRSN-tech/starmatch-backend/internal/domain"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

// upsertBatch — число точек в одном запросе Upsert.
const upsertBatch = 256

// PointsClient — часть API qdrant.Client, используемая репозиторием.
type PointsClient interface {
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	Scroll(ctx context.Context, request *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
}

// EmbeddingRepo хранит таблицу эмбеддингов знаменитостей в Qdrant.
// Каждая строка датасета — отдельная точка с payload {artist, row, model_version}.
type EmbeddingRepo struct {
	client PointsClient
	cfg    *cfg.QdrantCfg
}

func NewEmbeddingRepo(client PointsClient, cfg *cfg.QdrantCfg) *EmbeddingRepo {
	return &EmbeddingRepo{
		client: client,
		cfg:    cfg,
	}
}

// Load возвращает таблицу версии modelVersion, упорядоченную по номеру строки.
// Если число точек не совпадает с rows, возвращает e.ErrEmbeddingTableStale.
func (q *EmbeddingRepo) Load(ctx context.Context, modelVersion string, rows int) ([][]float32, error) {
	filter := versionFilter(modelVersion)

	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if rows == 0 || count != uint64(rows) {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %d points for %d rows", e.ErrEmbeddingTableStale, count, rows))
	}

	points, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(rows)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	table := make([][]float32, rows)
	for _, p := range points {
		idx := int(p.GetPayload()[domain.PayloadRow].GetIntegerValue())
		if idx < 0 || idx >= rows || table[idx] != nil {
			return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: bad row index %d", e.ErrEmbeddingTableStale, idx))
		}
		table[idx] = pointVector(p)
	}

	for i, v := range table {
		if len(v) == 0 {
			return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: row %d missing", e.ErrEmbeddingTableStale, i))
		}
	}

	return table, nil
}

// Upsert сохраняет или обновляет embedding-векторы пачками.
func (q *EmbeddingRepo) Upsert(ctx context.Context, vectors []domain.Embedding) error {
	reqVectors := make([]*qdrant.PointStruct, 0, len(vectors))
	for _, vector := range vectors {
		reqVectors = append(reqVectors, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(vector.ID),
			Vectors: qdrant.NewVectors(vector.Vector...),
			Payload: qdrant.NewValueMap(vector.Payload),
		})
	}

	for start := 0; start < len(reqVectors); start += upsertBatch {
		end := min(start+upsertBatch, len(reqVectors))

		_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: q.cfg.QdrantCollectionName,
			Wait:           qdrant.PtrOf(true),
			Points:         reqVectors[start:end],
		})
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// DeleteOtherVersions удаляет точки всех таблиц, кроме версии modelVersion.
// Вызывается после успешного Upsert, чтобы повторные импорты не копили старые таблицы.
func (q *EmbeddingRepo) DeleteOtherVersions(ctx context.Context, modelVersion string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Wait:           qdrant.PtrOf(true),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			MustNot: []*qdrant.Condition{
				qdrant.NewMatch(domain.PayloadModelVersion, modelVersion),
			},
		}),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func versionFilter(modelVersion string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(domain.PayloadModelVersion, modelVersion),
		},
	}
}

func pointVector(p *qdrant.RetrievedPoint) []float32 {
	out := p.GetVectors().GetVector()
	if dense := out.GetDense(); dense != nil {
		return dense.GetData()
	}
	return out.GetData()
}
