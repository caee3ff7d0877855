package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
	"github.com/DRSN-tech/starmatch-backend/internal/domain"
	"github.com/DRSN-tech/starmatch-backend/internal/metrics"
	"github.com/DRSN-tech/starmatch-backend/internal/model"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/google/uuid"
)

// CatalogConfig — имена объектов с весами проекционных моделей.
type CatalogConfig struct {
	BrandEncoderName    string
	CelebProjectionName string
}

// CatalogUseCase собирает Catalog при старте: датасет из БД, модели из хранилища объектов
// и таблицу эмбеддингов знаменитостей, которая переиспользуется между перезапусками.
type CatalogUseCase struct {
	datasetRepo   DatasetRepository
	modelRepo     ModelRepository
	embeddingRepo EmbeddingRepository
	cfg           CatalogConfig
	logger        logger.Logger
}

func NewCatalogUC(
	datasetRepo DatasetRepository,
	modelRepo ModelRepository,
	embeddingRepo EmbeddingRepository,
	cfg CatalogConfig,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		datasetRepo:   datasetRepo,
		modelRepo:     modelRepo,
		embeddingRepo: embeddingRepo,
		cfg:           cfg,
		logger:        logger,
	}
}

// Build загружает справочные данные и возвращает готовый Catalog.
func (c *CatalogUseCase) Build(ctx context.Context) (*catalog.Catalog, error) {
	const op = "CatalogUseCase.Build"

	start := time.Now()

	dataset, err := c.datasetRepo.LoadDataset(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	brandEncoder, err := c.loadModel(ctx, c.cfg.BrandEncoderName)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	celebProj, err := c.loadModel(ctx, c.cfg.CelebProjectionName)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := checkModelDims(brandEncoder, celebProj); err != nil {
		return nil, e.Wrap(op, err)
	}

	embeddings, err := c.embeddingTable(ctx, dataset.Rows, celebProj)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	cat, err := catalog.New(*dataset, embeddings, brandEncoder)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	metrics.CatalogRows.Set(float64(cat.Len()))
	c.logger.Infof("Catalog loaded: rows=%d, personas=%d, brand_descriptions=%d, took=%s",
		cat.Len(), len(dataset.Personas), len(dataset.BrandDescriptions), time.Since(start))

	return cat, nil
}

// loadModel получает веса модели из хранилища и разбирает их.
func (c *CatalogUseCase) loadModel(ctx context.Context, name string) (*model.Network, error) {
	data, err := c.modelRepo.GetModel(ctx, name)
	if err != nil {
		return nil, err
	}

	n, err := model.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}

	return n, nil
}

// checkModelDims проверяет, что модели принимают признаки нужной размерности
// и проецируют бренды и знаменитостей в одно пространство.
func checkModelDims(brandEncoder, celebProj *model.Network) error {
	if brandEncoder.InputDim != domain.BrandFeatureDim {
		return fmt.Errorf("%w: brand encoder input is %d, want %d", e.ErrDimensionMismatch, brandEncoder.InputDim, domain.BrandFeatureDim)
	}
	if celebProj.InputDim != domain.CelebrityDim {
		return fmt.Errorf("%w: celebrity projection input is %d, want %d", e.ErrDimensionMismatch, celebProj.InputDim, domain.CelebrityDim)
	}
	if brandEncoder.OutputDim() != celebProj.OutputDim() {
		return fmt.Errorf("%w: brand encoder output is %d, celebrity projection output is %d",
			e.ErrDimensionMismatch, brandEncoder.OutputDim(), celebProj.OutputDim())
	}

	return nil
}

// embeddingTable берёт сохранённую таблицу эмбеддингов для версии модели,
// а если её нет или она устарела — проецирует строки заново и сохраняет результат.
func (c *CatalogUseCase) embeddingTable(ctx context.Context, rows []domain.JoinedRow, celebProj *model.Network) ([][]float32, error) {
	const op = "CatalogUseCase.embeddingTable"

	version := TableVersion(celebProj.Version, rows)

	if c.embeddingRepo != nil {
		stored, err := c.embeddingRepo.Load(ctx, version, len(rows))
		if err == nil {
			err = checkTableDim(stored, celebProj.OutputDim())
		}
		switch {
		case err == nil:
			c.logger.Infof("Reusing stored embedding table: model_version=%s, rows=%d", version, len(stored))
			return stored, nil
		case errors.Is(err, e.ErrEmbeddingTableStale):
			c.logger.Infof("Stored embedding table is missing or stale, projecting: model_version=%s", version)
		default:
			c.logger.Warnf("Failed to load stored embedding table: %v", e.Wrap(op, err))
		}
	}

	embeddings, err := catalog.ProjectCelebrities(rows, celebProj)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if c.embeddingRepo != nil {
		if err := c.embeddingRepo.Upsert(ctx, toEmbeddings(rows, embeddings, version)); err != nil {
			c.logger.Warnf("Failed to store embedding table: %v", e.Wrap(op, err))
		} else if err := c.embeddingRepo.DeleteOtherVersions(ctx, version); err != nil {
			c.logger.Warnf("Failed to delete outdated embedding tables: %v", e.Wrap(op, err))
		}
	}

	return embeddings, nil
}

// checkTableDim считает сохранённую таблицу устаревшей, если её размерность не совпадает с выходом модели.
func checkTableDim(table [][]float32, dim int) error {
	for i, v := range table {
		if len(v) != dim {
			return fmt.Errorf("%w: stored row %d has %d dims, want %d", e.ErrEmbeddingTableStale, i, len(v), dim)
		}
	}

	return nil
}

// toEmbeddings превращает таблицу в точки хранилища с детерминированными ID,
// чтобы повторное сохранение той же версии перезаписывало строки.
func toEmbeddings(rows []domain.JoinedRow, vectors [][]float32, version string) []domain.Embedding {
	out := make([]domain.Embedding, len(rows))
	for i, row := range rows {
		id := EmbeddingPointID(version, i)
		out[i] = *domain.NewEmbedding(id, vectors[i], domain.NewCelebrityPayload(row.Artist, i, version))
	}

	return out
}

// TableVersion — ключ таблицы эмбеддингов: версия модели и отпечаток входных данных проекции.
// После повторного импорта с теми же размерами сохранённая таблица не будет переиспользована.
func TableVersion(modelVersion string, rows []domain.JoinedRow) string {
	h := sha256.New()
	buf := make([]byte, 4)
	for _, row := range rows {
		h.Write([]byte(row.Artist))
		h.Write([]byte{0})
		for _, v := range row.ArtistVector {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
			h.Write(buf)
		}
	}

	return modelVersion + "@" + hex.EncodeToString(h.Sum(nil))[:16]
}

// EmbeddingPointID — детерминированный UUID строки таблицы эмбеддингов.
func EmbeddingPointID(version string, row int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", version, row))).String()
}
