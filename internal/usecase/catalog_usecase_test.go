package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
	"github.com/DRSN-tech/starmatch-backend/internal/domain"
	"github.com/DRSN-tech/starmatch-backend/internal/model"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDatasetRepo struct {
	dataset *catalog.Dataset
	err     error
}

func (f *fakeDatasetRepo) LoadDataset(context.Context) (*catalog.Dataset, error) {
	return f.dataset, f.err
}

type fakeModelRepo struct {
	models map[string][]byte
}

func (f *fakeModelRepo) GetModel(_ context.Context, name string) ([]byte, error) {
	data, ok := f.models[name]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

type fakeEmbeddingRepo struct {
	stored      [][]float32
	loadErr     error
	upserted    []domain.Embedding
	upsertErr   error
	loadVersion string
	keptVersion string
}

func (f *fakeEmbeddingRepo) Load(_ context.Context, version string, _ int) ([][]float32, error) {
	f.loadVersion = version
	return f.stored, f.loadErr
}

func (f *fakeEmbeddingRepo) Upsert(_ context.Context, vectors []domain.Embedding) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, vectors...)
	return nil
}

func (f *fakeEmbeddingRepo) DeleteOtherVersions(_ context.Context, version string) error {
	f.keptVersion = version
	return nil
}

// firstDimsModel — однослойная линейная сеть, возвращающая первые out компонент входа.
func firstDimsModel(t *testing.T, version string, in, out int) []byte {
	t.Helper()

	kernel := make([][]float32, in)
	for i := range kernel {
		kernel[i] = make([]float32, out)
		if i < out {
			kernel[i][i] = 1
		}
	}

	data, err := json.Marshal(model.Network{
		Version:  version,
		InputDim: in,
		Layers:   []model.Layer{{Kernel: kernel, Bias: make([]float32, out), Activation: model.ActivationLinear}},
	})
	require.NoError(t, err)

	return data
}

func catalogFixture(t *testing.T) (*fakeDatasetRepo, *fakeModelRepo) {
	t.Helper()

	alice := joinedRow("acme", "alice", []float32{1, 0}, 0)
	alice.ArtistVector[0] = 2
	bob := joinedRow("acme", "bob", []float32{0, 1}, 1)
	bob.ArtistVector[1] = 3

	datasetRepo := &fakeDatasetRepo{dataset: &catalog.Dataset{Rows: []domain.JoinedRow{alice, bob}}}
	modelRepo := &fakeModelRepo{models: map[string][]byte{
		"brand_encoder.json": firstDimsModel(t, "brand-v1", domain.BrandFeatureDim, 2),
		"celeb_proj.json":    firstDimsModel(t, "celeb-v1", domain.CelebrityDim, 2),
	}}

	return datasetRepo, modelRepo
}

var testCatalogCfg = CatalogConfig{BrandEncoderName: "brand_encoder.json", CelebProjectionName: "celeb_proj.json"}

func TestCatalogBuild_ProjectsAndStoresStaleTable(t *testing.T) {
	datasetRepo, modelRepo := catalogFixture(t)
	embeddingRepo := &fakeEmbeddingRepo{loadErr: e.ErrEmbeddingTableStale}

	uc := NewCatalogUC(datasetRepo, modelRepo, embeddingRepo, testCatalogCfg, logger.NewNopLogger())
	cat, err := uc.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, []float32{1, 0}, cat.Embedding(0))
	assert.Equal(t, []float32{0, 1}, cat.Embedding(1))

	version := TableVersion("celeb-v1", datasetRepo.dataset.Rows)
	assert.Equal(t, version, embeddingRepo.loadVersion)

	require.Len(t, embeddingRepo.upserted, 2)
	assert.Equal(t, EmbeddingPointID(version, 1), embeddingRepo.upserted[1].ID)
	assert.Equal(t, "bob", embeddingRepo.upserted[1].Payload[domain.PayloadArtist])
	assert.Equal(t, version, embeddingRepo.upserted[1].Payload[domain.PayloadModelVersion])
	assert.Equal(t, version, embeddingRepo.keptVersion, "older tables must be dropped after a successful store")
}

func TestCatalogBuild_KeepsOldTablesWhenStoreFails(t *testing.T) {
	datasetRepo, modelRepo := catalogFixture(t)
	embeddingRepo := &fakeEmbeddingRepo{loadErr: e.ErrEmbeddingTableStale, upsertErr: errors.New("qdrant down")}

	_, err := NewCatalogUC(datasetRepo, modelRepo, embeddingRepo, testCatalogCfg, logger.NewNopLogger()).
		Build(context.Background())
	require.NoError(t, err)
	assert.Empty(t, embeddingRepo.keptVersion)
}

func TestCatalogBuild_ReusesStoredTable(t *testing.T) {
	datasetRepo, modelRepo := catalogFixture(t)
	embeddingRepo := &fakeEmbeddingRepo{stored: [][]float32{{0, 1}, {1, 0}}}

	uc := NewCatalogUC(datasetRepo, modelRepo, embeddingRepo, testCatalogCfg, logger.NewNopLogger())
	cat, err := uc.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []float32{0, 1}, cat.Embedding(0))
	assert.Empty(t, embeddingRepo.upserted)
	assert.Empty(t, embeddingRepo.keptVersion)
}

func TestCatalogBuild_ReprojectsStoredTableOfOtherDim(t *testing.T) {
	datasetRepo, modelRepo := catalogFixture(t)
	embeddingRepo := &fakeEmbeddingRepo{stored: [][]float32{{0, 1, 0}, {1, 0, 0}}}

	cat, err := NewCatalogUC(datasetRepo, modelRepo, embeddingRepo, testCatalogCfg, logger.NewNopLogger()).
		Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []float32{1, 0}, cat.Embedding(0))
	assert.Len(t, embeddingRepo.upserted, 2)
}

func TestCatalogBuild_RejectsMisalignedModels(t *testing.T) {
	tests := []struct {
		name  string
		brand []byte
		celeb []byte
	}{
		{
			name:  "brand encoder input",
			brand: firstDimsModel(t, "brand-bad", 10, 2),
			celeb: firstDimsModel(t, "celeb-v1", domain.CelebrityDim, 2),
		},
		{
			name:  "celebrity projection input",
			brand: firstDimsModel(t, "brand-v1", domain.BrandFeatureDim, 2),
			celeb: firstDimsModel(t, "celeb-bad", 16, 2),
		},
		{
			name:  "output spaces differ",
			brand: firstDimsModel(t, "brand-v1", domain.BrandFeatureDim, 5),
			celeb: firstDimsModel(t, "celeb-v1", domain.CelebrityDim, 2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			datasetRepo, _ := catalogFixture(t)
			modelRepo := &fakeModelRepo{models: map[string][]byte{
				"brand_encoder.json": tt.brand,
				"celeb_proj.json":    tt.celeb,
			}}

			_, err := NewCatalogUC(datasetRepo, modelRepo, nil, testCatalogCfg, logger.NewNopLogger()).
				Build(context.Background())
			assert.ErrorIs(t, err, e.ErrDimensionMismatch)
		})
	}
}

func TestCatalogBuild_WithoutEmbeddingStore(t *testing.T) {
	datasetRepo, modelRepo := catalogFixture(t)

	uc := NewCatalogUC(datasetRepo, modelRepo, nil, testCatalogCfg, logger.NewNopLogger())
	cat, err := uc.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
}

func TestCatalogBuild_Errors(t *testing.T) {
	datasetRepo, modelRepo := catalogFixture(t)

	_, err := NewCatalogUC(&fakeDatasetRepo{err: errors.New("db down")}, modelRepo, nil, testCatalogCfg, logger.NewNopLogger()).
		Build(context.Background())
	assert.Error(t, err)

	_, err = NewCatalogUC(datasetRepo, &fakeModelRepo{}, nil, testCatalogCfg, logger.NewNopLogger()).
		Build(context.Background())
	assert.Error(t, err)

	broken := &fakeModelRepo{models: map[string][]byte{
		"brand_encoder.json": []byte(`{"input_dim": 0}`),
		"celeb_proj.json":    modelRepo.models["celeb_proj.json"],
	}}
	_, err = NewCatalogUC(datasetRepo, broken, nil, testCatalogCfg, logger.NewNopLogger()).
		Build(context.Background())
	assert.ErrorIs(t, err, e.ErrInvalidModel)
}

func TestEmbeddingPointID_Deterministic(t *testing.T) {
	assert.Equal(t, EmbeddingPointID("v1", 3), EmbeddingPointID("v1", 3))
	assert.NotEqual(t, EmbeddingPointID("v1", 3), EmbeddingPointID("v2", 3))
	assert.NotEqual(t, EmbeddingPointID("v1", 3), EmbeddingPointID("v1", 4))
}

func TestTableVersion_TracksProjectionInputs(t *testing.T) {
	datasetRepo, _ := catalogFixture(t)
	rows := datasetRepo.dataset.Rows

	base := TableVersion("celeb-v1", rows)
	assert.Equal(t, base, TableVersion("celeb-v1", rows))
	assert.Contains(t, base, "celeb-v1@")
	assert.NotEqual(t, base, TableVersion("celeb-v2", rows))

	changed := make([]domain.JoinedRow, len(rows))
	copy(changed, rows)
	changed[1].ArtistVector = append([]float32(nil), rows[1].ArtistVector...)
	changed[1].ArtistVector[5] = 0.5
	assert.NotEqual(t, base, TableVersion("celeb-v1", changed))

	renamed := make([]domain.JoinedRow, len(rows))
	copy(renamed, rows)
	renamed[0].Artist = "alicia"
	assert.NotEqual(t, base, TableVersion("celeb-v1", renamed))
}
