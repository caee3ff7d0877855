package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
	"github.com/DRSN-tech/starmatch-backend/internal/domain"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	mu     sync.Mutex
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.vector, f.err
}

func (f *fakeEmbedder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePitch struct {
	text string
	err  error
	got  *PitchContext
}

func (f *fakePitch) GeneratePitch(_ context.Context, pc *PitchContext) (string, error) {
	f.got = pc
	return f.text, f.err
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]float32
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]float32)}
}

func (f *fakeCache) GetEmbedding(_ context.Context, text string) ([]float32, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.entries[text]
	return v, ok, nil
}

func (f *fakeCache) SetEmbedding(_ context.Context, text string, vector []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[text] = vector
	return nil
}

func (f *fakeCache) has(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[text]
	return ok
}

func vec(dim int, head ...float32) []float32 {
	v := make([]float32, dim)
	copy(v, head)
	return v
}

func joinedRow(brand, artist string, brandHead []float32, gender float32) domain.JoinedRow {
	return *domain.NewJoinedRow(brand, artist, vec(domain.BrandDim, brandHead...), gender,
		[domain.AgeBucketCount]float32{}, [domain.CategoryDim]float32{}, vec(domain.CelebrityDim))
}

// testCatalog — три строки в трёхмерном пространстве; brand encoder берёт первые три признака.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	dataset := catalog.Dataset{
		Rows: []domain.JoinedRow{
			joinedRow("acme", "alice", []float32{1, 0, 0}, 0),
			joinedRow("zeta", "bob", []float32{0, 1, 0}, 1),
			joinedRow("acme", "bob", []float32{0, 0, 1}, 1),
		},
		Personas:          []domain.Persona{{Artist: "alice", Text: "pop singer"}},
		BrandDescriptions: []domain.BrandDescription{{Brand: "acme", Text: "gadgets for everyone"}},
	}
	embeddings := [][]float32{{1, 0, 0}, {0, 1, 0}, {0.6, 0.8, 0}}

	c, err := catalog.New(dataset, embeddings, catalog.ProjectorFunc(func(f []float32) []float32 {
		return vec(3, f[:3]...)
	}))
	require.NoError(t, err)

	return c
}

func newTestUC(t *testing.T, embedder TextEmbedder, pitch PitchGenerator, cache CacheRepository) *RecommendUseCase {
	t.Helper()
	return NewRecommendUC(testCatalog(t), embedder, pitch, cache, RecommendConfig{}, logger.NewNopLogger())
}
