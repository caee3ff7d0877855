package matching

import (
	"testing"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
	"github.com/DRSN-tech/starmatch-backend/internal/domain"
	"github.com/stretchr/testify/require"
)

// embedDim — размерность общего пространства в тестовых каталогах.
const embedDim = 3

// rowSpec описывает строку тестового каталога в компактном виде.
type rowSpec struct {
	brand     string
	artist    string
	brandHead []float32 // первые компоненты вектора бренда, они же проекция brand encoder
	gender    float32
	bucket    int // индекс возрастной корзины, -1 — без корзины
	emb       []float32
}

func vec(dim int, head ...float32) []float32 {
	v := make([]float32, dim)
	copy(v, head)
	return v
}

// headProjector — brand encoder, берущий первые embedDim компонент вектора признаков.
var headProjector = catalog.ProjectorFunc(func(features []float32) []float32 {
	out := make([]float32, embedDim)
	copy(out, features)
	return out
})

func buildCatalog(t *testing.T, specs []rowSpec, personas []domain.Persona, descs []domain.BrandDescription) *catalog.Catalog {
	t.Helper()

	rows := make([]domain.JoinedRow, len(specs))
	embs := make([][]float32, len(specs))
	for i, s := range specs {
		var buckets [domain.AgeBucketCount]float32
		if s.bucket >= 0 {
			buckets[s.bucket] = 1
		}
		rows[i] = *domain.NewJoinedRow(
			s.brand,
			s.artist,
			vec(domain.BrandDim, s.brandHead...),
			s.gender,
			buckets,
			[domain.CategoryDim]float32{},
			vec(domain.CelebrityDim),
		)
		embs[i] = vec(embedDim, s.emb...)
	}

	c, err := catalog.New(catalog.Dataset{
		Rows:              rows,
		Personas:          personas,
		BrandDescriptions: descs,
	}, embs, headProjector)
	require.NoError(t, err)

	return c
}

func intPtr(v int) *int {
	return &v
}

func candidateIDs(cands []domain.Candidate) []string {
	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.ID
	}
	return ids
}
