package matching

import (
	"math"
	"sort"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
	"github.com/shopspring/decimal"
)

// Dot — скалярное произведение по общей длине векторов.
func Dot(a, b []float32) float64 {
	n := min(len(a), len(b))

	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}

	return dot
}

// SimilarityToScore переводит косинусное сходство [-1, 1] в оценку [0, 10]
// по формуле round((sim+1)/2*10, 2).
func SimilarityToScore(sim float64) float64 {
	if math.IsNaN(sim) {
		sim = 0
	}
	sim = max(-1, min(1, sim))

	score := (sim + 1) / 2 * 10
	return decimal.NewFromFloat(score).Round(2).InexactFloat64()
}

// CosineScore — оценка совпадения двух уже нормированных векторов.
func CosineScore(a, b []float32) float64 {
	return SimilarityToScore(Dot(a, b))
}

// hit — сходство запроса со строкой таблицы эмбеддингов.
type hit struct {
	row int
	sim float64
}

// scan считает сходство запроса со всеми строками таблицы и сортирует по убыванию.
// При равенстве сходства раньше идёт строка с меньшим индексом.
func scan(c *catalog.Catalog, query []float32) []hit {
	hits := make([]hit, c.Len())
	for i := range hits {
		hits[i] = hit{row: i, sim: Dot(c.Embedding(i), query)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].sim > hits[j].sim
	})

	return hits
}
