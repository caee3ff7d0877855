package matching

import (
	"math"
	"testing"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
	"github.com/stretchr/testify/assert"
)

func TestSimilarityToScore_FixedPoints(t *testing.T) {
	assert.Equal(t, 10.0, SimilarityToScore(1))
	assert.Equal(t, 0.0, SimilarityToScore(-1))
	assert.Equal(t, 5.0, SimilarityToScore(0))
	assert.Equal(t, 5.62, SimilarityToScore(0.123456))
	assert.Equal(t, 7.5, SimilarityToScore(0.5))
}

func TestSimilarityToScore_BoundedAndMonotonic(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 2000; i++ {
		sim := -1 + float64(i)/1000
		score := SimilarityToScore(sim)

		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 10.0)
		assert.GreaterOrEqual(t, score, prev, "score must not decrease at sim=%v", sim)
		prev = score
	}
}

func TestSimilarityToScore_ClampsAndGuardsNaN(t *testing.T) {
	assert.Equal(t, 10.0, SimilarityToScore(1.0000001))
	assert.Equal(t, 0.0, SimilarityToScore(-3))
	assert.Equal(t, 5.0, SimilarityToScore(math.NaN()))
}

func TestCosineScore_ZeroVector(t *testing.T) {
	zero := catalog.Normalize([]float32{0, 0, 0})
	assert.Equal(t, 5.0, CosineScore(zero, catalog.Normalize([]float32{1, 2, 3})))
}

func TestDot_UsesCommonLength(t *testing.T) {
	assert.InDelta(t, 11.0, Dot([]float32{1, 2, 100}, []float32{3, 4}), 1e-9)
}

func TestCosineScore_UnitVectors(t *testing.T) {
	a := catalog.Normalize([]float32{1, 0})
	b := catalog.Normalize([]float32{0, 1})
	c := catalog.Normalize([]float32{-1, 0})

	assert.Equal(t, 10.0, CosineScore(a, a))
	assert.Equal(t, 5.0, CosineScore(a, b))
	assert.Equal(t, 0.0, CosineScore(a, c))
}
