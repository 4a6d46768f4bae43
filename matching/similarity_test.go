package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilaritySelf(t *testing.T) {
	v := []float64{0.5, -0.2, 0.8, 0.1}
	assert.InDelta(t, 1.0, Similarity(v, v), 1e-9)
}

func TestSimilaritySymmetry(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{-4, 5, 0.5}
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

func TestSimilarityBounds(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{-1, 0}
	c := []float64{0, 1}

	assert.InDelta(t, -1.0, Similarity(a, b), 1e-9)
	assert.InDelta(t, 0.0, Similarity(a, c), 1e-9)
	s := Similarity([]float64{3, 4}, []float64{4, 3})
	assert.True(t, s >= -1 && s <= 1)
}

func TestSimilarityDimensionMismatch(t *testing.T) {
	assert.Equal(t, 0.0, Similarity([]float64{1, 2}, []float64{1, 2, 3}))
}

func TestSimilarityZeroVector(t *testing.T) {
	zero := []float64{0, 0, 0}
	assert.Equal(t, 0.0, Similarity(zero, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, Similarity([]float64{1, 2, 3}, zero))
	assert.Equal(t, 0.0, Similarity(zero, zero))
}

func TestSimilarityKnownValue(t *testing.T) {
	// cos(45 degrees)
	assert.InDelta(t, 0.70710678, Similarity([]float64{1, 0}, []float64{1, 1}), 1e-8)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 82, Percentage(0.82))
	assert.Equal(t, 83, Percentage(0.825))
	assert.Equal(t, 0, Percentage(0))
	assert.Equal(t, 100, Percentage(1))
}
