package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity_IdenticalVectors(t *testing.T) {
	v := []float32{0.3, 0.5, 0.2}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
}

func TestCosineSimilarity_OrthogonalVectors(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineSimilarity_OppositeVectors(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-1, -2, -3}
	assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineSimilarity_ZeroNormYieldsZero(t *testing.T) {
	zero := []float32{0, 0, 0}
	v := []float32{1, 2, 3}

	assert.Equal(t, 0.0, CosineSimilarity(zero, v))
	assert.Equal(t, 0.0, CosineSimilarity(v, zero))
	assert.Equal(t, 0.0, CosineSimilarity(zero, zero))
}

func TestCosineSimilarity_ScaleInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{2, 4, 6}
	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-6)
}
