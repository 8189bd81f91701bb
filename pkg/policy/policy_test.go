package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlphaVectorsValueAndAction(t *testing.T) {
	p := &AlphaVectors{
		N: 2,
		M: 3,
		R: 2,
		Vectors: [][]float64{
			{10.0, -100.0},
			{-1.0, -1.0},
		},
		Actions: []int{2, 0},
	}

	t.Run("confident belief opens the door", func(t *testing.T) {
		v, a := p.ValueAndAction([]float64{1.0, 0.0})
		assert.InDelta(t, 10.0, v, 1e-9)
		assert.Equal(t, 2, a)
	})

	t.Run("uncertain belief listens", func(t *testing.T) {
		v, a := p.ValueAndAction([]float64{0.5, 0.5})
		assert.InDelta(t, -1.0, v, 1e-9)
		assert.Equal(t, 0, a)
	})

	t.Run("tie keeps the first vector's action", func(t *testing.T) {
		tied := &AlphaVectors{
			N:       2,
			M:       2,
			R:       2,
			Vectors: [][]float64{{1.0, 1.0}, {1.0, 1.0}},
			Actions: []int{1, 0},
		}
		_, a := tied.ValueAndAction([]float64{0.4, 0.6})
		assert.Equal(t, 1, a)
	})
}

func TestValueFunctionValueAndAction(t *testing.T) {
	p := &ValueFunction{
		N:  2,
		M:  2,
		V:  []float64{100.0, 90.0},
		Pi: []int{0, 1},
	}

	v, a := p.ValueAndAction(0)
	assert.Equal(t, 100.0, v)
	assert.Equal(t, 0, a)

	v, a = p.ValueAndAction(1)
	assert.Equal(t, 90.0, v)
	assert.Equal(t, 1, a)
}
