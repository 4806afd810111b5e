package v3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMatrix(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(Te, err)
	assert.Equal(Te, 3, A.NVecs())
	assert.Equal(Te, [3]float64{4, 5, 6}, A.Vec(1))
	v := A.VecView(2)
	v.Set(0, 0, 70)
	assert.Equal(Te, 70.0, A.At(2, 0))
	B := Zeros(2)
	B.SomeVecs(A, []int{2, 0})
	assert.Equal(Te, [3]float64{70, 8, 9}, B.Vec(0))
	assert.Equal(Te, [3]float64{1, 2, 3}, B.Vec(1))
	_, err = NewMatrix([]float64{1, 2})
	assert.Error(Te, err)
	assert.Panics(Te, func() { Dense2Matrix(mat.NewDense(2, 2, nil)) })
}
