package histo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHisto(Te *testing.T) {
	rawdata := []float64{1, 6, 3, 2, 4, 5, 7, 6, 3.5, 3, 5, 1, 1, 0, 0, 5, 8, 1, 2, 3, 44, 3, 7, 3, 1, 3, 5, 32, 1}
	D, err := NewData([]float64{0, 1, 2, 3, 4, 8}, rawdata, 3)
	require.NoError(Te, err)
	assert.Equal(Te, 3, D.ID())
	assert.Equal(Te, len(rawdata), D.Total())
	//8, 44 and 32 are off limits.
	assert.Equal(Te, []float64{2, 6, 2, 7, 9}, D.Copy())
	assert.Equal(Te, 26.0, D.Sum())
	D.Normalize()
	assert.True(Te, D.Normalized())
	assert.InDelta(Te, 26.0/29, D.Sum(), 1e-12)
	D.AddData(0.5)
	assert.True(Te, D.Normalized())
	assert.InDelta(Te, 3.0/30, D.Copy()[0], 1e-12)
	D.UnNormalize()
	assert.InDeltaSlice(Te, []float64{3, 6, 2, 7, 9}, D.Copy(), 1e-9)
	assert.Contains(Te, D.String(), "0.00-1.00")
}

func TestHistoErrors(Te *testing.T) {
	_, err := NewData([]float64{1}, nil)
	assert.Error(Te, err)
	_, err = NewData([]float64{2, 1}, nil)
	assert.Error(Te, err)
	D, err := NewData([]float64{0, 1}, nil)
	require.NoError(Te, err)
	assert.Equal(Te, -1, D.ID())
	assert.Equal(Te, 0.0, D.Sum())
}

func TestHistoJSON(Te *testing.T) {
	D, err := NewData([]float64{0, 1, 2}, []float64{0.5, 1.5, 1.7}, 1)
	require.NoError(Te, err)
	j, err := json.Marshal(D)
	require.NoError(Te, err)
	D2 := new(Data)
	require.NoError(Te, json.Unmarshal(j, D2))
	assert.Equal(Te, D, D2)
	assert.Error(Te, json.Unmarshal([]byte(`{"dividers":[0,1],"histo":[1,2]}`), D2))
}

func TestColumns(Te *testing.T) {
	rows := [][]float64{{10, 0}, {20, 0}, {30, 5}, {40, 0}}
	H, err := Columns(rows, 4)
	require.NoError(Te, err)
	require.Len(Te, H, 2)
	for c, h := range H {
		assert.Equal(Te, c, h.ID())
		//the largest value is counted too.
		assert.Equal(Te, 4.0, h.Sum())
	}
	assert.Equal(Te, []float64{1, 1, 1, 1}, H[0].Copy())
	assert.Equal(Te, []float64{4, 0, 0, 0}, H[1].Copy())
	assert.Equal(Te, H[0].Dividers(), H[1].Dividers())

	_, err = Columns(nil, 4)
	assert.Error(Te, err)
	_, err = Columns([][]float64{{1}, {1, 2}}, 4)
	assert.Error(Te, err)
	H, err = Columns([][]float64{{0}, {0}}, 2)
	require.NoError(Te, err)
	assert.Equal(Te, []float64{2, 0}, H[0].Copy())
}

func TestDividers(Te *testing.T) {
	assert.Equal(Te, []float64{0, 0.5, 1}, Dividers(0, 1, 2))
	assert.Equal(Te, []float64{3, 4}, Dividers(3, 3, 0))
}
