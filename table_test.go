package protarea

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *AreaTable {
	return &AreaTable{
		bounds: []float64{0, 1, 2},
		frames: []int{0, 5, 10},
		rows:   [][]float64{{1, 2}, {3, 4}, {5, 6}},
	}
}

func TestTableStats(Te *testing.T) {
	T := testTable()
	assert.Equal(Te, 4.0, T.At(1, 1))
	assert.Equal(Te, []float64{1, 3, 5}, T.Column(0))
	assert.Equal(Te, []float64{0.5, 1.5}, T.SliceCenters())
	assert.Equal(Te, []float64{3, 4}, T.Mean())
	assert.InDeltaSlice(Te, []float64{2, 2}, T.StdDev(), 1e-12)
	assert.Equal(Te, []float64{3, 7, 11}, T.Totals())
}

func TestTableCopies(Te *testing.T) {
	T := testTable()
	r := T.Row(0)
	r[0] = 100
	T.Rows()[1][1] = 100
	T.Boundaries()[0] = 100
	T.Frames()[0] = 100
	assert.Equal(Te, testTable(), T)
}

func TestTableEmpty(Te *testing.T) {
	T := &AreaTable{bounds: []float64{0, 1}}
	f, s := T.Dims()
	assert.Equal(Te, 0, f)
	assert.Equal(Te, 1, s)
	assert.True(Te, math.IsNaN(T.Mean()[0]))
	assert.Equal(Te, []float64{0}, T.StdDev())
	assert.Empty(Te, T.Totals())
	f, s = (&AreaTable{}).Dims()
	assert.Equal(Te, 0, f+s)
}

func TestTableJSON(Te *testing.T) {
	b, err := json.Marshal(testTable())
	require.NoError(Te, err)
	assert.JSONEq(Te, `{"boundaries":[0,1,2],"frames":[0,5,10],"areas":[[1,2],[3,4],[5,6]]}`, string(b))
	T := new(AreaTable)
	require.NoError(Te, json.Unmarshal(b, T))
	assert.Equal(Te, testTable(), T)

	assert.Error(Te, json.Unmarshal([]byte(`{"boundaries":[0,1],"frames":[0],"areas":[[1,2]]}`), T))
	assert.Error(Te, json.Unmarshal([]byte(`{"boundaries":[0,1],"frames":[0,1],"areas":[[1]]}`), T))
}

func TestTableWriteText(Te *testing.T) {
	var buf bytes.Buffer
	require.NoError(Te, testTable().WriteText(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(Te, lines, 4)
	assert.Equal(Te, "# frame 0.500 1.500", lines[0])
	assert.Equal(Te, "5 3.0000 4.0000", lines[2])
}
