package areaplot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/protarea"
)

func testTable(Te *testing.T, js string) *protarea.AreaTable {
	T := new(protarea.AreaTable)
	require.NoError(Te, json.Unmarshal([]byte(js), T))
	return T
}

const tableJSON = `{"boundaries":[0,1,2,3],"frames":[0,2,4],"areas":[[10,20,30],[12,18,33],[11,22,29]]}`

func TestProfile(Te *testing.T) {
	T := testTable(Te, tableJSON)
	for _, name := range []string{"profile.png", "profile.svg"} {
		name = filepath.Join(Te.TempDir(), name)
		require.NoError(Te, Profile(T, "Test profile", name))
		info, err := os.Stat(name)
		require.NoError(Te, err)
		assert.Positive(Te, info.Size())
	}
}

func TestHeatMap(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "heat.png")
	require.NoError(Te, HeatMap(testTable(Te, tableJSON), "Test heat map", name))
	info, err := os.Stat(name)
	require.NoError(Te, err)
	assert.Positive(Te, info.Size())
	//a flat table still has a color scale.
	flat := testTable(Te, `{"boundaries":[0,1,2],"frames":[0,1],"areas":[[5,5],[5,5]]}`)
	assert.NoError(Te, HeatMap(flat, "Flat", filepath.Join(Te.TempDir(), "flat.png")))
}

func TestEmpty(Te *testing.T) {
	T := testTable(Te, `{"boundaries":[0,1],"frames":[],"areas":[]}`)
	assert.Error(Te, Profile(T, "", filepath.Join(Te.TempDir(), "a.png")))
	assert.Error(Te, HeatMap(T, "", filepath.Join(Te.TempDir(), "b.png")))
}
