package protarea

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/protarea/voro"
)

func TestBuildPointSet(Te *testing.T) {
	particles := []Particle{
		{X: 1, Y: 2, Protein: true},
		{X: 3, Y: 4},
		{X: 5, Y: 6, Protein: true},
	}
	box := Box{X: 10, Y: 20, Z: 30}
	P, err := BuildPointSet(particles, box, true)
	require.NoError(Te, err)
	assert.Equal(Te, []voro.Point{{X: 1, Y: 2}, {X: 5, Y: 6}}, P.Protein)
	assert.Equal(Te, []voro.Point{{X: 3, Y: 4}}, P.NonProtein)
	require.Len(Te, P.Images, 8*len(particles))
	assert.Equal(Te, 8*3+3, P.Len())
	for k, t := range translations {
		for j, p := range particles {
			want := voro.Point{X: p.X + t[0]*box.X, Y: p.Y + t[1]*box.Y}
			assert.Equal(Te, want, P.Images[k*len(particles)+j], "translation %d particle %d", k, j)
		}
	}
	all := P.All()
	assert.Equal(Te, P.Protein, all[:2])
	assert.Equal(Te, P.NonProtein, all[2:3])
	assert.Equal(Te, P.Images, all[3:])
}

func TestTranslationsOrder(Te *testing.T) {
	assert.Equal(Te, [2]float64{1, 0}, translations[0])
	assert.Equal(Te, [2]float64{0, -1}, translations[7])
	seen := make(map[[2]float64]bool)
	for _, t := range translations {
		assert.False(Te, seen[t])
		assert.False(Te, t == [2]float64{0, 0})
		seen[t] = true
	}
}

func TestBuildPointSetNoPBC(Te *testing.T) {
	//the box is not needed without images.
	P, err := BuildPointSet([]Particle{{X: 1, Y: 1, Protein: true}}, Box{}, false)
	require.NoError(Te, err)
	assert.Empty(Te, P.Images)
	assert.Equal(Te, 1, P.Len())
}

func TestBuildPointSetBadBox(Te *testing.T) {
	for _, b := range []Box{{}, {X: 10}, {X: -1, Y: 10}} {
		_, err := BuildPointSet([]Particle{{Protein: true}}, b, true)
		assert.ErrorIs(Te, err, ErrConfiguration, "%v", b)
	}
}
