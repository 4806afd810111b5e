package protarea

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomParticles(r *rand.Rand, n int, box Box, protein float64) []Particle {
	ret := make([]Particle, n)
	for i := range ret {
		ret[i] = Particle{X: r.Float64() * box.X, Y: r.Float64() * box.Y, Z: 0.5, Protein: r.Float64() < protein}
	}
	return ret
}

func areaOf(Te *testing.T, particles []Particle, box Box) float64 {
	Te.Helper()
	set, err := BuildPointSet(particles, box, true)
	require.NoError(Te, err)
	a, err := SliceArea(set, false)
	require.NoError(Te, err)
	return a
}

func TestSliceAreaNoProtein(Te *testing.T) {
	set, err := BuildPointSet([]Particle{{X: 1, Y: 1}, {X: 2, Y: 3}}, Box{X: 10, Y: 10}, true)
	require.NoError(Te, err)
	a, err := SliceArea(set, false)
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, a)
	a, err = SliceArea(&PointSet{}, false)
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, a)
}

func TestSliceAreaSinglePoint(Te *testing.T) {
	for _, L := range []float64{1, 10, 37.5} {
		a := areaOf(Te, []Particle{{X: L / 3, Y: L / 4, Protein: true}}, Box{X: L, Y: L, Z: L})
		assert.InDelta(Te, L*L, a, 1e-9*L*L, "L=%v", L)
	}
	a := areaOf(Te, []Particle{{X: 1, Y: 1, Protein: true}}, Box{X: 4, Y: 9})
	assert.InDelta(Te, 36, a, 1e-9)
}

func TestSliceAreaTiling(Te *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	box := Box{X: 30, Y: 20, Z: 10}
	particles := randomParticles(r, 200, box, 1)
	//all protein: the cells tile the box.
	assert.InDelta(Te, box.X*box.Y, areaOf(Te, particles, box), 1e-6)

	//protein and non-protein areas add up to the box.
	particles = randomParticles(r, 200, box, 0.4)
	complement := make([]Particle, len(particles))
	for i, p := range particles {
		complement[i] = p
		complement[i].Protein = !p.Protein
	}
	a, b := areaOf(Te, particles, box), areaOf(Te, complement, box)
	assert.Greater(Te, a, 0.0)
	assert.Greater(Te, b, 0.0)
	assert.InDelta(Te, box.X*box.Y, a+b, 1e-6)
}

func TestSliceAreaInvariance(Te *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	box := Box{X: 25, Y: 25, Z: 10}
	particles := randomParticles(r, 150, box, 0.5)
	ref := areaOf(Te, particles, box)

	shifted := make([]Particle, len(particles))
	for i, p := range particles {
		shifted[i] = p
		shifted[i].X += 3.3
		shifted[i].Y -= 1.2
	}
	assert.InDelta(Te, ref, areaOf(Te, shifted, box), 1e-6)

	permuted := append([]Particle(nil), particles...)
	r.Shuffle(len(permuted), func(i, j int) { permuted[i], permuted[j] = permuted[j], permuted[i] })
	assert.InDelta(Te, ref, areaOf(Te, permuted, box), 1e-6)
}

func TestSliceAreaDuplicate(Te *testing.T) {
	box := Box{X: 10, Y: 10}
	particles := []Particle{{X: 2, Y: 2, Protein: true}, {X: 2, Y: 2, Protein: true}, {X: 7, Y: 6}}
	single := []Particle{{X: 2, Y: 2, Protein: true}, {X: 7, Y: 6}}
	assert.InDelta(Te, areaOf(Te, single, box), areaOf(Te, particles, box), 1e-9)
}

func TestSliceAreaUnbounded(Te *testing.T) {
	set, err := BuildPointSet([]Particle{{X: 1, Y: 1, Protein: true}, {X: 5, Y: 5}}, Box{}, false)
	require.NoError(Te, err)
	_, err = SliceArea(set, false)
	assert.ErrorIs(Te, err, ErrDataConsistency)
	assert.NotErrorIs(Te, err, ErrGeometry)
}

func TestSliceAreaEnclosed(Te *testing.T) {
	//a protein point surrounded by a ring of 8 atoms at distance 2 has an octagonal cell
	//of apothem 1, with or without images.
	particles := []Particle{{X: 5, Y: 5, Protein: true}}
	for k := 0; k < 8; k++ {
		t := float64(k) * math.Pi / 4
		particles = append(particles, Particle{X: 5 + 2*math.Cos(t), Y: 5 + 2*math.Sin(t)})
	}
	want := 8 * math.Tan(math.Pi/8)
	for _, periodic := range []bool{false, true} {
		set, err := BuildPointSet(particles, Box{X: 10, Y: 10}, periodic)
		require.NoError(Te, err)
		a, err := SliceArea(set, false)
		require.NoError(Te, err)
		assert.InDelta(Te, want, a, 1e-9)
	}
}
