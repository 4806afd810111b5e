package dcd

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v3 "github.com/rmera/protarea/v3"
)

// lastFrame is what the root package expects at the end of a trajectory.
type lastFrame interface {
	NormalLastFrameTermination()
	FileName() string
	Critical() bool
}

func testFrames() []*v3.Matrix {
	a, _ := v3.NewMatrix([]float64{1.25, -4.5, 7.75, 0, 0, 0, 10, 20.5, -30.25})
	b, _ := v3.NewMatrix([]float64{2, 3, 4, -1, 2.5, 3.5, 100, 200, 300})
	c, _ := v3.NewMatrix([]float64{0.5, 0.5, 0.5, 1, 1, 1, 2, 2, 2})
	return []*v3.Matrix{a, b, c}
}

var testBox = []float64{50, 0, 0, 0, 60, 0, 0, 0, 70}

func fill(Te *testing.T, w *DCDWObj) {
	for i, f := range testFrames() {
		if i == 1 {
			require.NoError(Te, w.WNext(f))
		} else {
			require.NoError(Te, w.WNext(f, testBox))
		}
	}
}

func checkFrames(Te *testing.T, r *DCDObj) {
	c := v3.Zeros(3)
	box := make([]float64, 9)
	for i, f := range testFrames() {
		require.NoError(Te, r.Next(c, box), "frame %d", i)
		for j := 0; j < 3; j++ {
			assert.Equal(Te, f.Vec(j), c.Vec(j), "frame %d atom %d", i, j)
		}
		if i == 1 {
			assert.Equal(Te, make([]float64, 9), box)
		} else {
			assert.Equal(Te, testBox, box)
		}
	}
	err := r.Next(c)
	require.Error(Te, err)
	_, ok := err.(lastFrame)
	assert.True(Te, ok, "expected a last frame error, got %v", err)
	assert.False(Te, r.Readable())
}

func TestStreamRoundTrip(Te *testing.T) {
	for _, endian := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		var buf bytes.Buffer
		w := new(DCDWObj)
		require.NoError(Te, w.init(&buf, 3, endian))
		assert.Equal(Te, 3, w.Len())
		fill(Te, w)
		require.NoError(Te, w.Close())
		r, err := NewReader(&buf)
		require.NoError(Te, err, "%v", endian)
		assert.Equal(Te, 3, r.Len())
		assert.Equal(Te, 0, r.Frames())
		checkFrames(Te, r)
	}
}

func TestFileRoundTrip(Te *testing.T) {
	dir := Te.TempDir()
	for _, name := range []string{"t.dcd", "t.dcd.gz", "t.dcd.lzw"} {
		p := filepath.Join(dir, name)
		w, err := NewWriter(p, 3)
		require.NoError(Te, err)
		fill(Te, w)
		require.NoError(Te, w.Close())
		require.NoError(Te, w.Close())
		r, err := New(p)
		require.NoError(Te, err, name)
		if name == "t.dcd" {
			assert.Equal(Te, 3, r.Frames())
		}
		checkFrames(Te, r)
	}
}

func TestSkipFrames(Te *testing.T) {
	var buf bytes.Buffer
	w, err := NewStreamWriter(&buf, 3)
	require.NoError(Te, err)
	fill(Te, w)
	require.NoError(Te, w.Close())
	r, err := NewReader(&buf)
	require.NoError(Te, err)
	require.NoError(Te, r.Next(nil))
	require.NoError(Te, r.Next(nil))
	c := v3.Zeros(3)
	require.NoError(Te, r.Next(c))
	assert.Equal(Te, [3]float64{2, 2, 2}, c.Vec(2))
}

func TestErrors(Te *testing.T) {
	_, err := NewStreamWriter(&bytes.Buffer{}, 0)
	assert.Error(Te, err)

	var buf bytes.Buffer
	w, err := NewStreamWriter(&buf, 3)
	require.NoError(Te, err)
	assert.Error(Te, w.WNext(v3.Zeros(2)))
	fill(Te, w)
	require.NoError(Te, w.Close())
	assert.Error(Te, w.WNext(v3.Zeros(3)))

	full := buf.Bytes()
	r, err := NewReader(bytes.NewReader(full))
	require.NoError(Te, err)
	assert.Error(Te, r.Next(v3.Zeros(4)))

	//a frame cut in the middle is an error, not the end of the trajectory.
	r, err = NewReader(bytes.NewReader(full[:len(full)-10]))
	require.NoError(Te, err)
	require.NoError(Te, r.Next(nil))
	require.NoError(Te, r.Next(nil))
	err = r.Next(nil)
	require.Error(Te, err)
	_, ok := err.(lastFrame)
	assert.False(Te, ok)
	assert.Equal(Te, "dcd", err.(Error).Format())

	_, err = NewReader(bytes.NewReader([]byte("not a dcd file at all, not at all")))
	assert.Error(Te, err)
	_, err = NewReader(bytes.NewReader(full[:50]))
	assert.Error(Te, err)
	_, err = New(filepath.Join(Te.TempDir(), "missing.dcd"))
	assert.Error(Te, err)

	//fixed atoms
	bad := bytes.Clone(full)
	binary.LittleEndian.PutUint32(bad[8+4*8:], 2)
	_, err = NewReader(bytes.NewReader(bad))
	assert.Error(Te, err)

	var closed DCDObj
	assert.Error(Te, closed.Next(nil))
}
