package stf

import (
	"bytes"
	"path/filepath"
	"strings"
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
	a, _ := v3.NewMatrix([]float64{1.23, -4.56, 7.891, 0, 0, 0, 10.005, 20.5, -30.25})
	b, _ := v3.NewMatrix([]float64{2, 3, 4, -1.11, 2.22, 3.33, 100, 200, 300})
	return []*v3.Matrix{a, b}
}

var testBox = []float64{50, 0, 0, 0, 60, 0, 0, 0, 70}

func writeStream(Te *testing.T, comp Compression, header map[string]string) *bytes.Buffer {
	var buf bytes.Buffer
	w, err := NewStreamWriter(&buf, comp, 3, header)
	require.NoError(Te, err)
	for i, f := range testFrames() {
		if i == 0 {
			require.NoError(Te, w.WNext(f, testBox))
		} else {
			require.NoError(Te, w.WNext(f))
		}
	}
	require.NoError(Te, w.Close())
	return &buf
}

func TestStreamRoundTrip(Te *testing.T) {
	for _, comp := range []Compression{Zstd, Gzip, Flate, LZW} {
		buf := writeStream(Te, comp, map[string]string{"title": "test"})
		r, m, err := NewStreamReader(buf, comp)
		require.NoError(Te, err, "compression %d", comp)
		assert.Equal(Te, "test", m["title"])
		assert.Equal(Te, "2", m["prec"])
		assert.Equal(Te, 3, r.Len())
		assert.True(Te, r.Readable())
		c := v3.Zeros(3)
		box := make([]float64, 9)
		for i, f := range testFrames() {
			require.NoError(Te, r.Next(c, box))
			for j := 0; j < 3; j++ {
				want, got := f.Vec(j), c.Vec(j)
				for k := range want {
					assert.InDelta(Te, want[k], got[k], 0.005+1e-9, "frame %d atom %d", i, j)
				}
			}
			if i == 0 {
				assert.InDeltaSlice(Te, testBox, box, 1e-9)
			} else {
				assert.Equal(Te, make([]float64, 9), box, "frames without box give a zero box")
			}
		}
		err = r.Next(c)
		require.Error(Te, err)
		_, ok := err.(lastFrame)
		assert.True(Te, ok, "expected the last frame error, got %v", err)
		assert.False(Te, r.Readable())
	}
}

func TestPrecision(Te *testing.T) {
	buf := writeStream(Te, Zstd, map[string]string{"prec": "4"})
	r, m, err := NewStreamReader(buf, Zstd)
	require.NoError(Te, err)
	assert.Equal(Te, "4", m["prec"])
	c := v3.Zeros(3)
	require.NoError(Te, r.Next(c))
	assert.InDelta(Te, 7.891, c.At(0, 2), 1e-9)
	assert.InDelta(Te, 10.005, c.At(2, 0), 1e-9)
	_, err = NewStreamWriter(&bytes.Buffer{}, Zstd, 3, map[string]string{"prec": "many"})
	assert.Error(Te, err)
}

func TestSkipFrame(Te *testing.T) {
	buf := writeStream(Te, Gzip, nil)
	r, _, err := NewStreamReader(buf, Gzip)
	require.NoError(Te, err)
	require.NoError(Te, r.Next(nil))
	c := v3.Zeros(3)
	require.NoError(Te, r.Next(c))
	assert.Equal(Te, [3]float64{100, 200, 300}, c.Vec(2))
}

func TestFileRoundTrip(Te *testing.T) {
	for _, name := range []string{"traj.stf", "traj.stz", "traj.stl", "traj.str"} {
		name = filepath.Join(Te.TempDir(), name)
		w, err := NewWriter(name, 3, nil)
		require.NoError(Te, err)
		for _, f := range testFrames() {
			require.NoError(Te, w.WNext(f, testBox))
		}
		require.NoError(Te, w.Close())
		r, _, err := New(name)
		require.NoError(Te, err, name)
		c := v3.Zeros(3)
		frames := 0
		for ; r.Next(c) == nil; frames++ {
		}
		assert.Equal(Te, 2, frames, name)
	}
}

func TestWriteErrors(Te *testing.T) {
	w, err := NewStreamWriter(&bytes.Buffer{}, Zstd, 3, nil)
	require.NoError(Te, err)
	assert.Error(Te, w.WNext(nil))
	assert.Error(Te, w.WNext(v3.Zeros(2)))
	require.NoError(Te, w.Close())
	assert.Error(Te, w.WNext(v3.Zeros(3)))
	_, err = NewStreamWriter(&bytes.Buffer{}, Zstd, 0, nil)
	assert.Error(Te, err)
	_, err = NewStreamWriter(&bytes.Buffer{}, Zstd, 3, map[string]string{"a=b": "c"})
	assert.Error(Te, err)
}

func TestMalformed(Te *testing.T) {
	var buf bytes.Buffer
	w, err := NewStreamWriter(&buf, LZW, 3, nil)
	require.NoError(Te, err)
	require.NoError(Te, w.Close())
	//a stream that ends right after the header has no frames.
	r, _, err := NewStreamReader(&buf, LZW)
	require.NoError(Te, err)
	_, ok := r.Next(v3.Zeros(3)).(lastFrame)
	assert.True(Te, ok)

	_, _, err = NewStreamReader(strings.NewReader("not compressed"), Gzip)
	assert.Error(Te, err)
	_, _, err = New(filepath.Join(Te.TempDir(), "missing.stf"))
	assert.Error(Te, err)
}

func TestCompressionFor(Te *testing.T) {
	assert.Equal(Te, Zstd, CompressionFor("a.stf"))
	assert.Equal(Te, Gzip, CompressionFor("a.STZ"))
	assert.Equal(Te, LZW, CompressionFor("a.stl"))
	assert.Equal(Te, Flate, CompressionFor("a.str"))
	assert.Equal(Te, Zstd, CompressionFor(""))
}
