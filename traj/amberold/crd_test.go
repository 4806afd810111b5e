package amberold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v3 "github.com/rmera/protarea/v3"
)

type lastFrame interface {
	NormalLastFrameTermination()
	FileName() string
	Critical() bool
}

// mdcrd writes frames of natoms atoms, where atom i of frame f is at (f, i, -i),
// with the box line if box is true.
func mdcrd(natoms, frames int, box bool) string {
	var b strings.Builder
	b.WriteString("title of the trajectory\n")
	for f := 0; f < frames; f++ {
		n := 0
		for i := 0; i < natoms; i++ {
			for _, v := range []float64{float64(f), float64(i), -float64(i) - 100} {
				fmt.Fprintf(&b, "%8.3f", v)
				n++
				if n%fieldsPerLine == 0 {
					b.WriteString("\n")
				}
			}
		}
		if n%fieldsPerLine != 0 {
			b.WriteString("\n")
		}
		if box {
			fmt.Fprintf(&b, "%8.3f%8.3f%8.3f\n", 30.0+float64(f), 40.0, 50.0)
		}
	}
	return b.String()
}

func TestRead(Te *testing.T) {
	for _, natoms := range []int{2, 4, 7} {
		for _, box := range []bool{true, false} {
			C, err := NewReader(strings.NewReader(mdcrd(natoms, 3, box)), natoms)
			require.NoError(Te, err)
			assert.Equal(Te, "title of the trajectory", C.Title())
			assert.Equal(Te, box, C.HasBox(), "%d atoms", natoms)
			assert.Equal(Te, natoms, C.Len())
			c := v3.Zeros(natoms)
			b := make([]float64, 9)
			for f := 0; f < 3; f++ {
				require.NoError(Te, C.Next(c, b))
				for i := 0; i < natoms; i++ {
					assert.Equal(Te, [3]float64{float64(f), float64(i), -float64(i) - 100}, c.Vec(i))
				}
				if box {
					assert.Equal(Te, []float64{30 + float64(f), 0, 0, 0, 40, 0, 0, 0, 50}, b)
				} else {
					assert.Equal(Te, make([]float64, 9), b)
				}
			}
			err = C.Next(c)
			_, ok := err.(lastFrame)
			assert.True(Te, ok, "expected the last frame, got %v", err)
			assert.False(Te, C.Readable())
		}
	}
}

func TestSkipAndFile(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "traj.mdcrd")
	require.NoError(Te, os.WriteFile(name, []byte(mdcrd(5, 2, true)), 0o644))
	C, err := New(name, 5)
	require.NoError(Te, err)
	require.NoError(Te, C.Next(nil))
	c := v3.Zeros(5)
	require.NoError(Te, C.Next(c))
	assert.Equal(Te, [3]float64{1, 4, -104}, c.Vec(4))
	assert.Error(Te, C.Next(c))
	C.Close()
}

func TestErrors(Te *testing.T) {
	_, err := NewReader(strings.NewReader("title\n"), 0)
	assert.Error(Te, err)
	_, err = NewReader(strings.NewReader(""), 3)
	assert.Error(Te, err)
	_, err = New(filepath.Join(Te.TempDir(), "missing.crd"), 3)
	assert.Error(Te, err)

	C, err := NewReader(strings.NewReader(mdcrd(4, 1, false)), 4)
	require.NoError(Te, err)
	assert.Error(Te, C.Next(v3.Zeros(3)))

	//the frame ends before all the atoms are read.
	full := mdcrd(4, 1, false)
	C, err = NewReader(strings.NewReader(full[:len(full)-20]), 4)
	require.NoError(Te, err)
	err = C.Next(nil)
	require.Error(Te, err)
	_, ok := err.(lastFrame)
	assert.False(Te, ok)

	C, err = NewReader(strings.NewReader("title\n   1.000     abc   3.000\n"), 1)
	require.NoError(Te, err)
	assert.Error(Te, C.Next(nil))
}
