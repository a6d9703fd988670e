package structure

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePOSCAR = `fcc Cu
1.0
 3.61 0.00 0.00
 0.00 3.61 0.00
 0.00 0.00 3.61
 Cu
 4
Direct
 0.0 0.0 0.0
 0.5 0.5 0.0
 0.5 0.0 0.5
 0.0 0.5 0.5
`

const sampleXYZ = `2
Lattice="10 0 0 0 10 0 0 0 10" Properties=species:S:1:pos:R:3
Ar 0.0 0.0 0.0
Ar 3.8 0.0 0.0
`

func TestParsePOSCAR(t *testing.T) {
	s, err := FromBytes([]byte(samplePOSCAR), FormatPOSCAR)
	require.NoError(t, err)

	assert.Equal(t, 4, s.NumSites())
	assert.Equal(t, "Cu4", s.Formula())
	assert.Equal(t, "fcc Cu", s.Comment)
	assert.InDelta(t, 3.61, s.Lattice[0][0], 1e-12)
	// Direct coordinates are converted to cartesian.
	assert.InDelta(t, 1.805, s.Coords[1][0], 1e-9)
	assert.InDelta(t, 1.805, s.Coords[1][1], 1e-9)
	assert.InDelta(t, 0.0, s.Coords[1][2], 1e-9)
}

func TestParsePOSCARScaleAndSelective(t *testing.T) {
	in := `scaled
2.0
 1.0 0.0 0.0
 0.0 1.0 0.0
 0.0 0.0 1.0
 Ar
 1
Selective dynamics
Cartesian
 0.5 0.0 0.0 T T T
`
	s, err := FromBytes([]byte(in), FormatPOSCAR)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, s.Lattice[0][0], 1e-12)
	assert.InDelta(t, 1.0, s.Coords[0][0], 1e-12)
}

func TestParsePOSCARErrors(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"vasp4":      "c\n1.0\n1 0 0\n0 1 0\n0 0 1\n 4\nDirect\n",
		"bad mode":   "c\n1.0\n1 0 0\n0 1 0\n0 0 1\nAr\n1\nNonsense\n0 0 0\n",
		"bad counts": "c\n1.0\n1 0 0\n0 1 0\n0 0 1\nAr Cu\n1\nDirect\n0 0 0\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromBytes([]byte(in), FormatPOSCAR)
			assert.Error(t, err)
		})
	}
}

func TestPOSCARRoundTrip(t *testing.T) {
	s, err := FromBytes([]byte(samplePOSCAR), FormatPOSCAR)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writePOSCAR(&buf, s))

	back, err := FromBytes(buf.Bytes(), FormatPOSCAR)
	require.NoError(t, err)

	assert.Equal(t, s.Species, back.Species)
	for i := range s.Coords {
		for k := 0; k < 3; k++ {
			assert.InDelta(t, s.Coords[i][k], back.Coords[i][k], 1e-9)
		}
	}
}

func TestParseXYZ(t *testing.T) {
	s, err := FromBytes([]byte(sampleXYZ), FormatXYZ)
	require.NoError(t, err)

	assert.Equal(t, 2, s.NumSites())
	assert.True(t, s.Periodic())
	assert.InDelta(t, 3.8, s.Coords[1][0], 1e-12)
	assert.Nil(t, s.Velocities)
}

func TestXYZRoundTripWithVelocities(t *testing.T) {
	s := &Structure{
		Lattice:    [3][3]float64{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}},
		Species:    []string{"Ar", "Ar"},
		Coords:     [][3]float64{{0, 0, 0}, {3.8, 0, 0}},
		Velocities: [][3]float64{{0.001, 0, 0}, {-0.001, 0, 0}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXYZ(&buf, s))

	back, err := FromBytes(buf.Bytes(), FormatXYZ)
	require.NoError(t, err)
	require.NotNil(t, back.Velocities)
	assert.InDelta(t, 0.001, back.Velocities[0][0], 1e-9)
	assert.InDelta(t, 10.0, back.Lattice[0][0], 1e-9)
}

func TestParseXYZErrors(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"bad count":   "x\ncomment\n",
		"truncated":   "3\ncomment\nAr 0 0 0\n",
		"bad coord":   "1\ncomment\nAr 0 zero 0\n",
		"bad lattice": "1\nLattice=\"1 2 3\"\nAr 0 0 0\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromBytes([]byte(in), FormatXYZ)
			assert.Error(t, err)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatPOSCAR, FormatForPath("POSCAR"))
	assert.Equal(t, FormatPOSCAR, FormatForPath("/tmp/CONTCAR.relax"))
	assert.Equal(t, FormatPOSCAR, FormatForPath("slab.vasp"))
	assert.Equal(t, FormatXYZ, FormatForPath("cluster.xyz"))
	assert.Equal(t, Format(""), FormatForPath("input.dat"))
}

func TestReadAutoDetectBySniffing(t *testing.T) {
	dir := t.TempDir()

	xyzPath := filepath.Join(dir, "input.dat")
	require.NoError(t, os.WriteFile(xyzPath, []byte(sampleXYZ), 0644))
	s, err := Read(xyzPath)
	require.NoError(t, err)
	assert.Equal(t, "Ar2", s.Formula())

	poscarPath := filepath.Join(dir, "structure.in")
	require.NoError(t, os.WriteFile(poscarPath, []byte(samplePOSCAR), 0644))
	s, err = Read(poscarPath)
	require.NoError(t, err)
	assert.Equal(t, "Cu4", s.Formula())
}

func TestWritePicksFormatFromName(t *testing.T) {
	dir := t.TempDir()
	s, err := FromBytes([]byte(samplePOSCAR), FormatPOSCAR)
	require.NoError(t, err)

	vaspPath := filepath.Join(dir, "out.vasp")
	require.NoError(t, s.Write(vaspPath))
	data, err := os.ReadFile(vaspPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Direct")

	xyzPath := filepath.Join(dir, "out.xyz")
	require.NoError(t, s.Write(xyzPath))
	back, err := Read(xyzPath)
	require.NoError(t, err)
	assert.Equal(t, 4, back.NumSites())
}
