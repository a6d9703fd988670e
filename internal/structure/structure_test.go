package structure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubicArgon() *Structure {
	return &Structure{
		Lattice: [3][3]float64{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}},
		Species: []string{"Ar", "Ar"},
		Coords:  [][3]float64{{0, 0, 0}, {3.8, 0, 0}},
	}
}

func TestFormula(t *testing.T) {
	s := &Structure{Species: []string{"Cu", "Au", "Cu", "Cu"}}
	assert.Equal(t, "AuCu3", s.Formula())

	assert.Equal(t, "Ar2", cubicArgon().Formula())
}

func TestMasses(t *testing.T) {
	masses, err := cubicArgon().Masses()
	require.NoError(t, err)
	require.Len(t, masses, 2)
	assert.InDelta(t, 39.95, masses[0], 0.01)

	bad := &Structure{Species: []string{"Zz"}, Coords: [][3]float64{{0, 0, 0}}}
	_, err = bad.Masses()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Zz")
}

func TestCellGeometry(t *testing.T) {
	cell, err := cubicArgon().Cell()
	require.NoError(t, err)

	assert.True(t, cell.Periodic())
	assert.InDelta(t, 1000.0, cell.Volume(), 1e-9)
	assert.InDelta(t, 10.0, cell.MinSpan(), 1e-9)

	// A displacement longer than half the cell wraps to its image.
	d := cell.MinimumImage([3]float64{9, 0, 0})
	assert.InDelta(t, -1.0, d[0], 1e-12)
	assert.InDelta(t, 0.0, d[1], 1e-12)

	f := cell.ToFrac([3]float64{2.5, 5, 7.5})
	assert.InDelta(t, 0.25, f[0], 1e-12)
	assert.InDelta(t, 0.5, f[1], 1e-12)
	assert.InDelta(t, 0.75, f[2], 1e-12)

	back := cell.ToCart(f)
	assert.InDelta(t, 2.5, back[0], 1e-12)
}

func TestNonPeriodic(t *testing.T) {
	s := &Structure{
		Species: []string{"Ar"},
		Coords:  [][3]float64{{1, 2, 3}},
	}
	assert.False(t, s.Periodic())

	cell, err := s.Cell()
	require.NoError(t, err)
	d := cell.MinimumImage([3]float64{100, 0, 0})
	assert.Equal(t, 100.0, d[0])
}

func TestTriclinicMinimumImage(t *testing.T) {
	s := &Structure{
		Lattice: [3][3]float64{{10, 0, 0}, {2, 9, 0}, {0, 1, 8}},
		Species: []string{"Ar"},
		Coords:  [][3]float64{{0, 0, 0}},
	}
	cell, err := s.Cell()
	require.NoError(t, err)

	// The image of a full lattice vector is zero.
	d := cell.MinimumImage([3]float64{2, 9, 0})
	assert.InDelta(t, 0.0, math.Abs(d[0])+math.Abs(d[1])+math.Abs(d[2]), 1e-9)
}

func TestCopyIsDeep(t *testing.T) {
	s := cubicArgon()
	c := s.Copy()
	c.Coords[0][0] = 99

	assert.Equal(t, 0.0, s.Coords[0][0])
}

func TestString(t *testing.T) {
	out := cubicArgon().String()
	assert.Contains(t, out, "Full Formula (Ar2)")
	assert.Contains(t, out, "Lattice")
	assert.Contains(t, out, "Sites (2)")
}
