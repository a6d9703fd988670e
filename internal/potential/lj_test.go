package potential

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davril/atomkit/internal/structure"
)

func dimer(symbol string, r float64) *structure.Structure {
	return &structure.Structure{
		Species: []string{symbol, symbol},
		Coords:  [][3]float64{{0, 0, 0}, {r, 0, 0}},
	}
}

func TestDimerMinimum(t *testing.T) {
	lj, err := NewLennardJones()
	require.NoError(t, err)

	// Pure-pair minimum at 2^(1/6) σ with depth ε (up to the cutoff shift).
	const sigma, eps = 3.40, 0.010423
	rmin := math.Pow(2, 1.0/6.0) * sigma

	energy, forces, err := lj.Compute(dimer("Ar", rmin))
	require.NoError(t, err)

	assert.InDelta(t, -eps, energy, 2e-4)
	assert.InDelta(t, 0.0, forces[0][0], 1e-10)
	assert.InDelta(t, 0.0, forces[1][0], 1e-10)
}

func TestDimerForceDirectionAndSymmetry(t *testing.T) {
	lj, err := NewLennardJones()
	require.NoError(t, err)

	// Stretched: attraction pulls the atoms together.
	_, forces, err := lj.Compute(dimer("Ar", 4.5))
	require.NoError(t, err)
	assert.Greater(t, forces[0][0], 0.0)
	assert.Less(t, forces[1][0], 0.0)
	assert.InDelta(t, forces[0][0], -forces[1][0], 1e-14)

	// Compressed: repulsion pushes them apart.
	_, forces, err = lj.Compute(dimer("Ar", 3.0))
	require.NoError(t, err)
	assert.Less(t, forces[0][0], 0.0)
	assert.Greater(t, forces[1][0], 0.0)
}

func TestForcesMatchNumericalGradient(t *testing.T) {
	lj, err := NewLennardJones()
	require.NoError(t, err)

	s := &structure.Structure{
		Lattice: [3][3]float64{{12, 0, 0}, {0, 12, 0}, {0, 0, 12}},
		Species: []string{"Ar", "Ar", "Ar"},
		Coords:  [][3]float64{{0.3, 0.1, 0.2}, {4.0, 0.4, 0.1}, {0.2, 4.2, 0.3}},
	}

	_, forces, err := lj.Compute(s)
	require.NoError(t, err)

	const h = 1e-6
	for i := 0; i < s.NumSites(); i++ {
		for k := 0; k < 3; k++ {
			p := s.Copy()
			p.Coords[i][k] += h
			ePlus, _, err := lj.Compute(p)
			require.NoError(t, err)

			m := s.Copy()
			m.Coords[i][k] -= h
			eMinus, _, err := lj.Compute(m)
			require.NoError(t, err)

			numerical := -(ePlus - eMinus) / (2 * h)
			assert.InDelta(t, numerical, forces[i][k], 1e-6,
				"site %d component %d", i, k)
		}
	}
}

func TestEnergyVanishesBeyondCutoff(t *testing.T) {
	lj, err := NewLennardJones()
	require.NoError(t, err)

	// 2.5 σ = 8.5 Å for Ar.
	energy, forces, err := lj.Compute(dimer("Ar", 9.0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, energy)
	assert.Equal(t, 0.0, forces[0][0])
}

func TestPeriodicImageInteraction(t *testing.T) {
	lj, err := NewLennardJones()
	require.NoError(t, err)

	// In a 10 Å box the pair at 9 Å is 1 Å away through the boundary:
	// strongly repulsive.
	s := dimer("Ar", 9.0)
	s.Lattice = [3][3]float64{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}}

	energy, forces, err := lj.Compute(s)
	require.NoError(t, err)
	assert.Greater(t, energy, 1.0)
	// The image sits just past the lower boundary, so the repulsion pushes
	// site 0 toward +x.
	assert.Greater(t, forces[0][0], 0.0)
}

func TestUnknownElement(t *testing.T) {
	lj, err := NewLennardJones()
	require.NoError(t, err)

	_, _, err = lj.Compute(dimer("Uuo", 3.0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Uuo")
}

func TestSetParams(t *testing.T) {
	lj, err := NewLennardJones()
	require.NoError(t, err)
	lj.SetParams("X", 1.0, 2.0)

	energy, _, err := lj.Compute(dimer("X", math.Pow(2, 1.0/6.0)*2.0))
	require.NoError(t, err)
	assert.Less(t, energy, -0.9)
}

func TestFmax(t *testing.T) {
	forces := [][3]float64{{0, 3, 4}, {1, 0, 0}}
	assert.InDelta(t, 5.0, Fmax(forces), 1e-12)
	assert.Equal(t, 0.0, Fmax(nil))
}
