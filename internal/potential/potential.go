// Package potential evaluates interatomic energies and forces.
package potential

import (
	"math"

	"github.com/davril/atomkit/internal/structure"
)

// Potential computes the potential energy (eV) and per-site forces (eV/Å)
// of a structure.
type Potential interface {
	Compute(s *structure.Structure) (energy float64, forces [][3]float64, err error)
}

// Fmax returns the largest per-site force norm, the convergence measure
// used by the relaxer.
func Fmax(forces [][3]float64) float64 {
	max := 0.0
	for _, f := range forces {
		n2 := f[0]*f[0] + f[1]*f[1] + f[2]*f[2]
		if n2 > max {
			max = n2
		}
	}
	return math.Sqrt(max)
}
