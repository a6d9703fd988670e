// Package relax minimizes structure energies with the FIRE algorithm
// (Bitzek et al., Phys. Rev. Lett. 97, 170201).
package relax

import (
	"fmt"
	"math"

	"github.com/davril/atomkit/internal/potential"
	"github.com/davril/atomkit/internal/structure"
)

// Options tune the minimizer. Zero values pick the defaults.
type Options struct {
	// Fmax is the convergence threshold on the largest per-site force
	// norm, in eV/Å. Default 0.1.
	Fmax float64
	// MaxSteps caps the number of optimizer steps. Default 500.
	MaxSteps int
	// MaxMove caps the per-site displacement in one step, in Å.
	// Default 0.2.
	MaxMove float64
}

// FIRE parameters from the original paper.
const (
	fireNmin   = 5
	fireFinc   = 1.1
	fireFdec   = 0.5
	fireAstart = 0.1
	fireFa     = 0.99
	fireDt0    = 0.25
	fireDtMax  = 2.5
)

// Result reports the outcome of one relaxation.
type Result struct {
	FinalStructure *structure.Structure
	Energy         float64 // eV
	Fmax           float64 // eV/Å
	Steps          int
	Converged      bool
}

// Relaxer drives the minimization of structures against one potential.
type Relaxer struct {
	pot  potential.Potential
	opts Options
}

// New returns a Relaxer, filling unset options with defaults.
func New(pot potential.Potential, opts Options) *Relaxer {
	if opts.Fmax <= 0 {
		opts.Fmax = 0.1
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 500
	}
	if opts.MaxMove <= 0 {
		opts.MaxMove = 0.2
	}
	return &Relaxer{pot: pot, opts: opts}
}

// Relax minimizes the site positions of a copy of s. The cell is held
// fixed. Running out of steps is not an error; the Result reports
// Converged false and carries the last geometry.
func (r *Relaxer) Relax(s *structure.Structure) (*Result, error) {
	cur := s.Copy()
	cur.Velocities = nil

	n := cur.NumSites()
	if n == 0 {
		return nil, fmt.Errorf("relax: structure has no sites")
	}

	vel := make([][3]float64, n)
	dt := fireDt0
	alpha := fireAstart
	upSteps := 0

	energy, forces, err := r.pot.Compute(cur)
	if err != nil {
		return nil, fmt.Errorf("relax: %w", err)
	}

	steps := 0
	for ; steps < r.opts.MaxSteps; steps++ {
		if potential.Fmax(forces) < r.opts.Fmax {
			break
		}

		// Semi-implicit Euler step with unit pseudo-masses.
		power := 0.0
		vNorm, fNorm := 0.0, 0.0
		for i := 0; i < n; i++ {
			for k := 0; k < 3; k++ {
				vel[i][k] += dt * forces[i][k]
				power += vel[i][k] * forces[i][k]
				vNorm += vel[i][k] * vel[i][k]
				fNorm += forces[i][k] * forces[i][k]
			}
		}
		vNorm = math.Sqrt(vNorm)
		fNorm = math.Sqrt(fNorm)

		if power > 0 {
			// Steer the velocity toward the force direction.
			if fNorm > 0 {
				for i := 0; i < n; i++ {
					for k := 0; k < 3; k++ {
						vel[i][k] = (1-alpha)*vel[i][k] + alpha*vNorm*forces[i][k]/fNorm
					}
				}
			}
			upSteps++
			if upSteps > fireNmin {
				dt = math.Min(dt*fireFinc, fireDtMax)
				alpha *= fireFa
			}
		} else {
			for i := range vel {
				vel[i] = [3]float64{}
			}
			dt *= fireFdec
			alpha = fireAstart
			upSteps = 0
		}

		for i := 0; i < n; i++ {
			var move [3]float64
			moveNorm := 0.0
			for k := 0; k < 3; k++ {
				move[k] = dt * vel[i][k]
				moveNorm += move[k] * move[k]
			}
			moveNorm = math.Sqrt(moveNorm)
			if moveNorm > r.opts.MaxMove {
				for k := 0; k < 3; k++ {
					move[k] *= r.opts.MaxMove / moveNorm
				}
			}
			for k := 0; k < 3; k++ {
				cur.Coords[i][k] += move[k]
			}
		}

		energy, forces, err = r.pot.Compute(cur)
		if err != nil {
			return nil, fmt.Errorf("relax: step %d: %w", steps+1, err)
		}
	}

	fmax := potential.Fmax(forces)
	return &Result{
		FinalStructure: cur,
		Energy:         energy,
		Fmax:           fmax,
		Steps:          steps,
		Converged:      fmax < r.opts.Fmax,
	}, nil
}
