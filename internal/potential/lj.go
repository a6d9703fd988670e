package potential

import (
	_ "embed"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/davril/atomkit/internal/structure"
)

//go:embed data/lj.yaml
var ljYAML []byte

// CutoffFactor is the pair cutoff radius in units of the pair σ. The pair
// energy is shifted so it vanishes at the cutoff.
const CutoffFactor = 2.5

type ljParams struct {
	Epsilon float64 `yaml:"epsilon"`
	Sigma   float64 `yaml:"sigma"`
}

// LennardJones is a 12-6 pair potential with per-element parameters and
// Lorentz-Berthelot mixing for unlike pairs.
type LennardJones struct {
	params map[string]ljParams
}

// NewLennardJones loads the embedded parameter table.
func NewLennardJones() (*LennardJones, error) {
	params := make(map[string]ljParams)
	if err := yaml.Unmarshal(ljYAML, &params); err != nil {
		return nil, fmt.Errorf("lj: parse parameter table: %w", err)
	}
	return &LennardJones{params: params}, nil
}

// SetParams overrides or adds the parameters for one element.
func (lj *LennardJones) SetParams(symbol string, epsilon, sigma float64) {
	lj.params[symbol] = ljParams{Epsilon: epsilon, Sigma: sigma}
}

// Compute evaluates the total energy and forces under the minimum-image
// convention. Every species in s must appear in the parameter table.
func (lj *LennardJones) Compute(s *structure.Structure) (float64, [][3]float64, error) {
	n := s.NumSites()
	site := make([]ljParams, n)
	for i, sp := range s.Species {
		p, ok := lj.params[sp]
		if !ok {
			return 0, nil, fmt.Errorf("lj: no parameters for element %q", sp)
		}
		site[i] = p
	}

	cell, err := s.Cell()
	if err != nil {
		return 0, nil, fmt.Errorf("lj: %w", err)
	}

	// The minimum-image convention is only valid up to half the
	// narrowest cell span.
	rcCap := math.Inf(1)
	if cell.Periodic() {
		rcCap = cell.MinSpan() / 2
	}

	energy := 0.0
	forces := make([][3]float64, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			eps := math.Sqrt(site[i].Epsilon * site[j].Epsilon)
			sig := (site[i].Sigma + site[j].Sigma) / 2

			rc := CutoffFactor * sig
			if rc > rcCap {
				rc = rcCap
			}

			d := [3]float64{
				s.Coords[j][0] - s.Coords[i][0],
				s.Coords[j][1] - s.Coords[i][1],
				s.Coords[j][2] - s.Coords[i][2],
			}
			d = cell.MinimumImage(d)
			r2 := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
			if r2 >= rc*rc {
				continue
			}
			r := math.Sqrt(r2)
			if r < 1e-8 {
				return 0, nil, fmt.Errorf("lj: sites %d and %d coincide", i, j)
			}

			sr6 := math.Pow(sig/r, 6)
			sr12 := sr6 * sr6
			src6 := math.Pow(sig/rc, 6)
			shift := 4 * eps * (src6*src6 - src6)

			energy += 4*eps*(sr12-sr6) - shift

			// force on j along +d, Newton's third law on i
			f := 24 * eps * (2*sr12 - sr6) / r2
			for k := 0; k < 3; k++ {
				forces[j][k] += f * d[k]
				forces[i][k] -= f * d[k]
			}
		}
	}

	return energy, forces, nil
}
