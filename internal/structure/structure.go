// Package structure holds crystal and molecular structures and reads and
// writes them in the common plain-text formats (VASP POSCAR, extended XYZ).
package structure

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Structure is a collection of sites, optionally in a periodic cell.
// Lattice rows are the cell vectors in Å; a zero lattice means the structure
// is not periodic. Coords are cartesian Å. Velocities (Å/fs) are carried
// only when a dynamics run produced them.
type Structure struct {
	Comment    string
	Lattice    [3][3]float64
	Species    []string
	Coords     [][3]float64
	Velocities [][3]float64
}

// NumSites returns the number of sites.
func (s *Structure) NumSites() int { return len(s.Species) }

// Copy returns a deep copy. Handlers relax or propagate the copy so the
// loaded structure stays untouched.
func (s *Structure) Copy() *Structure {
	c := &Structure{
		Comment: s.Comment,
		Lattice: s.Lattice,
		Species: append([]string(nil), s.Species...),
		Coords:  append([][3]float64(nil), s.Coords...),
	}
	if s.Velocities != nil {
		c.Velocities = append([][3]float64(nil), s.Velocities...)
	}
	return c
}

// Periodic reports whether the structure carries a non-degenerate cell.
func (s *Structure) Periodic() bool {
	c, err := s.Cell()
	return err == nil && c.periodic
}

// Formula returns the reduced-order chemical formula, species sorted
// alphabetically, e.g. "Ar32" or "Cu3Au".
func (s *Structure) Formula() string {
	counts := make(map[string]int)
	for _, sp := range s.Species {
		counts[sp]++
	}
	symbols := make([]string, 0, len(counts))
	for sp := range counts {
		symbols = append(symbols, sp)
	}
	sort.Strings(symbols)

	var b strings.Builder
	for _, sp := range symbols {
		b.WriteString(sp)
		if counts[sp] > 1 {
			fmt.Fprintf(&b, "%d", counts[sp])
		}
	}
	return b.String()
}

// Masses returns the per-site masses in amu, looked up from the element
// table. An unknown symbol is an error.
func (s *Structure) Masses() ([]float64, error) {
	masses := make([]float64, len(s.Species))
	for i, sp := range s.Species {
		m, ok := AtomicMass(sp)
		if !ok {
			return nil, fmt.Errorf("unknown element %q at site %d", sp, i)
		}
		masses[i] = m
	}
	return masses, nil
}

// Cell captures the lattice together with its inverse for repeated
// cartesian/fractional conversions and minimum-image lookups.
type Cell struct {
	lattice  *mat.Dense
	inverse  *mat.Dense
	volume   float64
	periodic bool
}

// Cell builds the geometry helper for the structure's lattice. A zero
// lattice yields a non-periodic cell on which MinimumImage is the identity.
func (s *Structure) Cell() (*Cell, error) {
	l := mat.NewDense(3, 3, []float64{
		s.Lattice[0][0], s.Lattice[0][1], s.Lattice[0][2],
		s.Lattice[1][0], s.Lattice[1][1], s.Lattice[1][2],
		s.Lattice[2][0], s.Lattice[2][1], s.Lattice[2][2],
	})

	vol := mat.Det(l)
	if vol < 1e-10 && vol > -1e-10 {
		return &Cell{lattice: l, volume: 0, periodic: false}, nil
	}

	var inv mat.Dense
	if err := inv.Inverse(l); err != nil {
		return nil, fmt.Errorf("lattice is singular: %w", err)
	}

	if vol < 0 {
		vol = -vol
	}
	return &Cell{lattice: l, inverse: &inv, volume: vol, periodic: true}, nil
}

// Volume returns the cell volume in Å³, zero for non-periodic structures.
func (c *Cell) Volume() float64 { return c.volume }

// Periodic reports whether minimum-image wrapping applies.
func (c *Cell) Periodic() bool { return c.periodic }

// ToFrac converts a cartesian vector to fractional coordinates.
func (c *Cell) ToFrac(v [3]float64) [3]float64 {
	if !c.periodic {
		return v
	}
	return c.mulRow(v, c.inverse)
}

// ToCart converts fractional coordinates to a cartesian vector.
func (c *Cell) ToCart(v [3]float64) [3]float64 {
	if !c.periodic {
		return v
	}
	return c.mulRow(v, c.lattice)
}

// MinimumImage maps the displacement d onto its nearest periodic image.
// The fractional-rounding convention assumes a not-too-skewed cell.
func (c *Cell) MinimumImage(d [3]float64) [3]float64 {
	if !c.periodic {
		return d
	}
	f := c.ToFrac(d)
	for k := 0; k < 3; k++ {
		for f[k] > 0.5 {
			f[k]--
		}
		for f[k] < -0.5 {
			f[k]++
		}
	}
	return c.ToCart(f)
}

// MinSpan returns the shortest perpendicular cell width, the upper bound on
// any valid minimum-image cutoff radius.
func (c *Cell) MinSpan() float64 {
	if !c.periodic {
		return 0
	}
	// width along axis k = volume / area of the opposite face
	span := 0.0
	for k := 0; k < 3; k++ {
		a := c.row((k + 1) % 3)
		b := c.row((k + 2) % 3)
		cross := [3]float64{
			a[1]*b[2] - a[2]*b[1],
			a[2]*b[0] - a[0]*b[2],
			a[0]*b[1] - a[1]*b[0],
		}
		area := norm(cross)
		if area == 0 {
			continue
		}
		w := c.volume / area
		if span == 0 || w < span {
			span = w
		}
	}
	return span
}

func (c *Cell) row(i int) [3]float64 {
	return [3]float64{c.lattice.At(i, 0), c.lattice.At(i, 1), c.lattice.At(i, 2)}
}

func (c *Cell) mulRow(v [3]float64, m *mat.Dense) [3]float64 {
	var out [3]float64
	for j := 0; j < 3; j++ {
		out[j] = v[0]*m.At(0, j) + v[1]*m.At(1, j) + v[2]*m.At(2, j)
	}
	return out
}

func norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// String renders a human-readable summary: formula, lattice, site table.
func (s *Structure) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Full Formula (%s)\n", s.Formula())
	if s.Periodic() {
		b.WriteString("Lattice\n")
		for i, name := range []string{"a", "b", "c"} {
			fmt.Fprintf(&b, "    %s : %10.6f %10.6f %10.6f\n",
				name, s.Lattice[i][0], s.Lattice[i][1], s.Lattice[i][2])
		}
	}
	fmt.Fprintf(&b, "Sites (%d)\n", s.NumSites())
	fmt.Fprintf(&b, "%4s  %-4s %12s %12s %12s\n", "#", "SP", "x", "y", "z")
	for i, sp := range s.Species {
		fmt.Fprintf(&b, "%4d  %-4s %12.6f %12.6f %12.6f\n",
			i, sp, s.Coords[i][0], s.Coords[i][1], s.Coords[i][2])
	}
	return b.String()
}
