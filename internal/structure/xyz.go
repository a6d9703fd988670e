package structure

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseXYZ reads one (extended) XYZ frame: an atom count, a comment line
// that may carry a Lattice="..." entry, then one line per site. Extra
// columns beyond x y z are taken as velocities when present.
func parseXYZ(r io.Reader) (*Structure, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("xyz: empty input")
	}
	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("xyz: bad atom count %q", strings.TrimSpace(sc.Text()))
	}

	if !sc.Scan() {
		return nil, fmt.Errorf("xyz: missing comment line")
	}
	comment := sc.Text()

	s := &Structure{Comment: strings.TrimSpace(comment)}
	if lat, ok, err := parseXYZLattice(comment); err != nil {
		return nil, err
	} else if ok {
		s.Lattice = lat
	}

	hasVel := false
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("xyz: truncated at site %d of %d", i, n)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			return nil, fmt.Errorf("xyz: site %d: want symbol and 3 coordinates, got %d fields", i, len(fields))
		}

		var xyz [3]float64
		for k := 0; k < 3; k++ {
			xyz[k], err = strconv.ParseFloat(fields[1+k], 64)
			if err != nil {
				return nil, fmt.Errorf("xyz: site %d: bad coordinate %q", i, fields[1+k])
			}
		}
		s.Species = append(s.Species, fields[0])
		s.Coords = append(s.Coords, xyz)

		if len(fields) >= 7 {
			var vel [3]float64
			ok := true
			for k := 0; k < 3; k++ {
				vel[k], err = strconv.ParseFloat(fields[4+k], 64)
				if err != nil {
					ok = false
					break
				}
			}
			if ok {
				if !hasVel {
					s.Velocities = make([][3]float64, i)
					hasVel = true
				}
				s.Velocities = append(s.Velocities, vel)
			}
		} else if hasVel {
			return nil, fmt.Errorf("xyz: site %d: velocity columns missing on some lines", i)
		}
	}

	return s, sc.Err()
}

// parseXYZLattice extracts the row-major 9-component Lattice="..." entry
// from an extended-XYZ comment line.
func parseXYZLattice(comment string) ([3][3]float64, bool, error) {
	var lat [3][3]float64

	idx := strings.Index(comment, `Lattice="`)
	if idx < 0 {
		return lat, false, nil
	}
	rest := comment[idx+len(`Lattice="`):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return lat, false, fmt.Errorf("xyz: unterminated Lattice entry")
	}

	fields := strings.Fields(rest[:end])
	if len(fields) != 9 {
		return lat, false, fmt.Errorf("xyz: Lattice entry has %d components, want 9", len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return lat, false, fmt.Errorf("xyz: bad Lattice component %q", f)
		}
		lat[i/3][i%3] = v
	}
	return lat, true, nil
}

// WriteXYZ writes one extended-XYZ frame.
func WriteXYZ(w io.Writer, s *Structure) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, s.NumSites())

	props := "Properties=species:S:1:pos:R:3"
	if s.Velocities != nil {
		props += ":vel:R:3"
	}
	if s.Periodic() {
		l := s.Lattice
		fmt.Fprintf(bw, `Lattice="%g %g %g %g %g %g %g %g %g" %s`,
			l[0][0], l[0][1], l[0][2],
			l[1][0], l[1][1], l[1][2],
			l[2][0], l[2][1], l[2][2], props)
	} else {
		fmt.Fprint(bw, props)
	}
	if s.Comment != "" {
		fmt.Fprintf(bw, " %s", s.Comment)
	}
	fmt.Fprintln(bw)

	for i, sp := range s.Species {
		c := s.Coords[i]
		if s.Velocities != nil {
			v := s.Velocities[i]
			fmt.Fprintf(bw, "%-4s %16.8f %16.8f %16.8f %16.8f %16.8f %16.8f\n",
				sp, c[0], c[1], c[2], v[0], v[1], v[2])
		} else {
			fmt.Fprintf(bw, "%-4s %16.8f %16.8f %16.8f\n", sp, c[0], c[1], c[2])
		}
	}
	return bw.Flush()
}
