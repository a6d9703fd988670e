package structure

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// parsePOSCAR reads a VASP 5 POSCAR/CONTCAR: comment, scale, three lattice
// rows, element symbols, counts, an optional selective-dynamics line, the
// coordinate mode, then the positions.
func parsePOSCAR(r io.Reader) (*Structure, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return sc.Text(), nil
	}

	comment, err := next()
	if err != nil {
		return nil, fmt.Errorf("poscar: %w", err)
	}

	scaleLine, err := next()
	if err != nil {
		return nil, fmt.Errorf("poscar: missing scale line: %w", err)
	}
	scale, err := strconv.ParseFloat(strings.TrimSpace(scaleLine), 64)
	if err != nil {
		return nil, fmt.Errorf("poscar: bad scale %q", strings.TrimSpace(scaleLine))
	}

	var lat [3][3]float64
	for i := 0; i < 3; i++ {
		line, err := next()
		if err != nil {
			return nil, fmt.Errorf("poscar: missing lattice row %d: %w", i+1, err)
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("poscar: lattice row %d has %d fields", i+1, len(fields))
		}
		for k := 0; k < 3; k++ {
			lat[i][k], err = strconv.ParseFloat(fields[k], 64)
			if err != nil {
				return nil, fmt.Errorf("poscar: bad lattice component %q", fields[k])
			}
		}
	}

	// A negative scale is the target cell volume.
	if scale < 0 {
		vol := math.Abs(det3(lat))
		scale = math.Cbrt(-scale / vol)
	}
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			lat[i][k] *= scale
		}
	}

	symLine, err := next()
	if err != nil {
		return nil, fmt.Errorf("poscar: missing element symbols: %w", err)
	}
	symbols := strings.Fields(symLine)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("poscar: empty element symbol line")
	}
	if _, err := strconv.Atoi(symbols[0]); err == nil {
		return nil, fmt.Errorf("poscar: VASP 4 files without element symbols are not supported")
	}

	cntLine, err := next()
	if err != nil {
		return nil, fmt.Errorf("poscar: missing element counts: %w", err)
	}
	cntFields := strings.Fields(cntLine)
	if len(cntFields) != len(symbols) {
		return nil, fmt.Errorf("poscar: %d element symbols but %d counts", len(symbols), len(cntFields))
	}
	counts := make([]int, len(cntFields))
	total := 0
	for i, f := range cntFields {
		counts[i], err = strconv.Atoi(f)
		if err != nil || counts[i] <= 0 {
			return nil, fmt.Errorf("poscar: bad element count %q", f)
		}
		total += counts[i]
	}

	modeLine, err := next()
	if err != nil {
		return nil, fmt.Errorf("poscar: missing coordinate mode: %w", err)
	}
	if m := strings.TrimSpace(modeLine); m != "" && (m[0] == 'S' || m[0] == 's') {
		// Selective dynamics; the flags per site are ignored.
		modeLine, err = next()
		if err != nil {
			return nil, fmt.Errorf("poscar: missing coordinate mode: %w", err)
		}
	}
	mode := strings.TrimSpace(modeLine)
	if mode == "" {
		return nil, fmt.Errorf("poscar: empty coordinate mode line")
	}
	direct := mode[0] == 'D' || mode[0] == 'd'
	cartesian := mode[0] == 'C' || mode[0] == 'c' || mode[0] == 'K' || mode[0] == 'k'
	if !direct && !cartesian {
		return nil, fmt.Errorf("poscar: unknown coordinate mode %q", mode)
	}

	s := &Structure{Comment: strings.TrimSpace(comment), Lattice: lat}
	for i, sym := range symbols {
		for n := 0; n < counts[i]; n++ {
			s.Species = append(s.Species, sym)
		}
	}

	for i := 0; i < total; i++ {
		line, err := next()
		if err != nil {
			return nil, fmt.Errorf("poscar: truncated at site %d of %d: %w", i, total, err)
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("poscar: site %d has %d fields", i, len(fields))
		}
		var v [3]float64
		for k := 0; k < 3; k++ {
			v[k], err = strconv.ParseFloat(fields[k], 64)
			if err != nil {
				return nil, fmt.Errorf("poscar: site %d: bad coordinate %q", i, fields[k])
			}
		}
		if direct {
			var cart [3]float64
			for j := 0; j < 3; j++ {
				cart[j] = v[0]*lat[0][j] + v[1]*lat[1][j] + v[2]*lat[2][j]
			}
			v = cart
		} else {
			for k := 0; k < 3; k++ {
				v[k] *= scale
			}
		}
		s.Coords = append(s.Coords, v)
	}

	return s, nil
}

// writePOSCAR writes a VASP 5 POSCAR with direct coordinates.
func writePOSCAR(w io.Writer, s *Structure) error {
	cell, err := s.Cell()
	if err != nil {
		return fmt.Errorf("poscar: %w", err)
	}
	if !cell.Periodic() {
		return fmt.Errorf("poscar: cannot write a non-periodic structure")
	}

	bw := bufio.NewWriter(w)
	comment := s.Comment
	if comment == "" {
		comment = s.Formula()
	}
	fmt.Fprintln(bw, comment)
	fmt.Fprintln(bw, "1.0")
	for i := 0; i < 3; i++ {
		fmt.Fprintf(bw, " %20.14f %20.14f %20.14f\n", s.Lattice[i][0], s.Lattice[i][1], s.Lattice[i][2])
	}

	// POSCAR groups sites by element; preserve first-appearance order.
	var symbols []string
	counts := make(map[string]int)
	for _, sp := range s.Species {
		if counts[sp] == 0 {
			symbols = append(symbols, sp)
		}
		counts[sp]++
	}
	for _, sp := range symbols {
		fmt.Fprintf(bw, " %4s", sp)
	}
	fmt.Fprintln(bw)
	for _, sp := range symbols {
		fmt.Fprintf(bw, " %4d", counts[sp])
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Direct")
	for _, sp := range symbols {
		for i, got := range s.Species {
			if got != sp {
				continue
			}
			f := cell.ToFrac(s.Coords[i])
			fmt.Fprintf(bw, " %18.14f %18.14f %18.14f\n", f[0], f[1], f[2])
		}
	}
	return bw.Flush()
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}
