package structure

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Format identifies a structure file format.
type Format string

const (
	FormatPOSCAR Format = "poscar"
	FormatXYZ    Format = "xyz"
)

// FormatForPath guesses the format from the file name alone. The empty
// format means the name is not conclusive.
func FormatForPath(path string) Format {
	base := strings.ToUpper(filepath.Base(path))
	if strings.HasPrefix(base, "POSCAR") || strings.HasPrefix(base, "CONTCAR") {
		return FormatPOSCAR
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vasp", ".poscar":
		return FormatPOSCAR
	case ".xyz", ".extxyz":
		return FormatXYZ
	}
	return ""
}

// sniffFormat decides between the supported formats from the content: an
// XYZ file opens with a bare atom count, a POSCAR with a free-form comment.
func sniffFormat(data []byte) Format {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	if _, err := strconv.Atoi(strings.TrimSpace(string(line))); err == nil {
		return FormatXYZ
	}
	return FormatPOSCAR
}

// Read loads a structure from path, auto-detecting the format from the file
// name and, failing that, from the content.
func Read(path string) (*Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read structure: %w", err)
	}

	format := FormatForPath(path)
	if format == "" {
		format = sniffFormat(data)
	}

	s, err := FromBytes(data, format)
	if err != nil {
		return nil, fmt.Errorf("read structure %s: %w", path, err)
	}
	return s, nil
}

// FromBytes parses a structure in the given format.
func FromBytes(data []byte, format Format) (*Structure, error) {
	switch format {
	case FormatPOSCAR:
		return parsePOSCAR(bytes.NewReader(data))
	case FormatXYZ:
		return parseXYZ(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported structure format %q", format)
	}
}

// Write stores the structure at path, picking the format from the file
// name. Unrecognized names fall back to extended XYZ, which any structure
// can express.
func (s *Structure) Write(path string) error {
	format := FormatForPath(path)
	if format == "" {
		format = FormatXYZ
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatPOSCAR:
		err = writePOSCAR(&buf, s)
	case FormatXYZ:
		err = WriteXYZ(&buf, s)
	default:
		err = fmt.Errorf("unsupported structure format %q", format)
	}
	if err != nil {
		return fmt.Errorf("write structure %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write structure: %w", err)
	}
	return nil
}
