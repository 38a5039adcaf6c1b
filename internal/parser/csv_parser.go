package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// record is one csv row together with the line it started on.
type record struct {
	line   int
	fields []string
}

// readRecords reads every non-blank row of r. Rows may have any number of fields.
func readRecords(r io.Reader) ([]record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // row lengths follow the mesh and generation counts

	var records []record
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV data: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record{line: line, fields: fields})
	}
	return records, nil
}

// parseSeries converts every field of a row into a float64.
func parseSeries(file string, rec record, field string) ([]float64, error) {
	values := make([]float64, len(rec.fields))
	for i, raw := range rec.fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &ParseError{
				File:  file,
				Line:  rec.line,
				Field: field,
				Err:   fmt.Errorf("%w: value %d %q", ErrInvalidNumber, i+1, raw),
			}
		}
		values[i] = v
	}
	return values, nil
}

// scalarField returns the single token of a scalar row.
func scalarField(file string, rec record, field string) (string, error) {
	if len(rec.fields) != 1 {
		return "", &ParseError{
			File:  file,
			Line:  rec.line,
			Field: field,
			Err:   fmt.Errorf("%w: expected a single value, found %d", ErrInvalidNumber, len(rec.fields)),
		}
	}
	return strings.TrimSpace(rec.fields[0]), nil
}

func parseFloatScalar(file string, rec record, field string) (float64, error) {
	tok, err := scalarField(file, rec, field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &ParseError{File: file, Line: rec.line, Field: field, Err: fmt.Errorf("%w: %q", ErrInvalidNumber, tok)}
	}
	return v, nil
}

func parseIntScalar(file string, rec record, field string) (int, error) {
	tok, err := scalarField(file, rec, field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &ParseError{File: file, Line: rec.line, Field: field, Err: fmt.Errorf("%w: %q", ErrInvalidNumber, tok)}
	}
	return v, nil
}

func missing(file string, field string, line int) error {
	return &ParseError{File: file, Line: line, Field: field, Err: ErrMissingRecord}
}

// ParseVars reads the configuration record. Lines past the third are ignored.
func ParseVars(r io.Reader, name string) (Vars, error) {
	var vars Vars
	records, err := readRecords(r)
	if err != nil {
		return vars, fmt.Errorf("%s: %w", name, err)
	}
	if len(records) < 3 {
		fields := []string{"length", "meshes", "generations"}
		return vars, missing(name, fields[len(records)], len(records)+1)
	}

	if vars.Length, err = parseFloatScalar(name, records[0], "length"); err != nil {
		return vars, err
	}
	if vars.Meshes, err = parseIntScalar(name, records[1], "meshes"); err != nil {
		return vars, err
	}
	if vars.Generations, err = parseIntScalar(name, records[2], "generations"); err != nil {
		return vars, err
	}
	return vars, nil
}

// ParseKEff reads the per-generation k series and, when present, the fundamental-mode series.
func ParseKEff(r io.Reader, name string) (*KEff, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, missing(name, "k", 1)
	}

	k := &KEff{}
	if k.K, err = parseSeries(name, records[0], "k"); err != nil {
		return nil, err
	}
	if len(records) > 1 {
		if k.Fundamental, err = parseSeries(name, records[1], "k_fund"); err != nil {
			return nil, err
		}
	}
	return k, nil
}

// ResolveLayout maps a row count onto a layout.
// With want.Groups == 0 it infers: 3 rows is the plain two-group layout,
// an odd count of 5 or more is the averaged layout with (rows-1)/2 groups.
func ResolveLayout(rows int, want Layout) (Layout, error) {
	if want.Groups < 0 {
		return want, fmt.Errorf("%w: negative group count %d", ErrLayout, want.Groups)
	}
	if want.Groups > 0 {
		need := want.Groups + 1
		if want.Averaged {
			need = 2*want.Groups + 1
		}
		if rows != need {
			return want, fmt.Errorf("%w: %s needs %d rows, found %d", ErrLayout, want, need, rows)
		}
		return want, nil
	}

	switch {
	case rows == 3:
		return Layout{Groups: 2}, nil
	case rows >= 5 && rows%2 == 1:
		return Layout{Groups: (rows - 1) / 2, Averaged: true}, nil
	}
	return want, fmt.Errorf("%w: cannot infer groups from %d rows", ErrLayout, rows)
}

// ParseInterface reads the flux, running-average and fission rows.
// The last row is always the fission density.
func ParseInterface(r io.Reader, name string, want Layout) (*Interface, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(records) < 2 {
		return nil, missing(name, "fission", len(records)+1)
	}
	layout, err := ResolveLayout(len(records), want)
	if err != nil {
		return nil, &ParseError{File: name, Field: "layout", Err: err}
	}

	in := &Interface{Layout: layout}
	for g := 0; g < layout.Groups; g++ {
		flux, err := parseSeries(name, records[g], fmt.Sprintf("flux group %d", g+1))
		if err != nil {
			return nil, err
		}
		in.Flux = append(in.Flux, flux)
	}
	if layout.Averaged {
		for g := 0; g < layout.Groups; g++ {
			avg, err := parseSeries(name, records[layout.Groups+g], fmt.Sprintf("average group %d", g+1))
			if err != nil {
				return nil, err
			}
			in.Average = append(in.Average, avg)
		}
	}
	if in.Fission, err = parseSeries(name, records[len(records)-1], "fission"); err != nil {
		return nil, err
	}
	return in, nil
}

// openAndParse opens path and hands it to parse, closing it afterwards.
func openAndParse[T any](path string, parse func(io.Reader, string) (T, error)) (T, error) {
	var zero T
	file, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return parse(file, filepath.Base(path))
}

// ReadVars reads vars.csv at path.
func ReadVars(path string) (Vars, error) {
	return openAndParse(path, ParseVars)
}

// ReadKEff reads k_eff.csv at path.
func ReadKEff(path string) (*KEff, error) {
	return openAndParse(path, ParseKEff)
}

// ReadInterface reads interface.csv at path.
func ReadInterface(path string, layout Layout) (*Interface, error) {
	return openAndParse(path, func(r io.Reader, name string) (*Interface, error) {
		return ParseInterface(r, name, layout)
	})
}

// Load reads the three result files from dir.
func Load(dir string, layout Layout) (*Results, error) {
	vars, err := ReadVars(filepath.Join(dir, VarsFile))
	if err != nil {
		return nil, err
	}
	k, err := ReadKEff(filepath.Join(dir, KEffFile))
	if err != nil {
		return nil, err
	}
	in, err := ReadInterface(filepath.Join(dir, InterfaceFile), layout)
	if err != nil {
		return nil, err
	}
	return &Results{Dir: dir, Vars: vars, KEff: k, Interface: in}, nil
}
