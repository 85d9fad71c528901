package subst

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"bitbucket.org/Davydov/mutsim/bio"
	"bitbucket.org/Davydov/mutsim/check"
)

// headerBases parses a header like "A,C,G,U" and returns the column
// order. T is accepted instead of U.
func headerBases(header []string) ([]bio.Base, error) {
	if len(header) != bio.NBase {
		return nil, check.Invalid("header should have %d columns: %s", bio.NBase, strings.Join(header, ","))
	}
	order := make([]bio.Base, bio.NBase)
	seen := make(map[bio.Base]bool, bio.NBase)
	for i, h := range header {
		h = strings.TrimSpace(h)
		b, ok := bio.BaseOf(firstByte(h))
		if !ok || len(h) != 1 || seen[b] {
			return nil, check.Invalid("bad header column %q", h)
		}
		seen[b] = true
		order[i] = b
	}
	return order, nil
}

func firstByte(s string) byte {
	if len(s) == 0 {
		return 0
	}
	return s[0]
}

// ReadCSV reads a substitution matrix in CSV format. The first line
// is a header with the four bases, e.g. "A,C,G,U"; the following
// four lines are rows in the same order. An optional first column
// with row labels is allowed if the header starts with an empty cell.
func ReadCSV(rd io.Reader) (*Matrix, error) {
	r := csv.NewReader(rd)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, check.Invalid("empty matrix file")
	}
	header := records[0]
	labels := false
	if len(header) == bio.NBase+1 && strings.TrimSpace(header[0]) == "" {
		header = header[1:]
		labels = true
	}
	order, err := headerBases(header)
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, bio.NBase)
	nrow := 0
	for _, rec := range records[1:] {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if nrow >= bio.NBase {
			return nil, check.Invalid("too many rows in matrix file")
		}
		from := order[nrow]
		if labels {
			b, ok := bio.BaseOf(firstByte(strings.TrimSpace(rec[0])))
			if !ok {
				return nil, check.Invalid("bad row label %q", rec[0])
			}
			from = b
			rec = rec[1:]
		}
		if len(rec) != bio.NBase {
			return nil, check.Invalid("row %d should have %d values", nrow+1, bio.NBase)
		}
		row := make([]float64, bio.NBase)
		for i, s := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, check.Invalid("row %d: %v", nrow+1, err)
			}
			row[order[i]] = v
		}
		if rows[from] != nil {
			return nil, check.Invalid("duplicate row %s", from)
		}
		rows[from] = row
		nrow++
	}
	if nrow != bio.NBase {
		return nil, check.Invalid("expected %d rows, got %d", bio.NBase, nrow)
	}
	return New(rows)
}

// ReadYAML reads a substitution matrix in YAML format, a mapping
// from base to a mapping from base to probability:
//
//	A: {A: 0.97, C: 0.01, G: 0.01, U: 0.01}
//
// Missing entries are zero.
func ReadYAML(rd io.Reader) (*Matrix, error) {
	var raw map[string]map[string]float64
	if err := yaml.NewDecoder(rd).Decode(&raw); err != nil {
		return nil, err
	}
	rows := make([][]float64, bio.NBase)
	for fromS, to := range raw {
		from, ok := bio.BaseOf(firstByte(fromS))
		if !ok || len(fromS) != 1 {
			return nil, check.Invalid("bad base %q", fromS)
		}
		if rows[from] != nil {
			return nil, check.Invalid("duplicate row %s", from)
		}
		rows[from] = make([]float64, bio.NBase)
		for toS, v := range to {
			b, ok := bio.BaseOf(firstByte(toS))
			if !ok || len(toS) != 1 {
				return nil, check.Invalid("bad base %q", toS)
			}
			rows[from][b] = v
		}
	}
	for i, row := range rows {
		if row == nil {
			return nil, check.Invalid("missing row %s", bio.Base(i))
		}
	}
	return New(rows)
}

// Read reads a matrix from a file. Files with .yaml or .yml extension
// are read as YAML, everything else as CSV.
func Read(fileName string) (*Matrix, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		log.Debugf("Reading %s as YAML", fileName)
		return ReadYAML(f)
	}
	log.Debugf("Reading %s as CSV", fileName)
	return ReadCSV(f)
}
