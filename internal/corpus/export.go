// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-miner/pkg/types"
)

// Header is the column header of the CSV table.
var Header = []string{"Abstract", "DOIS", "Authors"}

var (
	// ErrEmptyFilename is returned when no output name is given.
	ErrEmptyFilename = errors.New("output filename is empty")

	// ErrBadHeader is returned by ReadCSV for a table with unexpected columns.
	ErrBadHeader = errors.New("unexpected CSV header")
)

// Export writes c in the given format to filename plus the format's
// extension and returns the path written.
func Export(c *Corpus, filename string, format types.ExportFormat) (string, error) {
	switch format {
	case types.FormatCSV, "":
		return ExportCSV(c, filename)
	case types.FormatJSON:
		return ExportJSON(c, filename)
	case types.FormatYAML:
		return ExportYAML(c, filename)
	}
	return "", fmt.Errorf("unsupported export format %q", format)
}

// ExportCSV writes c to <filename>.csv with the Abstract,DOIS,Authors
// header and one row per record. A filename that already ends in .csv (in
// any case) is used as given. An existing file is replaced.
func ExportCSV(c *Corpus, filename string) (string, error) {
	return writeFile(filename, ".csv", func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(Header); err != nil {
			return err
		}
		for _, r := range c.Rows() {
			if err := cw.Write([]string{r.Abstract, r.DOIS, r.Authors}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// ReadCSV loads a table written by ExportCSV.
func ReadCSV(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(Header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 || !slices.Equal(records[0], Header) {
		return nil, fmt.Errorf("%w in %s", ErrBadHeader, path)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, Row{Abstract: rec[0], DOIS: rec[1], Authors: rec[2]})
	}
	return fromRows(rows), nil
}

// ExportJSON writes c to <filename>.json as an array of row objects.
func ExportJSON(c *Corpus, filename string) (string, error) {
	data, err := json.MarshalIndent(c.Rows(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeFile(filename, ".json", func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
}

// ExportYAML writes c to <filename>.yaml as a sequence of row mappings.
func ExportYAML(c *Corpus, filename string) (string, error) {
	data, err := yaml.Marshal(c.Rows())
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeFile(filename, ".yaml", func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// OutputPath returns filename with ext appended unless it already ends
// with ext.
func OutputPath(filename, ext string) string {
	if strings.EqualFold(filepath.Ext(filename), ext) {
		return filename
	}
	return filename + ext
}

// writeFile writes through a temporary file in the target directory and
// renames it into place, so a failed export never leaves a partial table.
func writeFile(filename, ext string, write func(io.Writer) error) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", ErrEmptyFilename
	}
	path := OutputPath(filename, ext)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := write(tmp)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return path, nil
}
