package query

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/majorcontext/watchprocess/internal/record"
)

// Format selects the collect output encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatCSV
)

// CollectOptions configures Collect.
type CollectOptions struct {
	Format Format
	Filter Filter
}

// Collect writes the records passing opts.Filter to w and returns how many
// were written. Output depends only on the stored records, so repeated runs
// over an unchanged store are byte-identical.
func (e *Engine) Collect(w io.Writer, opts CollectOptions) (int, error) {
	recs, err := e.Select(opts.Filter)
	if err != nil {
		return 0, err
	}
	switch opts.Format {
	case FormatCSV:
		err = WriteCSV(w, recs)
	case FormatYAML:
		err = WriteYAML(w, recs)
	default:
		err = fmt.Errorf("unsupported format %d", opts.Format)
	}
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// CSVHeader returns the CSV column names.
func CSVHeader() []string {
	header := []string{"command"}
	for _, f := range record.Fields {
		header = append(header, f.Name)
	}
	return header
}

// WriteCSV writes a header row and one row per record. Absent fields are
// empty cells.
func WriteCSV(w io.Writer, recs []*record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return err
	}
	row := make([]string, 1+len(record.Fields))
	for _, r := range recs {
		row[0] = strings.Join(r.Command, " ")
		for i, f := range record.Fields {
			row[i+1], _ = f.Format(r)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteYAML writes the records as one YAML sequence.
func WriteYAML(w io.Writer, recs []*record.Record) error {
	if recs == nil {
		recs = []*record.Record{}
	}
	data, err := yaml.Marshal(recs)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
