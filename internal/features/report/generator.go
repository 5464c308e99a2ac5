package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Generate writes objects as CSV using lookups for the columns, in order.
// Unlike a Report run it stops at the first value that cannot be resolved.
func Generate(objects []any, lookups []FieldLookup) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	header := make([]string, len(lookups))
	for i, l := range lookups {
		header[i] = l.Column
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	record := make([]string, len(lookups))
	for i, obj := range objects {
		for j, l := range lookups {
			v, err := Resolve(obj, l.Spec)
			if err != nil {
				return "", RowError{Index: i, Column: l.Column, Err: err}
			}
			s, err := formatValue(v)
			if err != nil {
				return "", RowError{Index: i, Column: l.Column, Err: err}
			}
			record[j] = s
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}
