package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
)

var ErrUnknownFormat = errors.New("unknown report format")

// Renderer turns collected rows into a downloadable document.
type Renderer interface {
	Render(rows []Row, columns []string, logger *zap.Logger) ([]byte, error)
	Extension() string
	ContentType() string
}

// CSVRenderer writes comma separated values with CRLF line endings. Set
// Comma to '\t' and UTF16 for spreadsheets that expect UTF-16 text.
type CSVRenderer struct {
	Comma rune
	UTF16 bool
}

func (r CSVRenderer) Extension() string { return "csv" }

func (r CSVRenderer) ContentType() string {
	if r.UTF16 {
		return "text/csv; charset=utf-16"
	}
	return "text/csv; charset=utf-8"
}

func (r CSVRenderer) Render(rows []Row, columns []string, logger *zap.Logger) ([]byte, error) {
	if len(rows) == 0 {
		logger.Warn("Report data is empty, nothing to render")
		return []byte{}, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if r.Comma != 0 {
		w.Comma = r.Comma
	}

	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		record, err := rowRecord(row, columns)
		if err != nil {
			logger.Error("Failed to write row", zap.Int("row", i), zap.Error(err))
			continue
		}
		if err := w.Write(record); err != nil {
			logger.Error("Failed to write row", zap.Int("row", i), zap.Error(err))
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	if !r.UTF16 {
		return buf.Bytes(), nil
	}
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	return enc.Bytes(buf.Bytes())
}

// rowRecord formats row values in column order. Missing columns are empty.
func rowRecord(row Row, columns []string) ([]string, error) {
	record := make([]string, len(columns))
	for i, col := range columns {
		v, ok := row.Get(col)
		if !ok {
			continue
		}
		s, err := formatValue(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		record[i] = s
	}
	return record, nil
}

// rendererFor maps a format name to its renderer.
func rendererFor(format string) (Renderer, error) {
	switch format {
	case "", "csv":
		return CSVRenderer{}, nil
	case "tsv":
		return CSVRenderer{Comma: '\t', UTF16: true}, nil
	case "xml":
		return XMLRenderer{}, nil
	case "xlsx":
		return XLSXRenderer{}, nil
	case "pdf":
		return PDFRenderer{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
