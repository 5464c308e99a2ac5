package report

import (
	"bytes"
	"encoding/xml"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

var xmlPlaceholder = []byte("<report/>")

// XMLRenderer emits <report><item>...</item></report>. It never fails: when
// the rows cannot be encoded it falls back to an empty <report/>.
type XMLRenderer struct{}

func (XMLRenderer) Extension() string { return "xml" }

func (XMLRenderer) ContentType() string { return "application/xml" }

func (XMLRenderer) Render(rows []Row, columns []string, logger *zap.Logger) ([]byte, error) {
	if len(rows) == 0 {
		logger.Warn("Report data is empty, rendering placeholder")
		return placeholder(), nil
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	root := xml.StartElement{Name: xml.Name{Local: "report"}}
	if err := enc.EncodeToken(root); err != nil {
		return fallback(logger, err), nil
	}
	for i, row := range rows {
		record, err := rowRecord(row, columns)
		if err != nil {
			logger.Error("Failed to write row", zap.Int("row", i), zap.Error(err))
			continue
		}
		if err := encodeElements(enc, "item", columns, record); err != nil {
			return fallback(logger, err), nil
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return fallback(logger, err), nil
	}
	if err := enc.Flush(); err != nil {
		return fallback(logger, err), nil
	}
	return buf.Bytes(), nil
}

// RenderMapping encodes a single row as the children of <report>.
func (XMLRenderer) RenderMapping(row Row, logger *zap.Logger) []byte {
	record, err := rowRecord(row, row.Keys())
	if err != nil {
		return fallback(logger, err)
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := encodeElements(enc, "report", row.Keys(), record); err != nil {
		return fallback(logger, err)
	}
	if err := enc.Flush(); err != nil {
		return fallback(logger, err)
	}
	return buf.Bytes()
}

func encodeElements(enc *xml.Encoder, parent string, names, values []string) error {
	start := xml.StartElement{Name: xml.Name{Local: parent}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for i, name := range names {
		if err := enc.EncodeElement(values[i], xml.StartElement{Name: xml.Name{Local: xmlName(name)}}); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func fallback(logger *zap.Logger, err error) []byte {
	logger.Error("Failed to render XML report", zap.Error(err))
	return placeholder()
}

func placeholder() []byte {
	return append([]byte(nil), xmlPlaceholder...)
}

// xmlName turns a column title into a valid element name: "Field 1" becomes
// "Field_1".
func xmlName(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r) || r == '-' || r == '.':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
