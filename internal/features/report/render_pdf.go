package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// PDFRenderer prints the rows as a landscape A4 table.
type PDFRenderer struct {
	Title string
}

func (PDFRenderer) Extension() string { return "pdf" }

func (PDFRenderer) ContentType() string { return "application/pdf" }

func (r PDFRenderer) Render(rows []Row, columns []string, logger *zap.Logger) ([]byte, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("pdf report needs at least one column")
	}
	if len(rows) == 0 {
		logger.Warn("Report data is empty, rendering header only")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	width := (pageW - left - right) / float64(len(columns))

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(224, 224, 224)
		for _, col := range columns {
			pdf.CellFormat(width, 7, fit(pdf, tr(col), width), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.AddPage()
	if r.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(0, 10, tr(r.Title))
		pdf.Ln(12)
	}
	header()

	for i, row := range rows {
		record, err := rowRecord(row, columns)
		if err != nil {
			logger.Error("Failed to write row", zap.Int("row", i), zap.Error(err))
			continue
		}
		if pdf.GetY()+6 > pageH-bottom {
			pdf.AddPage()
			header()
		}
		for _, v := range record {
			pdf.CellFormat(width, 6, fit(pdf, tr(v), width), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit shortens s until it fits in a cell of the given width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	const pad = 2
	if pdf.GetStringWidth(s) <= width-pad {
		return s
	}
	// s is already translated to the font's single byte code page.
	b := []byte(s)
	for len(b) > 0 && pdf.GetStringWidth(string(b)+"...") > width-pad {
		b = b[:len(b)-1]
	}
	return string(b) + "..."
}
