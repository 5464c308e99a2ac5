package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultSheet = "Report"

// XLSXRenderer writes an Excel workbook with a single sheet.
type XLSXRenderer struct {
	SheetName string
}

func (XLSXRenderer) Extension() string { return "xlsx" }

func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (r XLSXRenderer) Render(rows []Row, columns []string, logger *zap.Logger) ([]byte, error) {
	if len(rows) == 0 {
		logger.Warn("Report data is empty, rendering header only")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := r.SheetName
	if sheetName == "" {
		sheetName = defaultSheet
	}
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if len(columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		f.SetCellStyle(sheetName, "A1", last, headerStyle)
	}

	line := 2
	for i, row := range rows {
		values, err := cellValues(row, columns)
		if err != nil {
			logger.Error("Failed to write row", zap.Int("row", i), zap.Error(err))
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			logger.Error("Failed to write row", zap.Int("row", i), zap.Error(err))
			continue
		}
		line++
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 15)
	}
	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// cellValues keeps numbers and booleans native so Excel can sum them.
func cellValues(row Row, columns []string) ([]interface{}, error) {
	values := make([]interface{}, len(columns))
	for i, col := range columns {
		v, ok := row.Get(col)
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case bool, int, int32, int64, float32, float64, uint, uint32, uint64:
			values[i] = t
		case time.Time:
			values[i] = t.Format(timeLayout)
		case primitive.ObjectID:
			values[i] = t.Hex()
		default:
			s, err := formatValue(v)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}
			values[i] = s
		}
	}
	return values, nil
}
