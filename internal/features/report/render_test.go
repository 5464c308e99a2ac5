package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestCSVRenderer(t *testing.T) {
	oid := primitive.NewObjectID()
	rows := []Row{
		{{Key: "Name", Value: "Acme, Inc"}, {Key: "Id", Value: oid}, {Key: "Created", Value: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}},
		{{Key: "Name", Value: `Say "hi"`}, {Key: "Active", Value: true}},
	}

	out, err := CSVRenderer{}.Render(rows, []string{"Name", "Id", "Created"}, zap.NewNop())
	require.NoError(t, err)

	want := "Name,Id,Created\r\n" +
		`"Acme, Inc",` + oid.Hex() + ",2024-01-02 03:04:05\r\n" +
		`"Say ""hi""",,` + "\r\n"
	assert.Equal(t, want, string(out))
}

func TestCSVRendererEmpty(t *testing.T) {
	logger, logs := observedLogger()

	out, err := CSVRenderer{}.Render(nil, []string{"A"}, logger)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestCSVRendererSkipsUnformattableRows(t *testing.T) {
	logger, logs := observedLogger()
	rows := []Row{
		{{Key: "V", Value: 1}},
		{{Key: "V", Value: make(chan int)}},
		{{Key: "V", Value: 3}},
	}

	out, err := CSVRenderer{}.Render(rows, []string{"V"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "V\r\n1\r\n3\r\n", string(out))
	assert.Equal(t, 1, logs.FilterMessage("Failed to write row").Len())
}

func TestCSVRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ncols := rapid.IntRange(2, 5).Draw(t, "columns")
		columns := make([]string, ncols)
		for i := range columns {
			columns[i] = rapid.StringMatching(`[A-Za-z ]{0,6}`).Draw(t, "column") + string(rune('a'+i))
		}
		nrows := rapid.IntRange(1, 10).Draw(t, "rows")
		rows := make([]Row, nrows)
		for i := range rows {
			for _, col := range columns {
				rows[i] = append(rows[i], Cell{Key: col, Value: rapid.String().Draw(t, "value")})
			}
		}

		out, err := CSVRenderer{}.Render(rows, columns, zap.NewNop())
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if len(records) != nrows+1 {
			t.Fatalf("got %d records, want %d", len(records), nrows+1)
		}
		for i, col := range columns {
			if records[0][i] != col {
				t.Fatalf("header %d = %q, want %q", i, records[0][i], col)
			}
		}
		for r, row := range rows {
			for c, col := range columns {
				want, _ := row.Get(col)
				// CRLF mode drops bare \r inside quoted fields
				if got, w := records[r+1][c], strings.ReplaceAll(want.(string), "\r", ""); got != w {
					t.Fatalf("row %d %q = %q, want %q", r, col, got, w)
				}
			}
		}
	})
}

func TestCSVRendererUTF16(t *testing.T) {
	out, err := CSVRenderer{Comma: '\t', UTF16: true}.Render(
		[]Row{{{Key: "A", Value: "x"}, {Key: "B", Value: "y"}}},
		[]string{"A", "B"}, zap.NewNop())
	require.NoError(t, err)

	require.True(t, len(out) > 2)
	assert.Equal(t, []byte{0xFF, 0xFE}, out[:2])
	assert.Equal(t, []byte{'A', 0, '\t', 0, 'B', 0, '\r', 0, '\n', 0}, out[2:12])
}

func TestXMLRenderer(t *testing.T) {
	rows := []Row{
		{{Key: "Field 1", Value: "1"}, {Key: "Amount", Value: 2.5}},
		{{Key: "Field 1", Value: "<b>"}, {Key: "Amount", Value: nil}},
	}

	out, err := XMLRenderer{}.Render(rows, []string{"Field 1", "Amount"}, zap.NewNop())
	require.NoError(t, err)

	body := strings.TrimPrefix(string(out), `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	assert.Equal(t,
		"<report><item><Field_1>1</Field_1><Amount>2.5</Amount></item>"+
			"<item><Field_1>&lt;b&gt;</Field_1><Amount></Amount></item></report>",
		body)
}

func TestXMLRendererPlaceholder(t *testing.T) {
	logger, logs := observedLogger()

	out, err := XMLRenderer{}.Render(nil, []string{"A"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "<report/>", string(out))
	assert.Equal(t, 1, logs.Len())
}

func TestXMLRenderMapping(t *testing.T) {
	out := XMLRenderer{}.RenderMapping(Row{{Key: "total", Value: 3}, {Key: "2nd", Value: "b"}}, zap.NewNop())
	assert.True(t, strings.HasSuffix(string(out), "<report><total>3</total><_2nd>b</_2nd></report>"))
}

func TestXLSXRenderer(t *testing.T) {
	rows := []Row{
		{{Key: "Name", Value: "Acme"}, {Key: "Deals", Value: 4}},
		{{Key: "Name", Value: "Globex"}, {Key: "Deals", Value: make(chan int)}},
		{{Key: "Name", Value: "Initech"}, {Key: "Deals", Value: 1}},
	}

	out, err := XLSXRenderer{}.Render(rows, []string{"Name", "Deals"}, zap.NewNop())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{defaultSheet}, f.GetSheetList())
	got, err := f.GetRows(defaultSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "Deals"}, {"Acme", "4"}, {"Initech", "1"}}, got)
}

func TestPDFRenderer(t *testing.T) {
	rows := make([]Row, 80)
	for i := range rows {
		rows[i] = Row{{Key: "Name", Value: strings.Repeat("long ", 40)}, {Key: "N", Value: i}}
	}

	out, err := PDFRenderer{Title: "Leads"}.Render(rows, []string{"Name", "N"}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	_, err = PDFRenderer{}.Render(rows, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestRendererFor(t *testing.T) {
	for format, ext := range map[string]string{"": "csv", "csv": "csv", "tsv": "csv", "xml": "xml", "xlsx": "xlsx", "pdf": "pdf"} {
		r, err := rendererFor(format)
		require.NoError(t, err, format)
		assert.Equal(t, ext, r.Extension(), format)
	}
	_, err := rendererFor("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatValue(t *testing.T) {
	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{[]byte("b"), "b"},
		{true, "true"},
		{int64(-3), "-3"},
		{uint8(7), "7"},
		{1.25, "1.25"},
		{when, "2024-05-06 07:08:09"},
		{&when, "2024-05-06 07:08:09"},
		{time.Time{}, ""},
		{primitive.NewDateTimeFromTime(when), "2024-05-06 07:08:09"},
		{map[string]any{"a": 1}, `{"a":1}`},
		{[]string{"x", "y"}, `["x","y"]`},
	}
	for _, tt := range tests {
		got, err := formatValue(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%#v", tt.in)
	}

	_, err := formatValue(func() {})
	assert.Error(t, err)
}
