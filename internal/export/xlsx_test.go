package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shipment-parser/internal/parser"
)

var testRecords = []parser.PackageRecord{
	{
		ShipmentID:        "7314270806",
		PackageCountLabel: "3 個包裹",
		Status:            "2025-04-17 12:36:00 已送達",
		Courier:           "申通快遞",
		TrackingNumber:    "773348737609079",
		Weight:            "2.75KG",
		ProductName:       "新款USB水晶盐石加湿器",
		Dimensions:        "40.4 x 28.7 x 33.1 CM ，2才",
	},
	{
		ShipmentID:        "7314270806",
		PackageCountLabel: "3 個包裹",
		Status:            "2025-04-17 12:36:00 已送達",
		Courier:           "中通快遞",
		TrackingNumber:    "78896609460309",
		Weight:            "0.3KG",
	},
}

func TestDefaultFilename(t *testing.T) {
	now := time.Date(2025, 4, 17, 9, 5, 3, 0, time.UTC)
	assert.Equal(t, "集運資料_20250417_090503.xlsx", DefaultFilename(now))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testRecords))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, Row(testRecords[0]), rows[1])

	// Trailing empty cells are not returned.
	assert.Equal(t, Row(testRecords[1])[:6], rows[2])
}

func TestWriteXLSX_ColumnWidths(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testRecords))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	tests := []struct {
		col  string
		want float64
	}{
		// 新竹包裹編號 is six wide characters.
		{col: "A", want: 14},
		// 15-digit tracking number.
		{col: "E", want: 17},
		// 新款USB水晶盐石加湿器: nine wide characters and three narrow.
		{col: "G", want: 23},
	}
	for _, tt := range tests {
		t.Run(tt.col, func(t *testing.T) {
			got, err := f.GetColWidth(SheetName, tt.col)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestWriteXLSX_NoRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{Headers}, rows)
}

func TestSaveXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename(time.Now()))
	require.NoError(t, SaveXLSX(path, testRecords))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestSaveXLSX_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.xlsx")
	assert.Error(t, SaveXLSX(path, testRecords))
}

func TestColumnWidth(t *testing.T) {
	assert.Equal(t, 12.0, ColumnWidth(10))
	assert.Equal(t, 2.0, ColumnWidth(0))
	assert.Equal(t, 255.0, ColumnWidth(1000))
}
