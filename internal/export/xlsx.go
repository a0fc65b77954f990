// Package export writes package records to spreadsheet files.
package export

import (
	"io"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"shipment-parser/internal/parser"
)

// SheetName is the name of the single worksheet in an export.
const SheetName = "集運資料"

// ContentType is the MIME type of the workbooks written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxColumnWidth is the widest column excelize accepts.
const maxColumnWidth = 255

// Headers are the column titles, in column order.
var Headers = []string{"新竹包裹編號", "包裹數", "狀態", "快遞", "單號", "包裹重量", "商品名稱", "尺寸"}

// DefaultFilename returns the export file name for the given time.
func DefaultFilename(now time.Time) string {
	return SheetName + "_" + now.Format("20060102_150405") + ".xlsx"
}

// Row returns the cells of one record in column order.
func Row(rec parser.PackageRecord) []string {
	return []string{
		rec.ShipmentID,
		rec.PackageCountLabel,
		rec.Status,
		rec.Courier,
		rec.TrackingNumber,
		rec.Weight,
		rec.ProductName,
		rec.Dimensions,
	}
}

// WriteXLSX writes records as a workbook to w.
func WriteXLSX(w io.Writer, records []parser.PackageRecord) error {
	f, err := build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "failed to write workbook")
	}
	return nil
}

// SaveXLSX writes records as a workbook to the file at path.
func SaveXLSX(path string, records []parser.PackageRecord) error {
	f, err := build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return eris.Wrapf(err, "failed to save workbook to %s", path)
	}
	return nil
}

func build(records []parser.PackageRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, eris.Wrap(err, "failed to name sheet")
	}

	widths := make([]int, len(Headers))
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, Headers)
	for _, rec := range records {
		rows = append(rows, Row(rec))
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, eris.Wrap(err, "failed to address row")
		}
		values := make([]interface{}, len(row))
		for col, v := range row {
			values[col] = v
			if w := runewidth.StringWidth(v); w > widths[col] {
				widths[col] = w
			}
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			f.Close()
			return nil, eris.Wrapf(err, "failed to write row %d", i+1)
		}
	}

	if err := styleHeader(f); err != nil {
		f.Close()
		return nil, err
	}

	for col, w := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, eris.Wrap(err, "failed to name column")
		}
		if err := f.SetColWidth(SheetName, name, name, ColumnWidth(w)); err != nil {
			f.Close()
			return nil, eris.Wrapf(err, "failed to size column %s", name)
		}
	}
	return f, nil
}

func styleHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return eris.Wrap(err, "failed to create header style")
	}
	last, err := excelize.CoordinatesToCellName(len(Headers), 1)
	if err != nil {
		return eris.Wrap(err, "failed to address header")
	}
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return eris.Wrap(err, "failed to style header")
	}
	return nil
}

// ColumnWidth is the column width for a widest cell of the given display
// width: two characters of padding, capped at the spreadsheet limit.
func ColumnWidth(displayWidth int) float64 {
	w := float64(displayWidth + 2)
	if w > maxColumnWidth {
		return maxColumnWidth
	}
	return w
}
