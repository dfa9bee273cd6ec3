package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheetName = "Sheet1"

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct {
	sheet string
}

// NewXLSXExporter constructs an XLSX exporter writing to the named sheet.
func NewXLSXExporter(sheet string) *XLSXExporter {
	if sheet == "" {
		sheet = defaultSheetName
	}
	return &XLSXExporter{sheet: sheet}
}

// Render writes the title in row 1 (merged across the table), headings in
// row 2 and one row per record below.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("xlsx"); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close()

	if e.sheet != defaultSheetName {
		idx, err := f.NewSheet(e.sheet)
		if err != nil {
			return nil, fmt.Errorf("create sheet: %w", err)
		}
		f.SetActiveSheet(idx)
		if err := f.DeleteSheet(defaultSheetName); err != nil {
			return nil, fmt.Errorf("drop default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	lastCol := columnName(len(data.Columns) - 1)
	row := 1
	if data.Title != "" {
		if err := f.SetCellValue(e.sheet, cellName(0, row), data.Title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
		if err := f.MergeCell(e.sheet, cellName(0, row), fmt.Sprintf("%s%d", lastCol, row)); err != nil {
			return nil, fmt.Errorf("merge title: %w", err)
		}
		_ = f.SetCellStyle(e.sheet, cellName(0, row), cellName(0, row), headerStyle)
		row++
	}

	widths := data.widths(float64(16 * len(data.Columns)))
	for i, label := range data.Labels() {
		col := columnName(i)
		_ = f.SetColWidth(e.sheet, col, col, widths[i])
		if err := f.SetCellValue(e.sheet, cellName(i, row), label); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	_ = f.SetCellStyle(e.sheet, cellName(0, row), fmt.Sprintf("%s%d", lastCol, row), headerStyle)
	row++

	for _, record := range data.Rows {
		for i, value := range data.Record(record) {
			if err := f.SetCellValue(e.sheet, cellName(i, row), value); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func columnName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", columnName(col), row)
}
