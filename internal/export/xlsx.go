package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"traindash/internal/core"
)

const sheetName = "Dashboard"

// XLSX renders the display ledger as a single-sheet styled spreadsheet:
// bold header, fixed per-column fills on data cells, and a bold highlighted
// TOTAL row.
func XLSX(d core.DisplayLedger) ([]byte, error) {
	xlsx := excelize.NewFile()

	_ = xlsx.SetAppProps(&excelize.AppProperties{
		Application: "traindash",
		DocSecurity: 2,
	})

	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	if err := writeSheet(xlsx, sheet, d); err != nil {
		return nil, err
	}
	_ = xlsx.SetSheetName(sheet, sheetName)

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(xlsx *excelize.File, sheet string, d core.DisplayLedger) error {
	_ = xlsx.SetColWidth(sheet, "A", "A", 12)
	_ = xlsx.SetColWidth(sheet, "B", "J", 14)

	headerStyle, err := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold()))
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	for i, name := range core.Columns {
		_ = xlsx.SetCellValue(sheet, cell('A'+rune(i), 1), name)
	}
	_ = xlsx.SetCellStyle(sheet, cell('A', 1), cell('A'+rune(len(core.Columns)-1), 1), headerStyle)

	for rowIdx, row := range d {
		xlsxRow := rowIdx + 2
		if row.Kind == core.RowBlank {
			continue
		}
		values := displayFields(row)
		for colIdx, column := range core.Columns {
			col := 'A' + rune(colIdx)
			if colIdx == 0 {
				_ = xlsx.SetCellValue(sheet, cell(col, xlsxRow), values[colIdx])
			} else {
				_ = xlsx.SetCellInt(sheet, cell(col, xlsxRow), row.Metrics()[colIdx-1])
			}

			spec := CellStyle(row.Kind, row.Month, column)
			styles := []*excelize.Style{defaultStyle()}
			if spec.Bold {
				styles = append(styles, fontBold())
			}
			if spec.Fill != "" {
				styles = append(styles, fill(spec.Fill))
			}
			style, err := xlsx.NewStyle(mergeStyles(styles...))
			if err != nil {
				return fmt.Errorf("cell style: %w", err)
			}
			_ = xlsx.SetCellStyle(sheet, cell(col, xlsxRow), cell(col, xlsxRow), style)
		}
	}

	return nil
}

func cell(col rune, row int) string {
	return fmt.Sprintf("%c%d", col, row)
}
