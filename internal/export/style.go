package export

import (
	"dario.cat/mergo"
	"github.com/xuri/excelize/v2"

	"traindash/internal/core"
)

// StyleSpec describes the rendering of one cell, independent of the
// spreadsheet library applying it.
type StyleSpec struct {
	Bold bool
	Fill string // RGB hex, empty means no fill
}

// totalFill highlights the TOTAL row, overriding per-column coloring.
const totalFill = "#FFE599"

// columnFills assigns each metric column its fixed color. The month column
// carries no fill.
var columnFills = map[string]string{
	"Total Trainings":  "#D9E1F2",
	"DXFleet":          "#C6E0B4",
	"Phoenix SQL Lite": "#BDD7EE",
	"Cancellations":    "#F8CBAD",
	"No-Shows":         "#FFC7CE",
	"Pacific":          "#E2EFDA",
	"Mountain":         "#DDEBF7",
	"Central":          "#FFF2CC",
	"Eastern":          "#FCE4D6",
}

// CellStyle decides the style of one data cell from the row kind, its month
// value, and the column. Pure: the renderer applies the result, nothing
// else mutates cells.
func CellStyle(kind core.RowKind, month, column string) StyleSpec {
	if kind == core.RowBlank {
		return StyleSpec{}
	}
	if kind == core.RowTotal || core.IsTotal(month) {
		return StyleSpec{Bold: true, Fill: totalFill}
	}
	return StyleSpec{Fill: columnFills[column]}
}

func defaultStyle() *excelize.Style {
	return &excelize.Style{
		Alignment: &excelize.Alignment{
			Vertical: "center",
		},
	}
}

func fontBold() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	}
}

func fill(color string) *excelize.Style {
	return &excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{color},
			Pattern: 1,
		},
	}
}

func mergeStyles(ext ...*excelize.Style) *excelize.Style {
	if len(ext) == 0 {
		return nil
	}
	for _, e := range ext[1:] {
		_ = mergo.Merge(ext[0], e, mergo.WithOverride)
	}
	return ext[0]
}
