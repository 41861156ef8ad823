// Package export renders the display ledger into its two download
// encodings: delimited text and a styled spreadsheet.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"traindash/internal/core"
)

// CSV renders the display ledger as delimited text: header row, one line
// per row including the blank separator and the TOTAL row verbatim, fields
// in canonical column order.
func CSV(d core.DisplayLedger) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(core.Columns)
	for _, row := range d {
		_ = w.Write(displayFields(row))
	}
	w.Flush()
	return buf.Bytes()
}

func displayFields(row core.DisplayRow) []string {
	fields := make([]string, len(core.Columns))
	if row.Kind == core.RowBlank {
		return fields
	}
	fields[0] = row.Month
	for i, v := range row.Metrics() {
		fields[i+1] = strconv.Itoa(v)
	}
	return fields
}
