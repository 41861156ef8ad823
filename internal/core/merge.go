package core

import "strings"

// RowKind distinguishes real ledger rows from the display-only sentinels.
type RowKind int

const (
	RowData RowKind = iota
	RowBlank
	RowTotal
)

type (
	// DisplayRow is one renderable row of the dashboard table.
	DisplayRow struct {
		Kind RowKind
		LedgerRow
	}

	// DisplayLedger is the exportable form: data rows, one blank separator,
	// one TOTAL row. An empty ledger displays as an empty table.
	DisplayLedger []DisplayRow
)

// Normalize strips TOTAL and blank sentinel rows, returning the canonical
// row-only ledger. Sentinels must never participate in duplicate-month
// detection, merging, or persistence, regardless of how they got in.
func Normalize(l Ledger) Ledger {
	out := make(Ledger, 0, len(l))
	for _, r := range l {
		if strings.TrimSpace(r.Month) == "" || IsTotal(r.Month) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// MergeRow inserts newRow into the ledger. Upload is a pure insert: a month
// that already exists is rejected with DuplicateMonthError and the input
// ledger is returned untouched. Row order is arrival order; no re-sorting.
func MergeRow(l Ledger, newRow LedgerRow) (Ledger, error) {
	if err := newRow.Validate(); err != nil {
		return l, err
	}
	rows := Normalize(l)
	if rows.Contains(newRow.Month) {
		return l, &DuplicateMonthError{Month: newRow.Month}
	}
	merged := rows.Clone()
	return append(merged, newRow), nil
}

// Totals sums every metric field across the real rows of the ledger.
func Totals(l Ledger) LedgerRow {
	t := LedgerRow{Month: TotalMonth}
	for _, r := range Normalize(l) {
		t.TotalTrainings += r.TotalTrainings
		t.DXFleet += r.DXFleet
		t.Phoenix += r.Phoenix
		t.Cancellations += r.Cancellations
		t.NoShows += r.NoShows
		t.Pacific += r.Pacific
		t.Mountain += r.Mountain
		t.Central += r.Central
		t.Eastern += r.Eastern
	}
	return t
}

// ComputeDisplay produces the dashboard view: all rows, a blank separator,
// and the TOTAL row. A zero-row ledger displays with no separator and no
// TOTAL.
func ComputeDisplay(l Ledger) DisplayLedger {
	rows := Normalize(l)
	out := make(DisplayLedger, 0, len(rows)+2)
	for _, r := range rows {
		out = append(out, DisplayRow{Kind: RowData, LedgerRow: r})
	}
	if len(rows) == 0 {
		return out
	}
	out = append(out, DisplayRow{Kind: RowBlank})
	out = append(out, DisplayRow{Kind: RowTotal, LedgerRow: Totals(rows)})
	return out
}

// Rows recovers the canonical ledger from a display ledger, dropping the
// sentinel rows.
func (d DisplayLedger) Rows() Ledger {
	out := make(Ledger, 0, len(d))
	for _, r := range d {
		if r.Kind != RowData {
			continue
		}
		out = append(out, r.LedgerRow)
	}
	return Normalize(out)
}
