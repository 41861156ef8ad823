package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"traindash/internal/core"
)

// EncodeLedger renders the canonical persisted form: header row plus one
// line per real month row. Display sentinels are stripped, never persisted.
func EncodeLedger(l core.Ledger) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(core.Columns)
	for _, r := range core.Normalize(l) {
		_ = w.Write(fieldsOf(r))
	}
	w.Flush()
	return buf.Bytes()
}

// DecodeLedger parses a canonical ledger blob. Blank and TOTAL lines are
// tolerated and dropped, so a blob that accidentally contains display
// sentinels still decodes to the row-only ledger.
func DecodeLedger(data []byte) (core.Ledger, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse ledger csv: %w", err)
	}
	if len(records) == 0 {
		return core.Ledger{}, nil
	}

	var out core.Ledger
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		month := strings.TrimSpace(rec[0])
		if core.IsTotal(month) {
			continue
		}
		if _, ok := seen[month]; ok {
			return nil, fmt.Errorf("ledger has more than one row for month %q", month)
		}
		seen[month] = struct{}{}
		if len(rec) != len(core.Columns) {
			return nil, fmt.Errorf("ledger row for %q has %d fields, want %d", month, len(rec), len(core.Columns))
		}
		row := core.LedgerRow{Month: month}
		dst := []*int{
			&row.TotalTrainings, &row.DXFleet, &row.Phoenix,
			&row.Cancellations, &row.NoShows,
			&row.Pacific, &row.Mountain, &row.Central, &row.Eastern,
		}
		for i, p := range dst {
			v, err := strconv.Atoi(strings.TrimSpace(rec[i+1]))
			if err != nil {
				return nil, fmt.Errorf("ledger row %q: bad %s value %q", month, core.Columns[i+1], rec[i+1])
			}
			*p = v
		}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("ledger row %q: %w", month, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func fieldsOf(r core.LedgerRow) []string {
	fields := make([]string, 0, len(core.Columns))
	fields = append(fields, r.Month)
	for _, v := range r.Metrics() {
		fields = append(fields, strconv.Itoa(v))
	}
	return fields
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
