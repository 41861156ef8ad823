package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TotalMonth is the sentinel month value of the derived aggregate row.
// It never appears in the canonical ledger, only in display/export form.
const TotalMonth = "TOTAL"

// Columns is the canonical field order for every encoding of the ledger.
var Columns = []string{
	"Month",
	"Total Trainings",
	"DXFleet",
	"Phoenix SQL Lite",
	"Cancellations",
	"No-Shows",
	"Pacific",
	"Mountain",
	"Central",
	"Eastern",
}

type (
	// LedgerRow is the summary of one calendar month of training events.
	LedgerRow struct {
		Month          string // YYYY-MM, or TotalMonth on the display aggregate
		TotalTrainings int
		DXFleet        int
		Phoenix        int
		Cancellations  int
		NoShows        int
		Pacific        int
		Mountain       int
		Central        int
		Eastern        int
	}

	// Ledger is the canonical row set, one row per month, in arrival order.
	Ledger []LedgerRow
)

var (
	ErrEmptyMonth     = errors.New("empty month")
	ErrNegativeMetric = errors.New("negative metric value")
)

// DuplicateMonthError rejects an upload whose month is already present.
type DuplicateMonthError struct {
	Month string
}

func (e *DuplicateMonthError) Error() string {
	return fmt.Sprintf("data for %s is already in the dashboard", e.Month)
}

// IsTotal reports whether a month value is the aggregate-row sentinel.
func IsTotal(month string) bool {
	return strings.EqualFold(strings.TrimSpace(month), TotalMonth)
}

// Metrics returns the nine numeric fields in canonical column order.
func (r LedgerRow) Metrics() [9]int {
	return [9]int{
		r.TotalTrainings,
		r.DXFleet,
		r.Phoenix,
		r.Cancellations,
		r.NoShows,
		r.Pacific,
		r.Mountain,
		r.Central,
		r.Eastern,
	}
}

func (r LedgerRow) Validate() error {
	m := strings.TrimSpace(r.Month)
	if m == "" {
		return ErrEmptyMonth
	}
	if IsTotal(m) {
		return fmt.Errorf("month %q is reserved for the aggregate row", r.Month)
	}
	if _, err := time.Parse("2006-01", m); err != nil {
		return fmt.Errorf("invalid month %q: want YYYY-MM", r.Month)
	}
	for i, v := range r.Metrics() {
		if v < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeMetric, Columns[i+1])
		}
	}
	return nil
}

// Months returns the month keys in ledger order.
func (l Ledger) Months() []string {
	out := make([]string, 0, len(l))
	for _, r := range l {
		out = append(out, r.Month)
	}
	return out
}

// Contains reports whether a row for the given month exists.
func (l Ledger) Contains(month string) bool {
	for _, r := range l {
		if r.Month == month {
			return true
		}
	}
	return false
}

// Clone returns an independent copy, preserving value semantics across the
// merge/persist boundary.
func (l Ledger) Clone() Ledger {
	if l == nil {
		return nil
	}
	out := make(Ledger, len(l))
	copy(out, l)
	return out
}
