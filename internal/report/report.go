// Package report parses one uploaded monthly training-event report and
// reduces it to a single dashboard ledger row.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"traindash/internal/core"
)

// Column identifiers of the uploaded report. Order in the file is free;
// lookup is by header name.
const (
	ColStart    = "Start Date & Time"
	ColType     = "Event Type Name"
	ColCanceled = "Canceled"
	ColNoShow   = "Marked as No-Show"
	ColTimeZone = "Invitee Time Zone"
)

// Canonical invitee timezone labels. Anything else is excluded from all
// four buckets.
const (
	tzPacific  = "Pacific Time - US & Canada"
	tzMountain = "Mountain Time - US & Canada"
	tzCentral  = "Central Time - US & Canada"
	tzEastern  = "Eastern Time - US & Canada"
)

var (
	ErrEmptyReport  = errors.New("report contains no data rows")
	ErrNoTimestamps = errors.New("report contains no parseable event timestamps")
)

// MultiMonthError rejects a report whose events span more than one calendar
// month. The report must represent a single reporting period.
type MultiMonthError struct {
	Months []string
}

func (e *MultiMonthError) Error() string {
	return fmt.Sprintf("the report must contain data from only one month; found %s",
		strings.Join(e.Months, ", "))
}

// MissingColumnError rejects a report without its start-timestamp column.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("report is missing required column %q", e.Column)
}

// Accepted timestamp layouts, tried in order.
var startLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
	"01/02/2006",
}

// record gives named-field access to one CSV row. Missing optional columns
// read as absent, never as an error.
type record struct {
	index  map[string]int
	fields []string
}

func (r record) get(col string) (string, bool) {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return "", false
	}
	v := strings.TrimSpace(r.fields[i])
	if v == "" {
		return "", false
	}
	return v, true
}

// Extract reads the raw report and derives the summary row for its month.
// Unparsable timestamps are coerced to missing rather than failing the
// batch; all parseable timestamps must agree on one calendar month.
func Extract(r io.Reader) (core.LedgerRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return core.LedgerRow{}, ErrEmptyReport
	}
	if err != nil {
		return core.LedgerRow{}, fmt.Errorf("read report header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[canonicalName(name)] = i
	}
	if _, ok := index[canonicalName(ColStart)]; !ok {
		return core.LedgerRow{}, &MissingColumnError{Column: ColStart}
	}

	var row core.LedgerRow
	months := map[string]struct{}{}

	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return core.LedgerRow{}, fmt.Errorf("read report row: %w", err)
		}
		if blankFields(fields) {
			continue
		}
		rec := record{index: index, fields: fields}
		row.TotalTrainings++

		if v, ok := rec.get(canonicalName(ColStart)); ok {
			if t, ok := parseStart(v); ok {
				months[t.Format("2006-01")] = struct{}{}
			}
		}

		if v, ok := rec.get(canonicalName(ColType)); ok {
			name := strings.ToLower(v)
			if strings.Contains(name, "dxfleet") {
				row.DXFleet++
			}
			if strings.Contains(name, "phoenix sql lite") {
				row.Phoenix++
			}
		}

		if v, ok := rec.get(canonicalName(ColCanceled)); ok && isCanceled(v) {
			row.Cancellations++
		}

		if v, ok := rec.get(canonicalName(ColNoShow)); ok && strings.EqualFold(v, "yes") {
			row.NoShows++
		}

		if v, ok := rec.get(canonicalName(ColTimeZone)); ok {
			switch v {
			case tzPacific:
				row.Pacific++
			case tzMountain:
				row.Mountain++
			case tzCentral:
				row.Central++
			case tzEastern:
				row.Eastern++
			}
		}
	}

	if row.TotalTrainings == 0 {
		return core.LedgerRow{}, ErrEmptyReport
	}

	switch len(months) {
	case 0:
		return core.LedgerRow{}, ErrNoTimestamps
	case 1:
		for m := range months {
			row.Month = m
		}
	default:
		list := make([]string, 0, len(months))
		for m := range months {
			list = append(list, m)
		}
		sort.Strings(list)
		return core.LedgerRow{}, &MultiMonthError{Months: list}
	}

	return row, nil
}

func canonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func blankFields(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseStart(v string) (time.Time, bool) {
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isCanceled(v string) bool {
	switch strings.ToLower(v) {
	case "true", "yes", "1":
		return true
	}
	return false
}
