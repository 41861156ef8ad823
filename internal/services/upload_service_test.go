package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"traindash/internal/core"
	"traindash/internal/store"
	"traindash/internal/store/memory"
)

const mayReport = `Start Date & Time,Event Type Name,Canceled,Marked as No-Show,Invitee Time Zone
2025-05-05 09:00,DXFleet Onboarding,false,No,Central Time - US & Canada
2025-05-06 10:00,DXFleet Refresher,false,No,Central Time - US & Canada
2025-05-07 11:00,DXFleet Deep Dive,false,No,Central Time - US & Canada
2025-05-08 09:00,General Session,true,No,Eastern Time - US & Canada
2025-05-09 14:00,General Session,false,No,Eastern Time - US & Canada
2025-05-12 09:00,General Session,false,No,Eastern Time - US & Canada
2025-05-13 10:00,General Session,false,No,Eastern Time - US & Canada
2025-05-14 11:00,General Session,false,No,Eastern Time - US & Canada
2025-05-15 09:00,General Session,false,No,Central Time - US & Canada
2025-05-16 10:00,General Session,false,No,Central Time - US & Canada
`

func seedStore(t *testing.T, rows core.Ledger) *memory.Store {
	t.Helper()
	st := memory.New()
	if _, err := st.Save(context.Background(), rows, ""); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return st
}

func TestUploadMergesAndPersists(t *testing.T) {
	st := seedStore(t, core.Ledger{{Month: "2025-04", TotalTrainings: 14}})
	svc := NewUploadService(st, nil)

	row, err := svc.Upload(context.Background(), strings.NewReader(mayReport))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if row.Month != "2025-05" || row.TotalTrainings != 10 {
		t.Fatalf("unexpected extracted row: %+v", row)
	}

	ledger, _, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(ledger.Months(), []string{"2025-04", "2025-05"}) {
		t.Fatalf("persisted months = %v", ledger.Months())
	}
}

func TestUploadRejectsDuplicateMonthWithoutPersisting(t *testing.T) {
	seed := core.Ledger{{Month: "2025-05", TotalTrainings: 3}}
	st := seedStore(t, seed)
	svc := NewUploadService(st, nil)

	_, err := svc.Upload(context.Background(), strings.NewReader(mayReport))
	var dup *core.DuplicateMonthError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateMonthError, got %v", err)
	}

	ledger, _, _ := st.Load(context.Background())
	if !reflect.DeepEqual(ledger, seed) {
		t.Fatalf("rejected upload mutated store: %+v", ledger)
	}
}

func TestUploadRejectsUnparsableReport(t *testing.T) {
	st := memory.New()
	svc := NewUploadService(st, nil)

	_, err := svc.Upload(context.Background(), strings.NewReader("Event Type Name\nGeneral Session\n"))
	if err == nil {
		t.Fatal("expected error for report without start column")
	}

	ledger, _, _ := st.Load(context.Background())
	if len(ledger) != 0 {
		t.Fatalf("rejected upload created rows: %+v", ledger)
	}
}

func TestUploadSurfacesSaveConflict(t *testing.T) {
	// Another writer created the ledger after our load observed it absent,
	// so the save carries a stale (empty) version token.
	st := seedStore(t, core.Ledger{{Month: "2025-01", TotalTrainings: 1}})
	svc := NewUploadService(&staleLoadStore{inner: st}, nil)

	_, err := svc.Upload(context.Background(), strings.NewReader(mayReport))
	var conflict *store.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

// staleLoadStore reports an absent ledger on Load while delegating Save, so
// every save carries a stale version token.
type staleLoadStore struct {
	inner *memory.Store
}

func (s *staleLoadStore) Load(ctx context.Context) (core.Ledger, store.Version, error) {
	return core.Ledger{}, "", nil
}

func (s *staleLoadStore) Save(ctx context.Context, l core.Ledger, ver store.Version) (store.Version, error) {
	return s.inner.Save(ctx, l, ver)
}

func TestDashboardComputesDisplay(t *testing.T) {
	st := seedStore(t, core.Ledger{
		{Month: "2025-03", TotalTrainings: 8},
		{Month: "2025-04", TotalTrainings: 14},
	})
	svc := NewUploadService(st, nil)

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(d) != 4 {
		t.Fatalf("expected 2 data + blank + total rows, got %d", len(d))
	}
	if d[3].Kind != core.RowTotal || d[3].TotalTrainings != 22 {
		t.Fatalf("bad TOTAL row: %+v", d[3])
	}
}

func TestExportCSVIncludesTotalRow(t *testing.T) {
	st := seedStore(t, core.Ledger{{Month: "2025-03", TotalTrainings: 8}})
	svc := NewUploadService(st, nil)

	out, err := svc.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("export csv: %v", err)
	}
	if !strings.Contains(string(out), "\nTOTAL,8,") {
		t.Fatalf("csv missing TOTAL row:\n%s", out)
	}
}

func TestExportXLSXProducesWorkbook(t *testing.T) {
	st := seedStore(t, core.Ledger{{Month: "2025-03", TotalTrainings: 8}})
	svc := NewUploadService(st, nil)

	out, err := svc.ExportXLSX(context.Background())
	if err != nil {
		t.Fatalf("export xlsx: %v", err)
	}
	// XLSX files are zip archives.
	if len(out) < 4 || string(out[:2]) != "PK" {
		t.Fatalf("output does not look like a workbook (%d bytes)", len(out))
	}
}
