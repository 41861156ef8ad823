// Package services orchestrates the upload pipeline across the report
// parser, the ledger store, and AMQP.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"traindash/internal/amqp"
	"traindash/internal/core"
	"traindash/internal/export"
	"traindash/internal/report"
	"traindash/internal/store"
)

// UploadService runs the monthly report pipeline: load the ledger, extract
// the month summary from the uploaded report, merge, persist, notify.
type UploadService struct {
	store      store.LedgerStore
	amqpClient *amqp.Client
}

func NewUploadService(store store.LedgerStore, amqpClient *amqp.Client) *UploadService {
	return &UploadService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Dashboard returns the current display ledger: data rows plus the derived
// separator and TOTAL rows.
func (s *UploadService) Dashboard(ctx context.Context) (core.DisplayLedger, error) {
	ledger, _, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return core.ComputeDisplay(ledger), nil
}

// Upload processes one monthly report. The ledger version captured at load
// time guards the save, so a concurrent upload of the same month loses with
// a conflict instead of silently overwriting.
//
// Rejections (unparsable report, multi-month report, duplicate month) leave
// the stored ledger untouched.
func (s *UploadService) Upload(ctx context.Context, r io.Reader) (core.LedgerRow, error) {
	ledger, version, err := s.store.Load(ctx)
	if err != nil {
		return core.LedgerRow{}, fmt.Errorf("load ledger: %w", err)
	}

	row, err := report.Extract(r)
	if err != nil {
		return core.LedgerRow{}, fmt.Errorf("extract report: %w", err)
	}

	merged, err := core.MergeRow(ledger, row)
	if err != nil {
		return core.LedgerRow{}, err
	}

	if _, err := s.store.Save(ctx, merged, version); err != nil {
		return core.LedgerRow{}, fmt.Errorf("save ledger: %w", err)
	}

	slog.InfoContext(ctx, "Merged monthly report",
		"month", row.Month,
		"trainings", row.TotalTrainings,
		"rows", len(merged))

	if err := s.publishLedgerUpdated(ctx, row.Month, len(merged)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger update",
			"month", row.Month, "error", err)
		// Don't fail the upload, the ledger is already persisted.
	}

	return row, nil
}

// ExportCSV renders the current display ledger as delimited text.
func (s *UploadService) ExportCSV(ctx context.Context) ([]byte, error) {
	d, err := s.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return export.CSV(d), nil
}

// ExportXLSX renders the current display ledger as a styled workbook.
func (s *UploadService) ExportXLSX(ctx context.Context) ([]byte, error) {
	d, err := s.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return export.XLSX(d)
}

func (s *UploadService) publishLedgerUpdated(ctx context.Context, month string, rows int) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping ledger update message")
		return nil
	}

	return s.amqpClient.PublishLedgerUpdated(ctx, month, rows)
}

// Close releases the AMQP connection if one is attached.
func (s *UploadService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close upload service: %w", err)
		}
	}
	return nil
}
