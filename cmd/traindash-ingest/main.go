// traindash-ingest merges monthly reports and writes dashboard exports
// from the command line, against the same configured ledger store as the
// server.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin"
	"github.com/joho/godotenv"

	"traindash/internal/backend"
	"traindash/internal/config"
	"traindash/internal/services"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cmdUpload := kingpin.Command("upload", "Merge a monthly report into the dashboard")
	uploadFile := cmdUpload.Flag("file", "Report CSV file (default stdin)").OpenFile(os.O_RDONLY, 0666)

	cmdExport := kingpin.Command("export", "Write the dashboard to disk")
	exportCSV := cmdExport.Flag("csv", "Destination for the CSV export").String()
	exportXLSX := cmdExport.Flag("xlsx", "Destination for the XLSX export").String()

	cmdShow := kingpin.Command("show", "Print the dashboard as CSV")

	cmd := kingpin.Parse()

	svc, cleanup := newService(logger)
	defer cleanup()

	ctx := context.Background()

	switch cmd {
	case cmdUpload.FullCommand():
		input := io.Reader(os.Stdin)
		if *uploadFile != nil {
			input = *uploadFile
			defer (*uploadFile).Close()
		}
		runUpload(ctx, svc, input)
	case cmdExport.FullCommand():
		runExport(ctx, svc, *exportCSV, *exportXLSX)
	case cmdShow.FullCommand():
		runShow(ctx, svc)
	}
}

func newService(logger *slog.Logger) (*services.UploadService, func()) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		kingpin.Fatalf("configuration: %v", err)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		kingpin.Fatalf("backend configuration: %v", err)
	}

	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		kingpin.Fatalf("initialize ledger store: %v", err)
	}

	cleanup := func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Store cleanup error", "error", err)
			}
		}
	}
	return services.NewUploadService(result.Store, nil), cleanup
}

func runUpload(ctx context.Context, svc *services.UploadService, input io.Reader) {
	row, err := svc.Upload(ctx, input)
	if err != nil {
		kingpin.Fatalf("upload: %v", err)
	}
	kingpin.Errorf("merged %s: %d trainings", row.Month, row.TotalTrainings)
}

func runExport(ctx context.Context, svc *services.UploadService, csvPath, xlsxPath string) {
	if csvPath == "" && xlsxPath == "" {
		kingpin.Fatalf("export: pass --csv and/or --xlsx")
	}

	if csvPath != "" {
		data, err := svc.ExportCSV(ctx)
		if err != nil {
			kingpin.Fatalf("export csv: %v", err)
		}
		if err := os.WriteFile(csvPath, data, 0644); err != nil {
			kingpin.Fatalf("write %s: %v", csvPath, err)
		}
	}

	if xlsxPath != "" {
		data, err := svc.ExportXLSX(ctx)
		if err != nil {
			kingpin.Fatalf("export xlsx: %v", err)
		}
		if err := os.WriteFile(xlsxPath, data, 0644); err != nil {
			kingpin.Fatalf("write %s: %v", xlsxPath, err)
		}
	}
}

func runShow(ctx context.Context, svc *services.UploadService) {
	data, err := svc.ExportCSV(ctx)
	if err != nil {
		kingpin.Fatalf("export: %v", err)
	}
	if _, err := os.Stdout.Write(data); err != nil {
		kingpin.Fatalf("write: %v", err)
	}
}
