package http

import (
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"traindash/internal/core"
	"traindash/internal/report"
	"traindash/internal/store"
)

// maxReportSize bounds the uploaded report body.
const maxReportSize = 10 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	display, err := s.svc.Dashboard(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard load error", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	data := struct {
		Columns []string
		Rows    []tableRow
	}{
		Columns: core.Columns,
		Rows:    tableRows(display),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// tableRow is one rendered dashboard row. Blank separator rows carry empty
// cells, the TOTAL row gets its own styling class.
type tableRow struct {
	Class string
	Cells []string
}

func tableRows(d core.DisplayLedger) []tableRow {
	rows := make([]tableRow, 0, len(d))
	for _, row := range d {
		switch row.Kind {
		case core.RowBlank:
			rows = append(rows, tableRow{Class: "separator", Cells: make([]string, len(core.Columns))})
		case core.RowTotal:
			rows = append(rows, tableRow{Class: "total", Cells: rowCells(row.LedgerRow)})
		default:
			rows = append(rows, tableRow{Cells: rowCells(row.LedgerRow)})
		}
	}
	return rows
}

func rowCells(r core.LedgerRow) []string {
	cells := make([]string, 0, len(core.Columns))
	cells = append(cells, r.Month)
	for _, v := range r.Metrics() {
		cells = append(cells, strconv.Itoa(v))
	}
	return cells
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReportSize)
	if err := r.ParseMultipartForm(maxReportSize); err != nil {
		slog.ErrorContext(r.Context(), "Parse multipart form error", "error", err)
		writeFragment(w, http.StatusBadRequest, "error", "The upload request was not valid.")
		return
	}

	file, header, err := r.FormFile("report")
	if err != nil {
		writeFragment(w, http.StatusBadRequest, "error", "Choose a report file to upload.")
		return
	}
	defer file.Close()

	row, err := s.svc.Upload(r.Context(), file)
	if err != nil {
		s.writeUploadError(w, r, header.Filename, err)
		return
	}

	w.Header().Set("HX-Trigger", `{"ledger:updated": {"month": "`+template.JSEscapeString(row.Month)+`"}}`)
	writeFragment(w, http.StatusOK, "success",
		fmt.Sprintf("Merged %s: %d trainings (%d DXFleet, %d Phoenix SQL Lite).",
			row.Month, row.TotalTrainings, row.DXFleet, row.Phoenix))
}

func (s *Server) writeUploadError(w http.ResponseWriter, r *http.Request, filename string, err error) {
	var (
		dup        *core.DuplicateMonthError
		multiMonth *report.MultiMonthError
		missingCol *report.MissingColumnError
		parseErr   *csv.ParseError
		conflict   *store.ConflictError
		transport  *store.TransportError
	)

	switch {
	case errors.As(err, &dup):
		writeFragment(w, http.StatusConflict, "error", dup.Error())
	case errors.As(err, &multiMonth):
		writeFragment(w, http.StatusUnprocessableEntity, "error", multiMonth.Error())
	case errors.As(err, &missingCol):
		writeFragment(w, http.StatusUnprocessableEntity, "error", missingCol.Error())
	case errors.Is(err, report.ErrEmptyReport):
		writeFragment(w, http.StatusUnprocessableEntity, "error", "The report contains no event rows.")
	case errors.Is(err, report.ErrNoTimestamps):
		writeFragment(w, http.StatusUnprocessableEntity, "error", "No usable start timestamps were found in the report.")
	case errors.As(err, &parseErr):
		writeFragment(w, http.StatusUnprocessableEntity, "error",
			fmt.Sprintf("The report is not valid CSV: %v.", parseErr))
	case errors.As(err, &conflict):
		writeFragment(w, http.StatusConflict, "error", "The dashboard was updated by someone else. Reload and try again.")
	case errors.As(err, &transport):
		slog.ErrorContext(r.Context(), "Store transport failure during upload", "error", err, "filename", filename)
		writeFragment(w, http.StatusBadGateway, "error",
			fmt.Sprintf("The dashboard could not be saved: %v.", transport))
	default:
		slog.ErrorContext(r.Context(), "Upload failed", "error", err, "filename", filename)
		writeFragment(w, http.StatusInternalServerError, "error", "The upload could not be processed.")
	}
}

func writeFragment(w http.ResponseWriter, status int, class, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="` + class + `">` + template.HTMLEscapeString(msg) + `</div>`))
}

func (s *Server) handleDownloadCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.ExportCSV(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "CSV export error", "error", err)
		http.Error(w, "failed to export dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard.csv"`)
	_, _ = w.Write(data)
}

func (s *Server) handleDownloadXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.ExportXLSX(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "XLSX export error", "error", err)
		http.Error(w, "failed to export dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard.xlsx"`)
	_, _ = w.Write(data)
}
