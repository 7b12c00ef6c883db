package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/truassets/internal/query"
	"github.com/sakif/truassets/internal/service"
)

// ReportHandler serves the admin reports, the CSV export and the analytics
// view.
type ReportHandler struct {
	svc    *service.ReportService
	now    func() time.Time
	logger *slog.Logger
}

func NewReportHandler(svc *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, now: time.Now, logger: logger}
}

func reportCriteria(r *http.Request) query.ReportCriteria {
	q := r.URL.Query()
	return query.ReportCriteria{Type: q.Get("type"), Status: q.Get("status")}
}

// HTTP: GET /api/admin/reports?type=&status=
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Report(reportCriteria(r)))
}

// HandleExport downloads the filtered report as CSV. The file is rendered
// into a buffer first so an error can still produce a JSON error response.
//
// HTTP: GET /api/admin/reports/export?type=&status=
func (h *ReportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.svc.ExportCSV(&buf, reportCriteria(r)); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", query.ReportFilename(h.now())))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write CSV export", slog.String("error", err.Error()))
	}
}

// HTTP: GET /api/admin/analytics
func (h *ReportHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Analytics())
}
