package service

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sakif/truassets/internal/apperror"
	"github.com/sakif/truassets/internal/query"
	"github.com/sakif/truassets/internal/repository"
)

// ReportService computes the admin reports over the current catalog.
type ReportService struct {
	props  repository.Properties
	logger *slog.Logger
}

func NewReportService(props repository.Properties, logger *slog.Logger) *ReportService {
	return &ReportService{props: props, logger: logger}
}

func (s *ReportService) Report(c query.ReportCriteria) query.Report {
	return query.BuildReport(s.props.All(), c)
}

// ExportCSV writes the filtered report as CSV. An empty selection is an error
// so that no header-only file is produced.
func (s *ReportService) ExportCSV(w io.Writer, c query.ReportCriteria) error {
	r := s.Report(c)
	if r.Count == 0 {
		return &apperror.AppError{Err: apperror.ErrNotFound, Message: "no properties to export"}
	}
	if err := query.WriteCSV(w, r.Rows); err != nil {
		return fmt.Errorf("exporting report: %w", err)
	}
	s.logger.Info("report exported",
		slog.Int("rows", r.Count),
		slog.String("type", c.Type),
		slog.String("status", c.Status),
	)
	return nil
}

func (s *ReportService) Analytics() query.Analytics {
	return query.BuildAnalytics(s.props.All())
}
