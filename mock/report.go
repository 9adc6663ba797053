package mock

import (
	"context"

	"github.com/rivalhq/rival"
)

var _ rival.ReportService = (*ReportService)(nil)

// ReportService is a mock implementation of rival.ReportService.
type ReportService struct {
	CreateReportFn   func(ctx context.Context, report *rival.Report) error
	FindReportByIDFn func(ctx context.Context, id string) (*rival.Report, error)
	FindReportsFn    func(ctx context.Context, filter rival.ReportFilter) ([]*rival.Report, error)
	DeleteReportFn   func(ctx context.Context, id string) error
}

func (s *ReportService) CreateReport(ctx context.Context, report *rival.Report) error {
	return s.CreateReportFn(ctx, report)
}

func (s *ReportService) FindReportByID(ctx context.Context, id string) (*rival.Report, error) {
	return s.FindReportByIDFn(ctx, id)
}

func (s *ReportService) FindReports(ctx context.Context, filter rival.ReportFilter) ([]*rival.Report, error) {
	return s.FindReportsFn(ctx, filter)
}

func (s *ReportService) DeleteReport(ctx context.Context, id string) error {
	return s.DeleteReportFn(ctx, id)
}
