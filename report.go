package rival

import (
	"context"
	"time"
)

// Report is a persisted analysis result: one extracted product record
// together with the URL it was extracted from.
type Report struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	ProductName string    `json:"productName"`
	Product     *Product  `json:"product"`
	ContentHash string    `json:"contentHash"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the report contains invalid fields.
func (r *Report) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "report URL required")
	}
	if r.Product == nil {
		return Errorf(EINVALID, "report product required")
	}
	return r.Product.Validate()
}

// ReportService represents a service for managing persisted reports.
type ReportService interface {
	// CreateReport persists a new report.
	CreateReport(ctx context.Context, report *Report) error

	// FindReportByID retrieves a report by ID.
	// Returns ENOTFOUND if the report does not exist.
	FindReportByID(ctx context.Context, id string) (*Report, error)

	// FindReports retrieves reports matching the filter,
	// newest first.
	FindReports(ctx context.Context, filter ReportFilter) ([]*Report, error)

	// DeleteReport permanently removes a report.
	// Returns ENOTFOUND if the report does not exist.
	DeleteReport(ctx context.Context, id string) error
}

// ReportFilter represents a filter for FindReports.
type ReportFilter struct {
	ID          *string `json:"id"`
	URL         *string `json:"url"`
	ProductName *string `json:"productName"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
