package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/rivalhq/rival"
)

// Compile-time interface verification.
var _ rival.ReportService = (*ReportService)(nil)

// ReportService implements rival.ReportService using SQLite. Product
// records are stored as JSON; the queryable fields (URL, product name)
// are denormalized into columns.
type ReportService struct {
	db *DB
}

// NewReportService creates a new ReportService.
func NewReportService(db *DB) *ReportService {
	return &ReportService{db: db}
}

// hashContent computes xxHash of content and returns a hex string.
func hashContent(content string) string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, xxhash.Sum64String(content))
	return hex.EncodeToString(b)
}

// CreateReport persists a new report. The ID, content hash and creation
// time are assigned here; the content hash covers the serialized product
// so unchanged re-analyses are detectable.
func (s *ReportService) CreateReport(ctx context.Context, report *rival.Report) error {
	if err := report.Validate(); err != nil {
		return err
	}

	product, err := json.Marshal(report.Product)
	if err != nil {
		return fmt.Errorf("failed to serialize product: %w", err)
	}

	report.ID = uuid.New().String()
	report.ProductName = report.Product.ProductName
	report.ContentHash = hashContent(string(product))
	report.CreatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, url, product_name, product, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, report.ID, report.URL, report.ProductName, string(product), report.ContentHash,
		report.CreatedAt.Format(time.RFC3339))

	return err
}

// FindReportByID retrieves a report by ID.
func (s *ReportService) FindReportByID(ctx context.Context, id string) (*rival.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url, product_name, product, content_hash, created_at
		FROM reports
		WHERE id = ?
	`, id)

	report, err := scanReport(row.Scan)
	if err == sql.ErrNoRows {
		return nil, rival.Errorf(rival.ENOTFOUND, "report not found")
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// FindReports retrieves reports matching the filter, newest first.
func (s *ReportService) FindReports(ctx context.Context, filter rival.ReportFilter) ([]*rival.Report, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, url, product_name, product, content_hash, created_at FROM reports WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.ProductName != nil {
		query.WriteString(" AND product_name = ?")
		args = append(args, *filter.ProductName)
	}

	query.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*rival.Report
	for rows.Next() {
		report, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// DeleteReport permanently removes a report.
func (s *ReportService) DeleteReport(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return rival.Errorf(rival.ENOTFOUND, "report not found")
	}

	return nil
}

// scanReport hydrates one report row, decoding the product JSON and
// parsing the stored timestamp.
func scanReport(scan func(dest ...any) error) (*rival.Report, error) {
	var report rival.Report
	var product, createdAt string

	if err := scan(&report.ID, &report.URL, &report.ProductName, &product,
		&report.ContentHash, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(product), &report.Product); err != nil {
		return nil, fmt.Errorf("failed to decode stored product: %w", err)
	}

	var err error
	report.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &report, nil
}
