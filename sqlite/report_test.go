package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/rivalhq/rival"
	"github.com/rivalhq/rival/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(name, url string) *rival.Product {
	return &rival.Product{
		ProductName: name,
		URL:         url,
		PricingTiers: []rival.PricingTier{
			{Name: "Pro", Price: "12", Currency: "USD", BillingCycle: rival.BillingMonthly},
		},
		CoreFeatures: []string{"API access"},
		Summary:      "## Overview\nA product.",
		LastUpdated:  time.Now().UTC(),
	}
}

func createTestReport(t *testing.T, db *sqlite.DB, name, url string) *rival.Report {
	t.Helper()
	svc := sqlite.NewReportService(db)
	report := &rival.Report{URL: url, Product: testProduct(name, url)}
	require.NoError(t, svc.CreateReport(context.Background(), report))
	return report
}

func TestReportService_CreateReport(t *testing.T) {
	t.Parallel()

	t.Run("creates report with generated ID, hash and timestamp", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewReportService(db)

		report := &rival.Report{
			URL:     "https://example.com/pricing",
			Product: testProduct("Notion", "https://example.com/pricing"),
		}

		err := svc.CreateReport(context.Background(), report)
		require.NoError(t, err)

		assert.NotEmpty(t, report.ID, "ID should be generated")
		assert.NotEmpty(t, report.ContentHash, "ContentHash should be generated")
		assert.Equal(t, "Notion", report.ProductName, "ProductName should be denormalized")
		assert.False(t, report.CreatedAt.IsZero(), "CreatedAt should be set")
	})

	t.Run("returns error for invalid report", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewReportService(db)

		err := svc.CreateReport(context.Background(), &rival.Report{}) // missing required fields
		require.Error(t, err)
		assert.Equal(t, rival.EINVALID, rival.ErrorCode(err))
	})

	t.Run("identical products produce the same content hash", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		// LastUpdated differs between the two, so pin it.
		ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		p1 := testProduct("Linear", "https://linear.app/pricing")
		p2 := testProduct("Linear", "https://linear.app/pricing")
		p1.LastUpdated, p2.LastUpdated = ts, ts

		svc := sqlite.NewReportService(db)
		r1 := &rival.Report{URL: p1.URL, Product: p1}
		r2 := &rival.Report{URL: p2.URL, Product: p2}
		require.NoError(t, svc.CreateReport(context.Background(), r1))
		require.NoError(t, svc.CreateReport(context.Background(), r2))

		assert.Equal(t, r1.ContentHash, r2.ContentHash)
		assert.NotEqual(t, r1.ID, r2.ID)
	})
}

func TestReportService_FindReportByID(t *testing.T) {
	t.Parallel()

	t.Run("round-trips the product record", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		created := createTestReport(t, db, "Notion", "https://example.com/pricing")

		svc := sqlite.NewReportService(db)
		found, err := svc.FindReportByID(context.Background(), created.ID)
		require.NoError(t, err)

		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "https://example.com/pricing", found.URL)
		require.NotNil(t, found.Product)
		assert.Equal(t, "Notion", found.Product.ProductName)
		require.Len(t, found.Product.PricingTiers, 1)
		assert.Equal(t, rival.BillingMonthly, found.Product.PricingTiers[0].BillingCycle)
		assert.Equal(t, created.ContentHash, found.ContentHash)
	})

	t.Run("returns ENOTFOUND for missing report", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewReportService(db)

		_, err := svc.FindReportByID(context.Background(), "no-such-id")
		require.Error(t, err)
		assert.Equal(t, rival.ENOTFOUND, rival.ErrorCode(err))
	})
}

func TestReportService_FindReports(t *testing.T) {
	t.Parallel()

	t.Run("filters by URL", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		createTestReport(t, db, "Notion", "https://notion.so/pricing")
		createTestReport(t, db, "Linear", "https://linear.app/pricing")

		svc := sqlite.NewReportService(db)
		url := "https://linear.app/pricing"
		reports, err := svc.FindReports(context.Background(), rival.ReportFilter{URL: &url})
		require.NoError(t, err)

		require.Len(t, reports, 1)
		assert.Equal(t, "Linear", reports[0].ProductName)
	})

	t.Run("filters by product name", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		createTestReport(t, db, "Notion", "https://notion.so/pricing")
		createTestReport(t, db, "Notion", "https://notion.so/product")
		createTestReport(t, db, "Linear", "https://linear.app/pricing")

		svc := sqlite.NewReportService(db)
		name := "Notion"
		reports, err := svc.FindReports(context.Background(), rival.ReportFilter{ProductName: &name})
		require.NoError(t, err)

		assert.Len(t, reports, 2)
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		for _, url := range []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"} {
			createTestReport(t, db, "P", url)
		}

		svc := sqlite.NewReportService(db)
		reports, err := svc.FindReports(context.Background(), rival.ReportFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)

		assert.Len(t, reports, 2)
	})

	t.Run("empty filter returns everything", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		createTestReport(t, db, "Notion", "https://notion.so/pricing")
		createTestReport(t, db, "Linear", "https://linear.app/pricing")

		svc := sqlite.NewReportService(db)
		reports, err := svc.FindReports(context.Background(), rival.ReportFilter{})
		require.NoError(t, err)

		assert.Len(t, reports, 2)
	})
}

func TestReportService_DeleteReport(t *testing.T) {
	t.Parallel()

	t.Run("deletes an existing report", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		created := createTestReport(t, db, "Notion", "https://notion.so/pricing")

		svc := sqlite.NewReportService(db)
		require.NoError(t, svc.DeleteReport(context.Background(), created.ID))

		_, err := svc.FindReportByID(context.Background(), created.ID)
		require.Error(t, err)
		assert.Equal(t, rival.ENOTFOUND, rival.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for missing report", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewReportService(db)

		err := svc.DeleteReport(context.Background(), "no-such-id")
		require.Error(t, err)
		assert.Equal(t, rival.ENOTFOUND, rival.ErrorCode(err))
	})
}
