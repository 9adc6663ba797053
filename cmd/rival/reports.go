package main

import (
	"fmt"

	"github.com/rivalhq/rival"
	"github.com/rivalhq/rival/fs"
)

// ListCmd lists stored reports, newest first.
type ListCmd struct {
	URL     string `help:"Only show reports for this URL."`
	Product string `help:"Only show reports for this product name."`
	Limit   int    `default:"20" help:"Maximum number of reports to show."`
}

// Run prints one line per report.
func (c *ListCmd) Run(deps *Dependencies) error {
	db, reports, err := deps.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	filter := rival.ReportFilter{Limit: c.Limit}
	if c.URL != "" {
		filter.URL = &c.URL
	}
	if c.Product != "" {
		filter.ProductName = &c.Product
	}

	found, err := reports.FindReports(deps.Ctx, filter)
	if err != nil {
		return err
	}

	if len(found) == 0 {
		fmt.Fprintln(deps.Stdout, "no reports")
		return nil
	}

	for _, r := range found {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-20s  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.ProductName, r.URL)
	}
	return nil
}

// ShowCmd prints one stored report as JSON.
type ShowCmd struct {
	ID string `arg:"" help:"Report ID."`
}

// Run prints the stored product record.
func (c *ShowCmd) Run(deps *Dependencies) error {
	db, reports, err := deps.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := reports.FindReportByID(deps.Ctx, c.ID)
	if err != nil {
		if rival.ErrorCode(err) == rival.ENOTFOUND {
			return fmt.Errorf("report %s not found", c.ID)
		}
		return err
	}

	data, err := fs.FormatProduct(report.Product)
	if err != nil {
		return err
	}
	_, err = deps.Stdout.Write(data)
	return err
}

// DeleteCmd removes one stored report.
type DeleteCmd struct {
	ID string `arg:"" help:"Report ID."`
}

// Run deletes the report.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	db, reports, err := deps.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := reports.DeleteReport(deps.Ctx, c.ID); err != nil {
		if rival.ErrorCode(err) == rival.ENOTFOUND {
			return fmt.Errorf("report %s not found", c.ID)
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "deleted %s\n", c.ID)
	return nil
}
