package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rivalhq/rival"
	"github.com/rivalhq/rival/fs"
)

// AnalyzeCmd runs the analysis pipeline for one or more URLs.
type AnalyzeCmd struct {
	URLs       []string      `arg:"" name:"url" help:"Product or pricing page URLs to analyze."`
	Output     string        `short:"o" help:"Write the JSON report to this path (single URL only)."`
	Timeout    time.Duration `short:"t" default:"30s" help:"Navigation timeout per page."`
	NoHeadless bool          `help:"Run the browser with a visible window."`
}

// Run analyzes each URL sequentially. The browser and its browsing
// context are shared across URLs, so runs must not overlap.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	if c.Output != "" && len(c.URLs) > 1 {
		return fmt.Errorf("--output requires a single url")
	}

	p, fetcher, err := newPipeline(deps, c.Timeout, deps.Config.Headless && !c.NoHeadless)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	db, reports, err := deps.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	writer := fs.NewWriter(deps.Config.ReportsDir)

	var failed int
	for _, url := range c.URLs {
		a := p.Run(deps.Ctx, url)
		if a.Err != nil {
			fmt.Fprintln(deps.Stderr, a.Err)
			failed++
			continue
		}

		path, err := writer.WriteProduct(a.Product, c.Output)
		if err != nil {
			return fmt.Errorf("failed to write report for %s: %w", url, err)
		}

		report := &rival.Report{URL: url, Product: a.Product}
		if err := reports.CreateReport(deps.Ctx, report); err != nil {
			return fmt.Errorf("failed to store report for %s: %w", url, err)
		}

		printSummary(deps.Stdout, report, a.Title, path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d analyses failed", failed, len(c.URLs))
	}
	return nil
}

// printSummary writes a human-readable digest of one analysis.
func printSummary(w io.Writer, report *rival.Report, title, path string) {
	p := report.Product

	fmt.Fprintf(w, "\n%s\n", p.ProductName)
	if title != "" && title != p.ProductName {
		fmt.Fprintf(w, "  Page title: %s\n", title)
	}
	fmt.Fprintf(w, "  URL: %s\n", p.URL)

	if len(p.PricingTiers) > 0 {
		fmt.Fprintln(w, "  Pricing:")
		for _, tier := range p.PricingTiers {
			fmt.Fprintf(w, "    %s: %s %s (%s)\n", tier.Name, tier.Price, tier.Currency, tier.BillingCycle)
		}
	} else {
		fmt.Fprintln(w, "  Pricing: none found")
	}

	if len(p.CoreFeatures) > 0 {
		fmt.Fprintln(w, "  Features:")
		for _, feature := range p.CoreFeatures {
			fmt.Fprintf(w, "    - %s\n", feature)
		}
	}

	if p.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", p.Summary)
	}

	fmt.Fprintf(w, "\nReport written to %s (id %s)\n", path, report.ID)
}
