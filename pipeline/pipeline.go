// Package pipeline sequences the two stages of one competitor analysis
// run: fetch rendered page content, then extract a structured product
// record. The stages are joined by a short-circuiting continuation gate;
// a fetch failure terminates the run without invoking extraction.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rivalhq/rival"
)

// Status tags the lifecycle of an analysis run.
type Status string

// Analysis lifecycle states.
const (
	StatusInProgress Status = "in_progress"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Analysis is the state threaded through one run. It is owned by Run for
// the duration of the run and discarded after.
//
// After the fetch stage exactly one of {Markdown set, Err set} holds;
// after a completed run exactly one of {Product set, Err set} holds.
type Analysis struct {
	// URL is the immutable input.
	URL string

	// Markdown is the normalized page text, set by the fetch stage on
	// success.
	Markdown string

	// Title is the page title, set by the fetch stage when a title
	// extractor is configured and the page declares one.
	Title string

	// Product is the extracted record, set by the extract stage on
	// success.
	Product *rival.Product

	// Err terminates the run when set by either stage.
	Err error

	// Status is the run lifecycle tag.
	Status Status
}

// fail marks the analysis failed. The failing stage sets exactly one of
// its success field or Err, never both.
func (a *Analysis) fail(err error) {
	a.Err = err
	a.Status = StatusFailed
}

// Pipeline runs analyses against shared long-lived services. The fetcher
// and extractor are process-wide singletons injected at construction;
// Pipeline owns no cross-run state.
type Pipeline struct {
	Fetcher   rival.PageFetcher
	Extractor rival.ProductExtractor

	// Titles derives the page title from captured markup. Optional;
	// title extraction failures never fail a run.
	Titles rival.TitleExtractor
}

// Run executes one analysis: fetch, continuation gate, extract. It never
// retries; the burden of retrying a failed run belongs to the caller.
func (p *Pipeline) Run(ctx context.Context, url string) *Analysis {
	a := &Analysis{URL: url, Status: StatusInProgress}

	p.fetch(ctx, a)
	if !ShouldContinue(a) {
		return a
	}
	p.extract(ctx, a)
	return a
}

// ShouldContinue is the continuation gate: a pure decision over the
// state with no side effects. The run proceeds to extraction iff the
// fetch stage recorded no error.
func ShouldContinue(a *Analysis) bool {
	return a.Err == nil
}

func (p *Pipeline) fetch(ctx context.Context, a *Analysis) {
	result, err := p.Fetcher.FetchPage(ctx, a.URL)
	if err != nil {
		a.fail(fmt.Errorf("failed to scrape %s: %w", a.URL, err))
		return
	}
	a.Markdown = result.Markdown

	if p.Titles != nil {
		if title, err := p.Titles.Title(result.RawHTML); err == nil {
			a.Title = title
		}
	}
}

func (p *Pipeline) extract(ctx context.Context, a *Analysis) {
	if a.Markdown == "" {
		a.fail(fmt.Errorf("cannot extract from %s: scraped content is missing", a.URL))
		return
	}

	product, err := p.Extractor.Extract(ctx, a.Markdown, a.URL)
	if err != nil {
		a.fail(fmt.Errorf("failed to extract product information from %s: %w", a.URL, err))
		return
	}
	a.Product = product
	a.Status = StatusSucceeded
}
