package rival

import "context"

// ScrapeResult holds the content captured from a single page fetch.
// It is produced once per fetch attempt and immutable after creation.
type ScrapeResult struct {
	// RawHTML is the full rendered document source.
	RawHTML string

	// Markdown is the normalized text rendering of the markup, with
	// links and images preserved as inline references.
	Markdown string

	// ScreenshotPath is the path of the full-page diagnostic screenshot,
	// or empty if capture failed. Screenshot failures never fail a fetch.
	ScreenshotPath string
}

// PageFetcher retrieves rendered page content from URLs.
// Implementations use browser automation to handle JavaScript-rendered
// and lazily loaded content.
type PageFetcher interface {
	// FetchPage navigates to the URL, waits for the page to settle,
	// reveals lazily loaded sections, and returns the captured content.
	// The context controls the navigation timeout and cancellation.
	FetchPage(ctx context.Context, url string) (*ScrapeResult, error)

	// Close releases browser resources.
	// Must be called when the PageFetcher is no longer needed.
	Close() error
}
