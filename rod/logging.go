package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/rivalhq/rival"
)

// Ensure LoggingFetcher implements rival.PageFetcher.
var _ rival.PageFetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a PageFetcher with fetch logging.
type LoggingFetcher struct {
	next   rival.PageFetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next rival.PageFetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// FetchPage logs the URL and result sizes and delegates to the wrapped fetcher.
func (f *LoggingFetcher) FetchPage(ctx context.Context, url string) (result *rival.ScrapeResult, err error) {
	defer func(begin time.Time) {
		var htmlBytes, markdownBytes int
		if result != nil {
			htmlBytes = len(result.RawHTML)
			markdownBytes = len(result.Markdown)
		}
		f.logger.Info("fetch",
			"url", url,
			"html_bytes", htmlBytes,
			"markdown_bytes", markdownBytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchPage(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
