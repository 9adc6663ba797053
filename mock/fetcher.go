package mock

import (
	"context"

	"github.com/rivalhq/rival"
)

var _ rival.PageFetcher = (*PageFetcher)(nil)

// PageFetcher is a mock implementation of rival.PageFetcher.
type PageFetcher struct {
	FetchPageFn func(ctx context.Context, url string) (*rival.ScrapeResult, error)
	CloseFn     func() error
}

func (f *PageFetcher) FetchPage(ctx context.Context, url string) (*rival.ScrapeResult, error) {
	return f.FetchPageFn(ctx, url)
}

func (f *PageFetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
