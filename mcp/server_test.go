package mcp_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rivalhq/rival"
	"github.com/rivalhq/rival/mcp"
	"github.com/rivalhq/rival/mock"
	"github.com/rivalhq/rival/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(fetcher rival.PageFetcher, extractor rival.ProductExtractor) *mcp.Server {
	return mcp.NewServer(&pipeline.Pipeline{Fetcher: fetcher, Extractor: extractor}, "test")
}

func TestServer_Analyze(t *testing.T) {
	t.Parallel()

	t.Run("returns the extracted product", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, url string) (*rival.ScrapeResult, error) {
				return &rival.ScrapeResult{Markdown: "# Notion"}, nil
			},
		}
		extractor := &mock.ProductExtractor{
			ExtractFn: func(ctx context.Context, markdown, sourceURL string) (*rival.Product, error) {
				return &rival.Product{ProductName: "Notion", URL: sourceURL}, nil
			},
		}

		s := newTestServer(fetcher, extractor)
		product, err := s.Analyze(context.Background(), "https://notion.so/pricing")

		require.NoError(t, err)
		assert.Equal(t, "Notion", product.ProductName)
	})

	t.Run("rejects an empty URL", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(&mock.PageFetcher{}, &mock.ProductExtractor{})
		_, err := s.Analyze(context.Background(), "  ")

		require.Error(t, err)
		assert.Equal(t, rival.EINVALID, rival.ErrorCode(err))
	})

	t.Run("surfaces pipeline errors naming the stage", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, url string) (*rival.ScrapeResult, error) {
				return nil, errors.New("connection refused")
			},
		}

		s := newTestServer(fetcher, &mock.ProductExtractor{})
		_, err := s.Analyze(context.Background(), "https://down.example.com")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to scrape https://down.example.com")
	})

	t.Run("coalesces concurrent calls for the same URL", func(t *testing.T) {
		t.Parallel()

		var fetches atomic.Int64
		started := make(chan struct{})
		release := make(chan struct{})
		fetcher := &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, url string) (*rival.ScrapeResult, error) {
				if fetches.Add(1) == 1 {
					close(started)
				}
				<-release
				return &rival.ScrapeResult{Markdown: "# Linear"}, nil
			},
		}
		extractor := &mock.ProductExtractor{
			ExtractFn: func(ctx context.Context, markdown, sourceURL string) (*rival.Product, error) {
				return &rival.Product{ProductName: "Linear", URL: sourceURL}, nil
			},
		}

		s := newTestServer(fetcher, extractor)

		const callers = 5
		var wg sync.WaitGroup
		results := make([]*rival.Product, callers)
		errs := make([]error, callers)
		call := func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Analyze(context.Background(), "https://linear.app/pricing")
		}

		wg.Add(1)
		go call(0)
		<-started

		// The first run is now blocked in the fetcher; the rest join it.
		for i := 1; i < callers; i++ {
			wg.Add(1)
			go call(i)
		}
		time.Sleep(100 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int64(1), fetches.Load(), "concurrent callers should share one run")
		for i := range callers {
			require.NoError(t, errs[i])
			require.NotNil(t, results[i])
			assert.Equal(t, "Linear", results[i].ProductName)
		}
	})

	t.Run("distinct URLs run independently", func(t *testing.T) {
		t.Parallel()

		var fetches atomic.Int64
		fetcher := &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, url string) (*rival.ScrapeResult, error) {
				fetches.Add(1)
				return &rival.ScrapeResult{Markdown: "# P"}, nil
			},
		}
		extractor := &mock.ProductExtractor{
			ExtractFn: func(ctx context.Context, markdown, sourceURL string) (*rival.Product, error) {
				return &rival.Product{ProductName: "P", URL: sourceURL}, nil
			},
		}

		s := newTestServer(fetcher, extractor)
		_, err := s.Analyze(context.Background(), "https://a.example.com")
		require.NoError(t, err)
		_, err = s.Analyze(context.Background(), "https://b.example.com")
		require.NoError(t, err)

		assert.Equal(t, int64(2), fetches.Load())
	})
}
