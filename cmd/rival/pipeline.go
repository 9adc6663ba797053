package main

import (
	"fmt"
	"time"

	"github.com/rivalhq/rival"
	"github.com/rivalhq/rival/goquery"
	"github.com/rivalhq/rival/htmltomarkdown"
	"github.com/rivalhq/rival/openai"
	"github.com/rivalhq/rival/pipeline"
	"github.com/rivalhq/rival/rod"
	rivalslog "github.com/rivalhq/rival/slog"
	"github.com/rivalhq/rival/tiktoken"
	"golang.org/x/time/rate"
)

// newPipeline wires the fetch and extraction services into a pipeline.
// The returned fetcher owns the browser process; the caller must close it.
func newPipeline(deps *Dependencies, timeout time.Duration, headless bool) (*pipeline.Pipeline, rival.PageFetcher, error) {
	if deps.Config.APIKey == "" {
		return nil, nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	counter, err := tiktoken.NewTokenCounter(deps.Config.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load token encoding: %w", err)
	}

	extractor := openai.NewExtractor(counter, openai.Config{
		Model:   deps.Config.Model,
		APIKey:  deps.Config.APIKey,
		BaseURL: deps.Config.BaseURL,
		Logger:  deps.Logger,
	})

	fetchOpts := []rod.Option{
		rod.WithNavigationTimeout(timeout),
		rod.WithHeadless(headless),
		rod.WithLogsDir(deps.Config.LogsDir),
		rod.WithLogger(deps.Logger),
	}
	if deps.Config.RatePerSecond > 0 {
		fetchOpts = append(fetchOpts, rod.WithRateLimiter(
			rate.NewLimiter(rate.Limit(deps.Config.RatePerSecond), 1)))
	}
	fetcher := rod.NewFetcher(htmltomarkdown.NewConverter(), fetchOpts...)

	p := &pipeline.Pipeline{
		Fetcher:   rod.NewLoggingFetcher(fetcher, deps.Logger),
		Extractor: rivalslog.NewLoggingExtractor(extractor, deps.Logger),
		Titles:    goquery.NewTitleExtractor(),
	}
	return p, fetcher, nil
}
