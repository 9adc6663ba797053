// Package slog provides logging decorators for rival services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/rivalhq/rival"
)

// Ensure LoggingExtractor implements rival.ProductExtractor.
var _ rival.ProductExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a ProductExtractor with structured logging of
// each model call.
type LoggingExtractor struct {
	next   rival.ProductExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next rival.ProductExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor, logging the outcome.
func (e *LoggingExtractor) Extract(ctx context.Context, markdown, sourceURL string) (*rival.Product, error) {
	begin := time.Now()
	product, err := e.next.Extract(ctx, markdown, sourceURL)
	duration := time.Since(begin)

	if err != nil {
		e.logger.Error("extract",
			"url", sourceURL,
			"input_bytes", len(markdown),
			"duration", duration,
			"err", err,
		)
		return nil, err
	}

	e.logger.Info("extract",
		"url", sourceURL,
		"input_bytes", len(markdown),
		"product", product.ProductName,
		"pricing_tiers", len(product.PricingTiers),
		"features", len(product.CoreFeatures),
		"duration", duration,
	)
	return product, nil
}
