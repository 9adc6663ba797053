package mock

import (
	"context"

	"github.com/rivalhq/rival"
)

var _ rival.ProductExtractor = (*ProductExtractor)(nil)

// ProductExtractor is a mock implementation of rival.ProductExtractor.
type ProductExtractor struct {
	ExtractFn func(ctx context.Context, markdown, sourceURL string) (*rival.Product, error)
}

func (e *ProductExtractor) Extract(ctx context.Context, markdown, sourceURL string) (*rival.Product, error) {
	return e.ExtractFn(ctx, markdown, sourceURL)
}
