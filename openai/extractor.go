// Package openai extracts structured product records from page content
// using an OpenAI-compatible chat completion endpoint.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rivalhq/rival"
)

// Ensure Extractor implements rival.ProductExtractor at compile time.
var _ rival.ProductExtractor = (*Extractor)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

// systemPrompt enforces the extraction rules: exact naming, no invented
// pricing, short feature phrases, and a grounded Markdown summary.
const systemPrompt = `You are a professional SaaS competitive analyst. Extract precise product information from the supplied web page content.

Rules:

1. product_name: the exact name of the product, with no added descriptive text. Prefer the page title when it names the product.

2. pricing_tiers: look carefully for pricing information (pricing tables, plan comparisons). If no explicit pricing is found, return an empty list. Never invent prices. When pricing is found, record for each tier:
   - name: the tier name (e.g. "Free", "Pro", "Enterprise")
   - price: the price as a string (e.g. "0", "29.99", "Custom")
   - currency: the currency code (e.g. "USD", "EUR", "CNY")
   - billing_cycle: one of "monthly", "yearly", "one-time", "custom"

3. core_features: the product's main capabilities as short phrases (one to three words each). Prefer feature lists stated on the page over inferred ones; infer from descriptions only when no explicit list exists.

4. summary: Markdown text containing a product overview (one or two paragraphs), primary use cases, competitive advantages, and a brief SWOT analysis with Strengths, Weaknesses, Opportunities, and Threats. Stay objective and grounded in the page content.

5. url: use the provided source URL verbatim. Do not modify or infer it.

Never fabricate information that is not present on the page. Use empty values for anything unavailable.`

// productSchema structurally binds model output to the product record
// shape. Strict mode requires every property listed as required and
// additionalProperties disabled at each level.
var productSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"product_name", "url", "pricing_tiers", "core_features", "summary"},
	"properties": map[string]any{
		"product_name": map[string]any{
			"type":        "string",
			"description": "Exact product name with no added descriptors.",
		},
		"url": map[string]any{
			"type":        "string",
			"description": "The source URL, verbatim.",
		},
		"pricing_tiers": map[string]any{
			"type":        "array",
			"description": "Pricing tiers found on the page. Empty when no pricing is stated.",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"name", "price", "currency", "billing_cycle"},
				"properties": map[string]any{
					"name":     map[string]any{"type": "string"},
					"price":    map[string]any{"type": "string"},
					"currency": map[string]any{"type": "string"},
					"billing_cycle": map[string]any{
						"type": "string",
						"enum": []string{"monthly", "yearly", "one-time", "custom"},
					},
				},
			},
		},
		"core_features": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"summary": map[string]any{
			"type": "string",
		},
	},
}

// Config holds construction parameters for an Extractor.
type Config struct {
	// Model is the chat model identifier. Defaults to DefaultModel.
	Model string

	// APIKey authenticates against the endpoint.
	APIKey string

	// BaseURL overrides the default API endpoint. Optional.
	BaseURL string

	// MaxTokens is the input token ceiling. Defaults to
	// rival.DefaultMaxTokens.
	MaxTokens int

	// Logger is used for truncation observability. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Extractor implements rival.ProductExtractor against an OpenAI-compatible
// endpoint. It is stateless across calls except for the bound client and
// token counter, both initialized once at construction.
type Extractor struct {
	client  openai.Client
	counter rival.TokenCounter
	trunc   *rival.Truncator
	model   string
	logger  *slog.Logger
}

// NewExtractor creates an Extractor bound to a model client and token
// counter.
func NewExtractor(counter rival.TokenCounter, cfg Config) *Extractor {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Extractor{
		client:  openai.NewClient(opts...),
		counter: counter,
		trunc:   &rival.Truncator{Counter: counter, MaxTokens: cfg.MaxTokens},
		model:   model,
		logger:  logger,
	}
}

// Extract analyzes Markdown content scraped from sourceURL and returns
// the structured product record. Input beyond the token ceiling is
// truncated head-and-tail before the model call.
func (e *Extractor) Extract(ctx context.Context, markdown, sourceURL string) (*rival.Product, error) {
	if strings.TrimSpace(markdown) == "" {
		return nil, rival.Errorf(rival.EINVALID, "empty content for %s", sourceURL)
	}

	content, err := e.trunc.Truncate(ctx, markdown)
	if err != nil {
		return nil, fmt.Errorf("counting tokens: %w", err)
	}
	if len(content) < len(markdown) {
		tokens, countErr := e.counter.CountTokens(ctx, content)
		if countErr == nil {
			e.logger.Info("content truncated",
				"url", sourceURL,
				"bytes_before", len(markdown),
				"bytes_after", len(content),
				"tokens_after", tokens,
			)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildUserPrompt(content, sourceURL)),
		},
		// Factual extraction, not generation.
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "competitor_product",
					Description: openai.String("Structured competitor product record."),
					Schema:      productSchema,
					Strict:      openai.Bool(true),
				},
			},
		},
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, transportError(sourceURL, err)
	}
	if len(resp.Choices) == 0 {
		return nil, rival.Errorf(rival.EUNAVAILABLE, "model returned no choices for %s", sourceURL)
	}

	product, err := DecodeProduct(resp.Choices[0].Message.Content, sourceURL)
	if err != nil {
		return nil, err
	}

	e.logger.Info("product extracted",
		"url", sourceURL,
		"product", product.ProductName,
		"pricing_tiers", len(product.PricingTiers),
		"features", len(product.CoreFeatures),
	)
	return product, nil
}

// productPayload is the wire shape the model is bound to. The timestamp
// is deliberately absent; the caller stamps it.
type productPayload struct {
	ProductName  string              `json:"product_name"`
	URL          string              `json:"url"`
	PricingTiers []rival.PricingTier `json:"pricing_tiers"`
	CoreFeatures []string            `json:"core_features"`
	Summary      string              `json:"summary"`
}

// DecodeProduct strictly decodes model output into a validated Product.
// Unknown fields and shape mismatches are rejected, not coerced. The
// product URL is always overwritten with sourceURL; models occasionally
// echo a wrong or relative URL.
func DecodeProduct(raw, sourceURL string) (*rival.Product, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var payload productPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, rival.Errorf(rival.EINVALID, "model output failed schema validation: %v", err)
	}

	for i := range payload.PricingTiers {
		if payload.PricingTiers[i].Currency == "" {
			payload.PricingTiers[i].Currency = "USD"
		}
	}

	product := &rival.Product{
		ProductName:  payload.ProductName,
		URL:          sourceURL,
		PricingTiers: payload.PricingTiers,
		CoreFeatures: payload.CoreFeatures,
		Summary:      payload.Summary,
		LastUpdated:  time.Now().UTC(),
	}
	if err := product.Validate(); err != nil {
		return nil, rival.Errorf(rival.EINVALID, "model output failed schema validation: %s", rival.ErrorMessage(err))
	}
	return product, nil
}

// BuildUserPrompt builds the user message containing the source URL and
// page content.
func BuildUserPrompt(content, sourceURL string) string {
	var sb strings.Builder
	sb.WriteString("Extract the competitor product information from the following web page content.\n\n")
	fmt.Fprintf(&sb, "Source URL: %s\n\n", sourceURL)
	sb.WriteString("Page content (Markdown):\n\n")
	sb.WriteString(content)
	return sb.String()
}

// transportError classifies a failed model call. API-level failures
// (auth, rate limits, upstream errors) carry provider markers that
// distinguish them from plain connectivity problems, but both surface as
// EUNAVAILABLE.
func transportError(sourceURL string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return rival.Errorf(rival.EUNAVAILABLE, "OpenAI API error for %s: %v", sourceURL, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "api") || strings.Contains(msg, "openai") || strings.Contains(msg, "rate limit") {
		return rival.Errorf(rival.EUNAVAILABLE, "OpenAI API error for %s: %v", sourceURL, err)
	}
	return rival.Errorf(rival.EUNAVAILABLE, "model call failed for %s: %v", sourceURL, err)
}
