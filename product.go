package rival

import (
	"context"
	"time"
)

// BillingCycle identifies how often a pricing tier is billed.
type BillingCycle string

// Billing cycles recognized in extracted pricing tiers.
const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
	BillingOneTime BillingCycle = "one-time"
	BillingCustom  BillingCycle = "custom"
)

// Valid reports whether b is one of the recognized billing cycles.
func (b BillingCycle) Valid() bool {
	switch b {
	case BillingMonthly, BillingYearly, BillingOneTime, BillingCustom:
		return true
	}
	return false
}

// PricingTier represents a single pricing plan on a competitor's page.
// Price is free-form because pages routinely list non-numeric values
// such as "Custom" or "Contact us".
type PricingTier struct {
	Name         string       `json:"name"`
	Price        string       `json:"price"`
	Currency     string       `json:"currency"`
	BillingCycle BillingCycle `json:"billing_cycle"`
}

// Validate returns an error if the tier contains invalid fields.
func (t *PricingTier) Validate() error {
	if t.Name == "" {
		return Errorf(EINVALID, "pricing tier name required")
	}
	if t.Price == "" {
		return Errorf(EINVALID, "pricing tier price required")
	}
	if !t.BillingCycle.Valid() {
		return Errorf(EINVALID, "unrecognized billing cycle %q", string(t.BillingCycle))
	}
	return nil
}

// Product represents the structured record extracted from a competitor's
// product or pricing page. It is constructed once per successful
// extraction and immutable thereafter.
//
// PricingTiers is empty when the page lists no pricing; the extractor
// never fabricates tiers. URL is always the caller-supplied source URL,
// never trusted from model output.
type Product struct {
	ProductName  string        `json:"product_name"`
	URL          string        `json:"url"`
	PricingTiers []PricingTier `json:"pricing_tiers,omitempty"`
	CoreFeatures []string      `json:"core_features,omitempty"`
	Summary      string        `json:"summary,omitempty"`
	LastUpdated  time.Time     `json:"last_updated"`
}

// Validate returns an error if the product contains invalid fields.
func (p *Product) Validate() error {
	if p.ProductName == "" {
		return Errorf(EINVALID, "product name required")
	}
	if p.URL == "" {
		return Errorf(EINVALID, "product URL required")
	}
	for i := range p.PricingTiers {
		if err := p.PricingTiers[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ProductExtractor turns normalized page text into a schema-conformant
// Product via a language model.
type ProductExtractor interface {
	// Extract analyzes Markdown content scraped from sourceURL and
	// returns the structured product record. The returned product's URL
	// is always sourceURL regardless of model output.
	// Returns EINVALID if the model output fails schema validation and
	// EUNAVAILABLE if the underlying model call fails.
	Extract(ctx context.Context, markdown, sourceURL string) (*Product, error)
}
