// Package rival provides a competitor product analysis pipeline.
// It fetches a rendered product or pricing page with a headless browser,
// converts the markup to Markdown, and extracts a structured product
// record (name, pricing tiers, features, summary) with a language model.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, openai/, sqlite/).
package rival
