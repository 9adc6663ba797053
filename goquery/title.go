// Package goquery provides HTML metadata extraction using CSS selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rivalhq/rival"
)

// Ensure TitleExtractor implements rival.TitleExtractor at compile time.
var _ rival.TitleExtractor = (*TitleExtractor)(nil)

// TitleExtractor extracts a page title from raw HTML, preferring the
// og:title meta tag over the document title.
type TitleExtractor struct{}

// NewTitleExtractor creates a new TitleExtractor.
func NewTitleExtractor() *TitleExtractor {
	return &TitleExtractor{}
}

// Title returns the page title, or an empty string if none is present.
func (e *TitleExtractor) Title(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := strings.TrimSpace(og); title != "" {
			return title, nil
		}
	}

	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}
