package goquery_test

import (
	"testing"

	"github.com/rivalhq/rival"
	"github.com/rivalhq/rival/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure TitleExtractor implements rival.TitleExtractor at compile time.
var _ rival.TitleExtractor = (*goquery.TitleExtractor)(nil)

func TestTitleExtractor_Title(t *testing.T) {
	t.Parallel()

	t.Run("prefers og:title", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<title>Notion – Pricing</title>
			<meta property="og:title" content="Notion Pricing">
		</head><body></body></html>`

		title, err := goquery.NewTitleExtractor().Title(html)

		require.NoError(t, err)
		assert.Equal(t, "Notion Pricing", title)
	})

	t.Run("falls back to document title", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title> Linear Pricing </title></head><body></body></html>`

		title, err := goquery.NewTitleExtractor().Title(html)

		require.NoError(t, err)
		assert.Equal(t, "Linear Pricing", title)
	})

	t.Run("empty when no title present", func(t *testing.T) {
		t.Parallel()

		title, err := goquery.NewTitleExtractor().Title(`<html><body><p>hi</p></body></html>`)

		require.NoError(t, err)
		assert.Empty(t, title)
	})
}
