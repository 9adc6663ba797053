package htmltomarkdown_test

import (
	"strings"
	"testing"

	"github.com/rivalhq/rival"
	"github.com/rivalhq/rival/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Converter implements rival.Converter at compile time.
var _ rival.Converter = (*htmltomarkdown.Converter)(nil)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts headings", func(t *testing.T) {
		t.Parallel()

		html := `<h1>Pricing</h1><h2>Plans</h2>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "# Pricing")
		assert.Contains(t, md, "## Plans")
	})

	t.Run("preserves links", func(t *testing.T) {
		t.Parallel()

		html := `<p>See <a href="https://example.com/pricing">pricing</a>.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "[pricing](https://example.com/pricing)")
	})

	t.Run("preserves images", func(t *testing.T) {
		t.Parallel()

		html := `<img src="https://example.com/hero.png" alt="Hero">`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "![Hero](https://example.com/hero.png)")
	})

	t.Run("converts pricing tables", func(t *testing.T) {
		t.Parallel()

		html := `<table>
			<tr><th>Plan</th><th>Price</th></tr>
			<tr><td>Free</td><td>$0</td></tr>
			<tr><td>Pro</td><td>$29</td></tr>
		</table>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "Free")
		assert.Contains(t, md, "$0")
		assert.Contains(t, md, "Pro")
		assert.Contains(t, md, "$29")
	})

	t.Run("strips document container tags", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>x</title></head><body><h1>Test Product</h1></body></html>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.NotContains(t, md, "<html")
		assert.NotContains(t, md, "<head")
		assert.NotContains(t, md, "<body")
		assert.Contains(t, md, "# Test Product")
		assert.LessOrEqual(t, len(md), len(html))
	})

	t.Run("preserves non-ASCII text", func(t *testing.T) {
		t.Parallel()

		html := `<p>定价方案</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "定价方案")
	})

	t.Run("does not wrap long lines", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("enterprise-grade security and compliance ", 20)
		html := "<p>" + long + "</p>"

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "enterprise-grade security and compliance enterprise-grade")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		_, err := conv.Convert("   ")

		require.Error(t, err)
		assert.Equal(t, rival.EINVALID, rival.ErrorCode(err))
	})
}
