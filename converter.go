package rival

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown suitable for
	// token-budgeted language model consumption. Link and image
	// references are preserved inline.
	Convert(html string) (string, error)
}
