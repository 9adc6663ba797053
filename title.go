package rival

// TitleExtractor extracts the page title from raw HTML.
type TitleExtractor interface {
	Title(html string) (string, error)
}
