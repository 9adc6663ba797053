package mock

import "github.com/rivalhq/rival"

var _ rival.TitleExtractor = (*TitleExtractor)(nil)

// TitleExtractor is a mock implementation of rival.TitleExtractor.
type TitleExtractor struct {
	TitleFn func(html string) (string, error)
}

func (e *TitleExtractor) Title(html string) (string, error) {
	return e.TitleFn(html)
}
