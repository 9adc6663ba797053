package mock

import "github.com/rivalhq/rival"

var _ rival.Converter = (*Converter)(nil)

// Converter is a mock implementation of rival.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
