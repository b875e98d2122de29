// Package extract turns raw document bytes into indexable text.
package extract

import "context"

// Extractor pulls text and document-level metadata out of raw bytes.
type Extractor interface {
	// Extract returns the document text and any metadata discovered in the
	// payload. An error means the payload could not be read at all.
	Extract(ctx context.Context, data []byte) (string, map[string]string, error)
}

// Plain treats the payload as UTF-8 text.
type Plain struct{}

// NewPlain creates a passthrough extractor.
func NewPlain() *Plain { return &Plain{} }

func (p *Plain) Extract(ctx context.Context, data []byte) (string, map[string]string, error) {
	return string(data), nil, nil
}
