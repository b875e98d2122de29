package extract

import (
	"context"
	"testing"
)

func TestPlain_Extract(t *testing.T) {
	p := NewPlain()
	text, meta, err := p.Extract(context.Background(), []byte("tenancy agreement clause 4"))
	if err != nil {
		t.Fatal(err)
	}
	if text != "tenancy agreement clause 4" {
		t.Errorf("unexpected text: %q", text)
	}
	if meta != nil {
		t.Errorf("plain extractor should not invent metadata, got %v", meta)
	}
}

func TestPlain_ExtractEmpty(t *testing.T) {
	p := NewPlain()
	text, _, err := p.Extract(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}
