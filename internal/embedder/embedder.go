package embedder

import (
	"context"
	"fmt"
	"sync"
)

// Embedder converts text to vectors.
type Embedder interface {
	// Embed converts texts to vectors (batched for efficiency). The result
	// holds one vector per input text, in order. An empty input text maps
	// to a nil vector rather than being dropped.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimensionality.
	Dimensions() int

	// Name identifies the embedder.
	Name() string
}

// Lazy defers construction of a backend until the first call. Callers that
// never embed never pay the backend's startup cost, and construction errors
// surface from Embed instead of at wiring time.
type Lazy struct {
	build func() (Embedder, error)
	name  string

	once    sync.Once
	backend Embedder
	initErr error
}

// NewLazy wraps a backend constructor. name is reported by Name until the
// backend exists.
func NewLazy(name string, build func() (Embedder, error)) *Lazy {
	return &Lazy{build: build, name: name}
}

func (l *Lazy) init() {
	l.once.Do(func() {
		l.backend, l.initErr = l.build()
	})
}

func (l *Lazy) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	l.init()
	if l.initErr != nil {
		return nil, fmt.Errorf("embedder %s: init: %w", l.name, l.initErr)
	}
	return l.backend.Embed(ctx, texts)
}

func (l *Lazy) Dimensions() int {
	l.init()
	if l.initErr != nil {
		return 0
	}
	return l.backend.Dimensions()
}

func (l *Lazy) Name() string {
	if l.backend != nil {
		return l.backend.Name()
	}
	return l.name
}
