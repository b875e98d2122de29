// Package ai abstracts chat-completion backends behind a small provider
// interface with synchronous and streaming paths.
package ai

import (
	"context"
	"sync"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Request describes one completion call.
type Request struct {
	System      string
	Messages    []Message
	Model       string // empty uses the provider default
	MaxTokens   int
	Temperature float64
}

// Usage holds token accounting for a completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion is the full result of a synchronous call.
type Completion struct {
	Content string
	Usage   Usage
}

// Provider generates completions.
type Provider interface {
	Name() string

	// Complete runs one synchronous completion.
	Complete(ctx context.Context, req *Request) (*Completion, error)

	// Stream starts a streaming completion. The returned stream's channel
	// is closed when the completion finishes or fails; check Err after.
	Stream(ctx context.Context, req *Request) (*Stream, error)
}

// Stream delivers completion text incrementally. Fragments arrive on a
// bounded channel; a slow consumer backpressures the producer rather than
// growing a queue.
type Stream struct {
	fragments chan string

	mu  sync.Mutex
	err error
}

const streamBuffer = 16

func newStream() *Stream {
	return &Stream{fragments: make(chan string, streamBuffer)}
}

// Fragments returns the channel of text deltas. It is closed when the
// stream ends, successfully or not.
func (s *Stream) Fragments() <-chan string {
	return s.fragments
}

// Err reports why the stream ended. It is reliable only after Fragments
// has been drained to close.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// send delivers one fragment, honoring context cancellation. Returns false
// when the consumer is gone.
func (s *Stream) send(ctx context.Context, text string) bool {
	select {
	case s.fragments <- text:
		return true
	case <-ctx.Done():
		return false
	}
}

// finish records the terminal error (nil on success) and closes the channel.
func (s *Stream) finish(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.fragments)
}
