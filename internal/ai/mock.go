package ai

import (
	"context"
	"sync"
)

// Mock is a test provider that records calls and returns configurable
// responses.
type Mock struct {
	name      string
	responses []MockResponse
	calls     []*Request
	mu        sync.Mutex
	respIndex int
}

// MockResponse is a pre-configured response for the mock provider. For
// streaming calls Fragments is used when set, otherwise Content is sent
// as a single fragment.
type MockResponse struct {
	Content   string
	Fragments []string
	Usage     Usage
	Error     error
	// StreamError makes the stream fail after its fragments are delivered.
	StreamError error
}

// NewMock creates a mock provider for testing.
func NewMock(name string) *Mock {
	return &Mock{name: name}
}

func (m *Mock) Name() string {
	return m.name
}

// Complete records the call and returns the next configured response.
func (m *Mock) Complete(ctx context.Context, req *Request) (*Completion, error) {
	resp := m.next(req)
	if resp.Error != nil {
		return nil, resp.Error
	}
	return &Completion{Content: resp.Content, Usage: resp.Usage}, nil
}

// Stream records the call and plays back the next configured response as
// fragments.
func (m *Mock) Stream(ctx context.Context, req *Request) (*Stream, error) {
	resp := m.next(req)
	if resp.Error != nil {
		return nil, resp.Error
	}

	fragments := resp.Fragments
	if fragments == nil && resp.Content != "" {
		fragments = []string{resp.Content}
	}

	stream := newStream()
	go func() {
		for _, f := range fragments {
			if !stream.send(ctx, f) {
				stream.finish(ctx.Err())
				return
			}
		}
		stream.finish(resp.StreamError)
	}()
	return stream, nil
}

func (m *Mock) next(req *Request) MockResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if m.respIndex < len(m.responses) {
		resp := m.responses[m.respIndex]
		m.respIndex++
		return resp
	}

	// Default response when no responses configured
	return MockResponse{
		Content: "Mock response",
		Usage:   Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

// AddResponse queues a response.
func (m *Mock) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// AddError queues a call-level failure.
func (m *Mock) AddError(err error) {
	m.AddResponse(MockResponse{Error: err})
}

// Calls returns all recorded requests.
func (m *Mock) Calls() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Request{}, m.calls...)
}

// LastCall returns the most recent request, or nil.
func (m *Mock) LastCall() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

// Reset clears recorded calls and queued responses.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.responses = nil
	m.respIndex = 0
}
