package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGemini(t *testing.T, serverURL string) *Gemini {
	t.Helper()
	g, err := NewGemini("test-key", "gemini-2.0-flash")
	require.NoError(t, err)
	g.baseURL = serverURL
	return g
}

func TestGemini_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.SystemInstruction)
		assert.Equal(t, "You are a legal assistant.", req.SystemInstruction.Parts[0].Text)
		require.Len(t, req.Contents, 2)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, "model", req.Contents[1].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Tenants have rights."}]}}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 4, "totalTokenCount": 16}
		}`))
	}))
	defer server.Close()

	g := newTestGemini(t, server.URL)
	got, err := g.Complete(context.Background(), &Request{
		System: "You are a legal assistant.",
		Messages: []Message{
			{Role: "user", Content: "What are tenant rights?"},
			{Role: "assistant", Content: "Which jurisdiction?"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Tenants have rights.", got.Content)
	assert.Equal(t, 16, got.Usage.TotalTokens)
}

func TestGemini_Complete_SkipsEmptyMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	}))
	defer server.Close()

	g := newTestGemini(t, server.URL)
	_, err := g.Complete(context.Background(), &Request{
		Messages: []Message{
			{Role: "assistant", Content: ""},
			{Role: "user", Content: "hello"},
		},
	})
	require.NoError(t, err)
}

func TestGemini_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"message": "key invalid"}}`))
	}))
	defer server.Close()

	g := newTestGemini(t, server.URL)
	_, err := g.Complete(context.Background(), &Request{Messages: []Message{{Role: "user", Content: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error: 403")
}

func TestGemini_Stream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":streamGenerateContent")
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))

		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{"You must ", "serve written ", "notice."}
		for _, c := range chunks {
			event := geminiResponse{}
			event.Candidates = []struct {
				Content geminiContent `json:"content"`
			}{{Content: geminiContent{Parts: []geminiPart{{Text: c}}}}}
			data, _ := json.Marshal(event)
			w.Write([]byte("data: " + string(data) + "\n\n"))
		}
	}))
	defer server.Close()

	g := newTestGemini(t, server.URL)
	stream, err := g.Stream(context.Background(), &Request{Messages: []Message{{Role: "user", Content: "eviction?"}}})
	require.NoError(t, err)

	var got strings.Builder
	for f := range stream.Fragments() {
		got.WriteString(f)
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, "You must serve written notice.", got.String())
}

func TestGemini_Stream_RequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	g := newTestGemini(t, server.URL)
	_, err := g.Stream(context.Background(), &Request{Messages: []Message{{Role: "user", Content: "x"}}})
	require.Error(t, err)
}

func TestGemini_RequiresAPIKey(t *testing.T) {
	_, err := NewGemini("", "")
	require.Error(t, err)
}

func TestGemini_Name(t *testing.T) {
	g, err := NewGemini("key", "")
	require.NoError(t, err)
	assert.Equal(t, "gemini:"+defaultGeminiModel, g.Name())
}

func TestMock_StreamPlayback(t *testing.T) {
	m := NewMock("mock")
	m.AddResponse(MockResponse{Fragments: []string{"a", "b", "c"}})

	stream, err := m.Stream(context.Background(), &Request{})
	require.NoError(t, err)

	var parts []string
	for f := range stream.Fragments() {
		parts = append(parts, f)
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, []string{"a", "b", "c"}, parts)
}

func TestMock_StreamError(t *testing.T) {
	boom := errors.New("backend down")
	m := NewMock("mock")
	m.AddResponse(MockResponse{Fragments: []string{"partial"}, StreamError: boom})

	stream, err := m.Stream(context.Background(), &Request{})
	require.NoError(t, err)

	var parts []string
	for f := range stream.Fragments() {
		parts = append(parts, f)
	}
	assert.Equal(t, []string{"partial"}, parts)
	assert.ErrorIs(t, stream.Err(), boom)
}

func TestMock_RecordsCalls(t *testing.T) {
	m := NewMock("mock")
	_, err := m.Complete(context.Background(), &Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.NoError(t, err)

	require.Len(t, m.Calls(), 1)
	assert.Equal(t, "hi", m.LastCall().Messages[0].Content)

	m.Reset()
	assert.Nil(t, m.LastCall())
}
