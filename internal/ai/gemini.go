package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Compile-time interface check.
var _ Provider = (*Gemini)(nil)

const (
	defaultGeminiModel = "gemini-2.0-flash"
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
)

// Gemini implements Provider against the Google Generative Language REST API.
type Gemini struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string // configurable for testing; defaults to geminiBaseURL
}

// NewGemini creates a Gemini provider. model may be empty (defaults to
// gemini-2.0-flash).
func NewGemini(apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required for Gemini provider")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
		baseURL: geminiBaseURL,
	}, nil
}

func (g *Gemini) Name() string {
	return "gemini:" + g.model
}

// Complete runs one synchronous completion.
func (g *Gemini) Complete(ctx context.Context, req *Request) (*Completion, error) {
	body, model, err := g.buildRequest(req)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, model)
	respBody, err := g.post(ctx, url, body, "application/json")
	if err != nil {
		return nil, err
	}
	defer respBody.Close()

	var resp geminiResponse
	if err := json.NewDecoder(respBody).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &Completion{
		Content: resp.text(),
		Usage:   resp.usage(),
	}, nil
}

// Stream starts a streaming completion over SSE. The returned stream is
// fed by a background goroutine until the server closes the connection or
// ctx is cancelled.
func (g *Gemini) Stream(ctx context.Context, req *Request) (*Stream, error) {
	body, model, err := g.buildRequest(req)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", g.baseURL, model)
	respBody, err := g.post(ctx, url, body, "text/event-stream")
	if err != nil {
		return nil, err
	}

	stream := newStream()
	go func() {
		defer respBody.Close()
		stream.finish(g.forwardSSE(ctx, respBody, stream))
	}()
	return stream, nil
}

// forwardSSE parses the SSE response and pushes text deltas onto the stream.
func (g *Gemini) forwardSSE(ctx context.Context, body io.Reader, stream *Stream) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			log.Printf("gemini: failed to parse stream event: %v", err)
			continue
		}

		if text := chunk.text(); text != "" {
			if !stream.send(ctx, text) {
				return ctx.Err()
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stream: %w", err)
	}
	return nil
}

// buildRequest converts a Request into the Gemini wire format.
func (g *Gemini) buildRequest(req *Request) ([]byte, string, error) {
	model := g.model
	if req.Model != "" {
		model = req.Model
	}

	wire := geminiRequest{}
	if req.System != "" {
		wire.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	for _, msg := range req.Messages {
		// The API rejects empty parts.
		if msg.Content == "" {
			continue
		}
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		wire.Contents = append(wire.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		wire.GenerationConfig = &geminiGenConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		}
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return body, model, nil
}

func (g *Gemini) post(ctx context.Context, url string, body []byte, accept string) (io.ReadCloser, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("API error: %d - %s", resp.StatusCode, string(bodyBytes))
	}
	return resp.Body, nil
}

// Gemini wire types

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"system_instruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// text joins the text parts of the first candidate.
func (r *geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

func (r *geminiResponse) usage() Usage {
	if r.UsageMetadata == nil {
		return Usage{}
	}
	return Usage{
		PromptTokens:     r.UsageMetadata.PromptTokenCount,
		CompletionTokens: r.UsageMetadata.CandidatesTokenCount,
		TotalTokens:      r.UsageMetadata.TotalTokenCount,
	}
}
