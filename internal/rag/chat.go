package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sangwajesly/legalhub-backend-sub000/internal/ai"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/sessions"
)

const defaultHistoryLimit = 10

// ChatRequest describes one conversation turn. Exactly one of SessionID
// and History anchors the conversation; when both are present the inline
// History wins and the session is ignored for context (but still receives
// the persisted messages when valid).
type ChatRequest struct {
	SessionID string
	UserID    string
	Message   string
	History   []ai.Message

	// DisableRAG skips retrieval and answers from conversation context only.
	DisableRAG bool
	TopK       int
}

// Conversation ties retrieval to a completion provider and an optional
// persisted history store.
type Conversation struct {
	service      *Service
	provider     ai.Provider
	store        *sessions.Store // nil disables persistence
	historyLimit int
}

// NewConversation creates a conversation orchestrator. store may be nil
// for a stateless deployment.
func NewConversation(service *Service, provider ai.Provider, store *sessions.Store) *Conversation {
	return &Conversation{
		service:      service,
		provider:     provider,
		store:        store,
		historyLimit: defaultHistoryLimit,
	}
}

// turn is a validated, prompt-composed request ready for the provider.
type turn struct {
	req       *ai.Request
	sessionID string // empty when persistence should be skipped
}

// GenerateResponse runs one synchronous conversation turn. Validation
// errors (ErrInvalidRequest, ErrNotFound, ErrUnauthorized) and retrieval
// errors return before any completion call; a completion failure is
// absorbed into FallbackReply with a nil error.
func (c *Conversation) GenerateResponse(ctx context.Context, req *ChatRequest) (string, error) {
	t, err := c.prepare(ctx, req)
	if err != nil {
		return "", err
	}

	completion, err := c.provider.Complete(ctx, t.req)
	if err != nil {
		log.Printf("rag: completion call failed: %v", err)
		return FallbackReply, nil
	}

	c.persist(t.sessionID, "assistant", completion.Content)
	return completion.Content, nil
}

// GenerateResponseStream runs one streaming turn. Fragments are forwarded
// in order on the returned channel, which closes when the turn is done. A
// failed stream emits one empty terminal fragment instead of an error;
// whatever text accumulated is still persisted.
func (c *Conversation) GenerateResponseStream(ctx context.Context, req *ChatRequest) (<-chan string, error) {
	t, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)

		var full strings.Builder
		stream, err := c.provider.Stream(ctx, t.req)
		if err != nil {
			log.Printf("rag: streaming completion call failed: %v", err)
			out <- ""
			c.persist(t.sessionID, "assistant", "")
			return
		}

		for fragment := range stream.Fragments() {
			full.WriteString(fragment)
			select {
			case out <- fragment:
			case <-ctx.Done():
				c.persist(t.sessionID, "assistant", full.String())
				return
			}
		}
		if err := stream.Err(); err != nil {
			log.Printf("rag: stream failed mid-response: %v", err)
			out <- ""
		}

		c.persist(t.sessionID, "assistant", full.String())
	}()
	return out, nil
}

// prepare validates the request, persists the user message, runs retrieval
// and composes the provider request.
func (c *Conversation) prepare(ctx context.Context, req *ChatRequest) (*turn, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidRequest)
	}
	if req.SessionID == "" && req.History == nil {
		return nil, fmt.Errorf("%w: a session id or inline history is required", ErrInvalidRequest)
	}

	sessionID, err := c.resolveSession(req)
	if err != nil {
		return nil, err
	}

	history := c.buildHistory(sessionID, req)

	// User message goes to the store before the completion call so a
	// provider failure cannot lose it.
	c.persist(sessionID, "user", req.Message)

	content := req.Message
	if !req.DisableRAG {
		docs, err := c.service.RetrieveDocuments(ctx, req.Message, req.TopK, 0)
		if err != nil {
			return nil, err
		}
		if len(docs) > 0 {
			content = c.service.AugmentPrompt(req.Message, docs, 0)
		}
	}

	// history may alias the caller's slice; never append into its backing
	// array.
	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, ai.Message{Role: "user", Content: content})
	return &turn{
		req:       &ai.Request{System: systemPrompt, Messages: messages},
		sessionID: sessionID,
	}, nil
}

// resolveSession validates session existence and ownership. With inline
// history present a bad session degrades to stateless mode instead of
// failing; without it the validation error propagates.
func (c *Conversation) resolveSession(req *ChatRequest) (string, error) {
	if req.SessionID == "" || c.store == nil {
		return "", nil
	}

	session, err := c.store.GetSession(req.SessionID)
	if err != nil {
		if req.History != nil {
			log.Printf("rag: session %s unusable, degrading to stateless: %v", req.SessionID, err)
			return "", nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, req.SessionID)
	}
	if session.UserID != req.UserID {
		if req.History != nil {
			log.Printf("rag: session %s owned by another user, degrading to stateless", req.SessionID)
			return "", nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnauthorized, req.SessionID)
	}
	return session.ID, nil
}

// buildHistory returns the bounded conversation context: inline history
// when supplied, otherwise the most recent persisted messages. Never both.
func (c *Conversation) buildHistory(sessionID string, req *ChatRequest) []ai.Message {
	if req.History != nil {
		history := req.History
		if len(history) > c.historyLimit {
			history = history[len(history)-c.historyLimit:]
		}
		return history
	}

	if sessionID == "" {
		return nil
	}
	stored, err := c.store.GetMessages(sessionID, c.historyLimit)
	if err != nil {
		// History is context, not correctness; proceed without it.
		log.Printf("rag: failed to load history for session %s: %v", sessionID, err)
		return nil
	}

	history := make([]ai.Message, 0, len(stored))
	for _, m := range stored {
		if m.Content == "" {
			continue
		}
		history = append(history, ai.Message{Role: m.Role, Content: m.Content})
	}
	return history
}

// persist writes a message to the session store, best-effort.
func (c *Conversation) persist(sessionID, role, content string) {
	if c.store == nil || sessionID == "" {
		return
	}
	if _, err := c.store.AddMessage(sessionID, role, content, nil); err != nil {
		log.Printf("rag: failed to persist %s message for session %s: %v", role, sessionID, err)
	}
}
