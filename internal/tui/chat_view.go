package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
)

// ChatBubble represents a single chat message
type ChatBubble struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// ChatViewModel manages the chat message viewport
type ChatViewModel struct {
	Messages      []ChatBubble
	Viewport      viewport.Model
	Width         int
	Height        int
	Streaming     bool
	StreamBuf     strings.Builder
	Styles        Styles
	AssistantName string
	UserName      string
}

// NewChatViewModel creates a new chat view
func NewChatViewModel(styles Styles, assistantName, userName string) ChatViewModel {
	vp := viewport.New(80, 20)
	vp.SetContent("")
	if assistantName == "" {
		assistantName = "Assistant"
	}
	if userName == "" {
		userName = "You"
	}
	return ChatViewModel{
		Viewport:      vp,
		Styles:        styles,
		AssistantName: assistantName,
		UserName:      userName,
	}
}

// SetSize updates the viewport dimensions
func (c *ChatViewModel) SetSize(width, height int) {
	c.Width = width
	c.Height = height
	c.Viewport.Width = width
	c.Viewport.Height = height
	c.refreshContent()
}

// AddMessage adds a complete message to the chat
func (c *ChatViewModel) AddMessage(role, content string) {
	c.Messages = append(c.Messages, ChatBubble{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	c.refreshContent()
	c.Viewport.GotoBottom()
}

// StartStreaming begins a streaming response
func (c *ChatViewModel) StartStreaming() {
	c.Streaming = true
	c.StreamBuf.Reset()
	c.refreshContent()
	c.Viewport.GotoBottom()
}

// AppendDelta appends streamed text to the current response
func (c *ChatViewModel) AppendDelta(delta string) {
	c.StreamBuf.WriteString(delta)
	c.refreshContent()
	c.Viewport.GotoBottom()
}

// EndStreaming finalizes the streaming response
func (c *ChatViewModel) EndStreaming() {
	content := c.StreamBuf.String()
	c.Streaming = false
	c.StreamBuf.Reset()
	if content != "" {
		c.Messages = append(c.Messages, ChatBubble{
			Role:      "assistant",
			Content:   content,
			Timestamp: time.Now(),
		})
	}
	c.refreshContent()
	c.Viewport.GotoBottom()
}

// refreshContent rebuilds the viewport content from messages
func (c *ChatViewModel) refreshContent() {
	var b strings.Builder

	for _, msg := range c.Messages {
		b.WriteString(c.renderBubble(msg))
		b.WriteString("\n")
	}

	if c.Streaming {
		b.WriteString(c.Styles.AssistantLabel.Render(c.AssistantName))
		b.WriteString("\n")
		if buf := c.StreamBuf.String(); buf != "" {
			b.WriteString(c.Styles.AssistantText.Width(c.textWidth()).Render(buf))
		} else {
			b.WriteString(c.Styles.Muted.Render("thinking..."))
		}
		b.WriteString("\n")
	}

	c.Viewport.SetContent(b.String())
}

func (c *ChatViewModel) renderBubble(msg ChatBubble) string {
	ts := c.Styles.Muted.Render(msg.Timestamp.Format("15:04"))

	switch msg.Role {
	case "user":
		label := fmt.Sprintf("%s %s", c.Styles.UserLabel.Render(c.UserName), ts)
		return label + "\n" + c.Styles.UserBubble.Width(c.textWidth()).Render(msg.Content) + "\n"
	case "assistant":
		label := fmt.Sprintf("%s %s", c.Styles.AssistantLabel.Render(c.AssistantName), ts)
		return label + "\n" + c.Styles.AssistantText.Width(c.textWidth()).Render(msg.Content) + "\n"
	default:
		return c.Styles.SystemText.Render(msg.Content) + "\n"
	}
}

func (c *ChatViewModel) textWidth() int {
	if c.Width > 8 {
		return c.Width - 6
	}
	return 74
}

// View renders the chat viewport
func (c *ChatViewModel) View() string {
	return c.Viewport.View()
}
