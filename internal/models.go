package internal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RawChatGPTConversation is one entry of a ChatGPT conversations.json export
type RawChatGPTConversation struct {
	Title       string                     `json:"title"`
	CreateTime  float64                    `json:"create_time"` // epoch seconds
	UpdateTime  float64                    `json:"update_time"` // epoch seconds
	Mapping     map[string]*RawChatGPTNode `json:"mapping"`
	CurrentNode string                     `json:"current_node"`
}

// RawChatGPTNode is a single turn in the mapping tree
type RawChatGPTNode struct {
	ID       string             `json:"id"`
	Message  *RawChatGPTMessage `json:"message,omitempty"`
	Parent   *string            `json:"parent"`
	Children []string           `json:"children,omitempty"`
}

// RawChatGPTMessage is the payload of a mapping node
type RawChatGPTMessage struct {
	Author struct {
		Role string `json:"role"`
	} `json:"author"`
	CreateTime float64 `json:"create_time"` // epoch seconds
	Content    struct {
		Parts []json.RawMessage `json:"parts"`
	} `json:"content"`
}

// RawClaudeConversation is one entry of a Claude conversations.json export
type RawClaudeConversation struct {
	UUID         string             `json:"uuid"`
	Name         string             `json:"name"`
	CreatedAt    string             `json:"created_at"`
	UpdatedAt    string             `json:"updated_at"`
	ChatMessages []RawClaudeMessage `json:"chat_messages"`
}

// RawClaudeMessage is a single chat message in a Claude export
type RawClaudeMessage struct {
	Sender    string `json:"sender"` // "human" or "assistant"
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ParseRawChatGPTConversation parses one export entry
func ParseRawChatGPTConversation(data []byte) (*RawChatGPTConversation, error) {
	var conv RawChatGPTConversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to parse chatgpt conversation JSON: %w", err)
	}
	return &conv, nil
}

// ParseRawClaudeConversation parses one export entry
func ParseRawClaudeConversation(data []byte) (*RawClaudeConversation, error) {
	var conv RawClaudeConversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to parse claude conversation JSON: %w", err)
	}
	return &conv, nil
}

// TextParts returns the string parts of the message content. Non-text parts
// such as image pointers are dropped.
func (m *RawChatGPTMessage) TextParts() []string {
	parts := make([]string, 0, len(m.Content.Parts))
	for _, raw := range m.Content.Parts {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		parts = append(parts, s)
	}
	return parts
}

// Text joins the text parts with newlines
func (m *RawChatGPTMessage) Text() string {
	return strings.Join(m.TextParts(), "\n")
}

// ParentID returns the parent node id, empty for a root
func (n *RawChatGPTNode) ParentID() string {
	if n.Parent == nil {
		return ""
	}
	return *n.Parent
}

// secondsToMillis converts export epoch seconds to epoch milliseconds
func secondsToMillis(seconds float64) int64 {
	return int64(seconds * 1000)
}

// formatISO formats epoch milliseconds the way JavaScript's toISOString does
func formatISO(millis int64) string {
	return time.UnixMilli(millis).UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02",
}

// ParseISOTimestamp parses an ISO-8601 string. Strings without a zone are
// read as UTC.
func ParseISOTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isoToMillis converts an ISO-8601 string to epoch milliseconds, 0 when unparseable
func isoToMillis(s string) int64 {
	t, ok := ParseISOTimestamp(s)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}
