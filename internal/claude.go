package internal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ClaudeReconstructor maps Claude exports, whose messages are already in
// order, onto the normalized model.
type ClaudeReconstructor struct{}

// NewClaudeReconstructor creates a new ClaudeReconstructor
func NewClaudeReconstructor() *ClaudeReconstructor {
	return &ClaudeReconstructor{}
}

// Source returns SourceClaude
func (r *ClaudeReconstructor) Source() Source {
	return SourceClaude
}

// ReconstructConversation converts a single conversation
func (r *ClaudeReconstructor) ReconstructConversation(raw *RawClaudeConversation) (*Conversation, error) {
	if raw == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if raw.UUID == "" {
		return nil, ErrMissingUUID
	}

	title := raw.Name
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	messages := make([]Message, 0, len(raw.ChatMessages))
	for _, msg := range raw.ChatMessages {
		messages = append(messages, Message{
			Role:    normalizeClaudeSender(msg.Sender),
			Content: msg.Text,
			Date:    msg.CreatedAt,
		})
	}

	return &Conversation{
		ID:         raw.UUID,
		Title:      title,
		Messages:   messages,
		CreateTime: isoToMillis(raw.CreatedAt),
		UpdateTime: isoToMillis(raw.UpdatedAt),
	}, nil
}

// normalizeClaudeSender maps "human" to user and everything else to assistant
func normalizeClaudeSender(sender string) Role {
	if sender == "human" {
		return RoleUser
	}
	return RoleAssistant
}

// ReconstructAll converts every entry of a Claude export
func (r *ClaudeReconstructor) ReconstructAll(entries []json.RawMessage) ([]*Conversation, []*MalformedConversationError) {
	conversations := make([]*Conversation, 0, len(entries))
	var skipped []*MalformedConversationError

	for i, entry := range entries {
		raw, err := ParseRawClaudeConversation(entry)
		if err != nil {
			skipped = append(skipped, &MalformedConversationError{Source: SourceClaude, Index: i, Reason: "invalid entry", Err: err})
			continue
		}

		conv, err := r.ReconstructConversation(raw)
		if err != nil {
			skipped = append(skipped, &MalformedConversationError{Source: SourceClaude, Index: i, ID: raw.Name, Reason: "cannot reconstruct", Err: err})
			continue
		}
		conversations = append(conversations, conv)
	}

	return conversations, skipped
}
