package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCurrentNode is returned for ChatGPT entries without a current_node
	ErrMissingCurrentNode = errors.New("current_node is empty")
	// ErrDanglingCurrentNode is returned when current_node is not in the mapping
	ErrDanglingCurrentNode = errors.New("current_node not found in mapping")
	// ErrMissingUUID is returned for Claude entries without a uuid
	ErrMissingUUID = errors.New("uuid is empty")
)

// Reconstructor turns the raw entries of one export into normalized conversations.
// Entries that cannot be reconstructed are skipped and reported, never fatal.
type Reconstructor interface {
	Source() Source
	ReconstructAll(entries []json.RawMessage) ([]*Conversation, []*MalformedConversationError)
}

// NewReconstructor returns the reconstructor for a detected source
func NewReconstructor(source Source) (Reconstructor, error) {
	switch source {
	case SourceChatGPT:
		return NewChatGPTReconstructor(), nil
	case SourceClaude:
		return NewClaudeReconstructor(), nil
	default:
		return nil, &UnsupportedFormatError{Detail: fmt.Sprintf("no reconstructor for source %q", source)}
	}
}

// ChatGPTReconstructor rebuilds the visible thread of each conversation from
// the node mapping by walking parent links up from current_node.
type ChatGPTReconstructor struct{}

// NewChatGPTReconstructor creates a new ChatGPTReconstructor
func NewChatGPTReconstructor() *ChatGPTReconstructor {
	return &ChatGPTReconstructor{}
}

// Source returns SourceChatGPT
func (r *ChatGPTReconstructor) Source() Source {
	return SourceChatGPT
}

// ReconstructConversation reconstructs a single conversation
func (r *ChatGPTReconstructor) ReconstructConversation(raw *RawChatGPTConversation) (*Conversation, error) {
	if raw == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if raw.CurrentNode == "" {
		return nil, ErrMissingCurrentNode
	}
	if node, ok := raw.Mapping[raw.CurrentNode]; !ok || node == nil {
		return nil, ErrDanglingCurrentNode
	}

	title := raw.Title
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	return &Conversation{
		// exports carry no stable top-level id in this shape
		ID:         raw.CurrentNode,
		Title:      title,
		Messages:   r.walkToRoot(raw),
		CreateTime: secondsToMillis(raw.CreateTime),
		UpdateTime: secondsToMillis(raw.UpdateTime),
	}, nil
}

// walkToRoot follows parent links from current_node and returns the collected
// messages in root-to-leaf order. Sibling branches are never visited. The walk
// stops at a missing node or a node already seen, so it takes at most
// len(mapping) steps.
func (r *ChatGPTReconstructor) walkToRoot(raw *RawChatGPTConversation) []Message {
	var collected []Message
	visited := make(map[string]struct{}, len(raw.Mapping))

	for id := raw.CurrentNode; id != ""; {
		node, ok := raw.Mapping[id]
		if !ok || node == nil {
			LogDebug("Node %s missing from mapping, treating as root", id)
			break
		}
		if _, seen := visited[id]; seen {
			LogWarn("Cycle detected at node %s in conversation %s", id, raw.CurrentNode)
			break
		}
		visited[id] = struct{}{}

		if msg, ok := r.extractMessage(node); ok {
			collected = append(collected, msg)
		} else {
			LogDebug("Skipping node %s without text content", id)
		}
		id = node.ParentID()
	}

	// collected is leaf-to-root
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected
}

func (r *ChatGPTReconstructor) extractMessage(node *RawChatGPTNode) (Message, bool) {
	if node.Message == nil {
		return Message{}, false
	}

	text := node.Message.Text()
	if strings.TrimSpace(text) == "" {
		return Message{}, false
	}

	msg := Message{
		Role:    normalizeChatGPTRole(node.Message.Author.Role),
		Content: text,
	}
	if node.Message.CreateTime != 0 {
		msg.Date = formatISO(secondsToMillis(node.Message.CreateTime))
	}
	return msg, true
}

// normalizeChatGPTRole maps author.role onto Role; tool and unknown authors become system
func normalizeChatGPTRole(role string) Role {
	switch Role(role) {
	case RoleUser, RoleAssistant, RoleSystem:
		return Role(role)
	default:
		return RoleSystem
	}
}

// ReconstructAll reconstructs every entry of a ChatGPT export
func (r *ChatGPTReconstructor) ReconstructAll(entries []json.RawMessage) ([]*Conversation, []*MalformedConversationError) {
	conversations := make([]*Conversation, 0, len(entries))
	var skipped []*MalformedConversationError

	for i, entry := range entries {
		raw, err := ParseRawChatGPTConversation(entry)
		if err != nil {
			skipped = append(skipped, &MalformedConversationError{Source: SourceChatGPT, Index: i, Reason: "invalid entry", Err: err})
			continue
		}

		conv, err := r.ReconstructConversation(raw)
		if err != nil {
			skipped = append(skipped, &MalformedConversationError{Source: SourceChatGPT, Index: i, ID: raw.CurrentNode, Reason: "cannot reconstruct", Err: err})
			continue
		}
		conversations = append(conversations, conv)
	}

	return conversations, skipped
}
