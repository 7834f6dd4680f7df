package internal

import (
	"encoding/json"
	"fmt"
)

// CreateTestConversation creates a test conversation with sample data
func CreateTestConversation(id string) *Conversation {
	return &Conversation{
		ID:    id,
		Title: "Test Conversation",
		Messages: []Message{
			{
				Role:    RoleUser,
				Content: "Hello, how are you?",
				Date:    "2024-01-15T10:30:00.000Z",
			},
			{
				Role:    RoleAssistant,
				Content: "I'm doing well, thank you!",
				Date:    "2024-01-15T10:30:05.000Z",
			},
		},
		CreateTime: 1705314600000,
		UpdateTime: 1705314605000,
	}
}

// CreateTestConversationWithMessages creates a test conversation with custom messages
func CreateTestConversationWithMessages(id, title string, messages []Message) *Conversation {
	return &Conversation{
		ID:         id,
		Title:      title,
		Messages:   messages,
		CreateTime: 1705314600000,
	}
}

// CreateTestChatGPTNode creates a mapping node. An empty parent makes a root.
func CreateTestChatGPTNode(id, parent, role, text string, createTime float64, children ...string) *RawChatGPTNode {
	node := &RawChatGPTNode{ID: id, Children: children}
	if parent != "" {
		p := parent
		node.Parent = &p
	}
	if role != "" || text != "" {
		msg := &RawChatGPTMessage{CreateTime: createTime}
		msg.Author.Role = role
		part, _ := json.Marshal(text)
		msg.Content.Parts = []json.RawMessage{part}
		node.Message = msg
	}
	return node
}

// CreateTestChatGPTConversation builds a raw conversation from nodes
func CreateTestChatGPTConversation(title, currentNode string, nodes ...*RawChatGPTNode) *RawChatGPTConversation {
	mapping := make(map[string]*RawChatGPTNode, len(nodes))
	for _, n := range nodes {
		mapping[n.ID] = n
	}
	return &RawChatGPTConversation{
		Title:       title,
		CreateTime:  1705314600,
		UpdateTime:  1705314700,
		Mapping:     mapping,
		CurrentNode: currentNode,
	}
}

// CreateTestClaudeConversation builds a raw Claude conversation alternating human and assistant turns
func CreateTestClaudeConversation(uuid, name string, texts ...string) *RawClaudeConversation {
	conv := &RawClaudeConversation{
		UUID:      uuid,
		Name:      name,
		CreatedAt: "2024-01-15T10:30:00.000000Z",
		UpdatedAt: "2024-01-15T10:35:00.000000Z",
	}
	for i, text := range texts {
		sender := "human"
		if i%2 == 1 {
			sender = "assistant"
		}
		conv.ChatMessages = append(conv.ChatMessages, RawClaudeMessage{
			Sender:    sender,
			Text:      text,
			CreatedAt: fmt.Sprintf("2024-01-15T10:3%d:00.000000Z", i),
		})
	}
	return conv
}

// MarshalTestEntries encodes values as raw export entries
func MarshalTestEntries(values ...any) []json.RawMessage {
	entries := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		data, _ := json.Marshal(v)
		entries = append(entries, data)
	}
	return entries
}
