package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/chat2md/internal"
)

// JSONLExporter exports conversations in JSONL format (one message per line)
type JSONLExporter struct{}

type jsonlLine struct {
	ConversationID string        `json:"conversation_id"`
	Index          int           `json:"index"`
	Role           internal.Role `json:"role"`
	Content        string        `json:"content"`
	Date           string        `json:"date,omitempty"`
}

// Export exports a conversation to JSONL format
func (e *JSONLExporter) Export(conv *internal.Conversation, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i, msg := range conv.Messages {
		line := jsonlLine{
			ConversationID: conv.ID,
			Index:          i,
			Role:           msg.Role,
			Content:        msg.Content,
			Date:           msg.Date,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
