package testutil

import (
	"testing"
)

// ChatGPTExport holds two conversations: a single message chat and a
// branching tree whose current_node selects the second answer.
const ChatGPTExport = `[
  {
    "title": "Quick question",
    "create_time": 1705314600.0,
    "update_time": 1705314660.0,
    "current_node": "q1-msg",
    "mapping": {
      "q1-root": {"id": "q1-root", "message": null, "parent": null, "children": ["q1-msg"]},
      "q1-msg": {
        "id": "q1-msg",
        "parent": "q1-root",
        "children": [],
        "message": {
          "author": {"role": "user"},
          "create_time": 1705314600.5,
          "content": {"content_type": "text", "parts": ["What is Go?"]}
        }
      }
    }
  },
  {
    "title": "Branching \"tree\"",
    "create_time": 1705401000.0,
    "update_time": 1705401100.0,
    "current_node": "b-answer-2",
    "mapping": {
      "b-root": {"id": "b-root", "message": null, "parent": null, "children": ["b-system"]},
      "b-system": {
        "id": "b-system",
        "parent": "b-root",
        "children": ["b-question"],
        "message": {"author": {"role": "system"}, "content": {"content_type": "text", "parts": [""]}}
      },
      "b-question": {
        "id": "b-question",
        "parent": "b-system",
        "children": ["b-answer-1", "b-answer-2"],
        "message": {
          "author": {"role": "user"},
          "create_time": 1705401000.0,
          "content": {"content_type": "text", "parts": ["Explain goroutines"]}
        }
      },
      "b-answer-1": {
        "id": "b-answer-1",
        "parent": "b-question",
        "children": [],
        "message": {
          "author": {"role": "assistant"},
          "create_time": 1705401010.0,
          "content": {"content_type": "text", "parts": ["Discarded answer"]}
        }
      },
      "b-answer-2": {
        "id": "b-answer-2",
        "parent": "b-question",
        "children": ["b-followup"],
        "message": {
          "author": {"role": "assistant"},
          "create_time": 1705401020.0,
          "content": {"content_type": "text", "parts": ["Goroutines are lightweight threads."]}
        }
      },
      "b-followup": {
        "id": "b-followup",
        "parent": "b-answer-2",
        "children": [],
        "message": {
          "author": {"role": "user"},
          "create_time": 1705401030.0,
          "content": {"content_type": "text", "parts": ["Not on the current branch"]}
        }
      }
    }
  }
]`

// ClaudeExport holds one conversation with two turns
const ClaudeExport = `[
  {
    "uuid": "c0ffee00-0000-4000-8000-000000000001",
    "name": "Haiku request",
    "created_at": "2024-01-15T10:30:00.000000Z",
    "updated_at": "2024-01-15T10:31:00.000000Z",
    "chat_messages": [
      {"sender": "human", "text": "Write a haiku", "created_at": "2024-01-15T10:30:00.000000Z", "updated_at": "2024-01-15T10:30:00.000000Z"},
      {"sender": "assistant", "text": "Silent goroutines", "created_at": "2024-01-15T10:30:30.000000Z", "updated_at": "2024-01-15T10:30:30.000000Z"}
    ]
  }
]`

// WriteChatGPTExport writes ChatGPTExport into dir and returns its path
func WriteChatGPTExport(t *testing.T, dir string) string {
	t.Helper()
	return WriteFile(t, dir, "conversations.json", []byte(ChatGPTExport))
}

// WriteClaudeExport writes ClaudeExport into dir and returns its path
func WriteClaudeExport(t *testing.T, dir string) string {
	t.Helper()
	return WriteFile(t, dir, "claude-conversations.json", []byte(ClaudeExport))
}
