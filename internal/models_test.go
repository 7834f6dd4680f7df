package internal

import (
	"testing"
	"time"
)

func TestParseRawChatGPTConversation(t *testing.T) {
	data := []byte(`{
		"title": "Export",
		"create_time": 1705314600.123456,
		"update_time": 1705314700.5,
		"current_node": "b",
		"mapping": {
			"a": {"id": "a", "message": null, "parent": null, "children": ["b"]},
			"b": {"id": "b", "parent": "a", "children": [], "message": {
				"author": {"role": "user"},
				"create_time": 1705314601.25,
				"content": {"content_type": "text", "parts": ["Hello", {"asset": "x"}, "World"]}
			}}
		}
	}`)

	raw, err := ParseRawChatGPTConversation(data)
	if err != nil {
		t.Fatalf("ParseRawChatGPTConversation() error = %v", err)
	}
	if raw.Title != "Export" || raw.CurrentNode != "b" || len(raw.Mapping) != 2 {
		t.Errorf("unexpected conversation: %+v", raw)
	}
	if raw.Mapping["a"].ParentID() != "" {
		t.Errorf("root ParentID() = %q, want empty", raw.Mapping["a"].ParentID())
	}
	if raw.Mapping["b"].ParentID() != "a" {
		t.Errorf("ParentID() = %q, want a", raw.Mapping["b"].ParentID())
	}
	if got := raw.Mapping["b"].Message.Text(); got != "Hello\nWorld" {
		t.Errorf("Text() = %q, want %q", got, "Hello\nWorld")
	}
	if got := secondsToMillis(raw.CreateTime); got != 1705314600123 {
		t.Errorf("secondsToMillis() = %d, want 1705314600123", got)
	}
}

func TestParseRawConversation_Invalid(t *testing.T) {
	if _, err := ParseRawChatGPTConversation([]byte(`{"title": 5}`)); err == nil {
		t.Error("ParseRawChatGPTConversation() expected error for numeric title")
	}
	if _, err := ParseRawClaudeConversation([]byte(`not json`)); err == nil {
		t.Error("ParseRawClaudeConversation() expected error")
	}
}

func TestFormatISO(t *testing.T) {
	tests := []struct {
		millis int64
		want   string
	}{
		{1705314600000, "2024-01-15T10:30:00.000Z"},
		{1705314601250, "2024-01-15T10:30:01.250Z"},
		{0, "1970-01-01T00:00:00.000Z"},
	}
	for _, tt := range tests {
		if got := formatISO(tt.millis); got != tt.want {
			t.Errorf("formatISO(%d) = %q, want %q", tt.millis, got, tt.want)
		}
	}
}

func TestParseISOTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		input string
		ok    bool
	}{
		{"2024-01-15T10:30:00Z", true},
		{"2024-01-15T10:30:00.000000Z", true},
		{"2024-01-15T11:30:00+01:00", true},
		{"2024-01-15T10:30:00", true},
		{"2024-01-15 10:30:00Z", true},
		{"", false},
		{"not a date", false},
		{"15/01/2024", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseISOTimestamp(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseISOTimestamp(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(want) {
				t.Errorf("ParseISOTimestamp(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}

	if _, ok := ParseISOTimestamp("2024-01-15"); !ok {
		t.Error("date-only strings should parse")
	}
	if got := isoToMillis("garbage"); got != 0 {
		t.Errorf("isoToMillis(garbage) = %d, want 0", got)
	}
}
