package internal

import (
	"encoding/json"
	"testing"
)

func decodeJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("invalid test JSON %q: %v", s, err)
	}
	return v
}

func TestDetectSource(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Source
	}{
		{name: "chatgpt", input: `[{"mapping":{"a":{}},"current_node":"a"}]`, want: SourceChatGPT},
		{name: "claude", input: `[{"uuid":"u1","chat_messages":[]}]`, want: SourceClaude},
		{name: "only first element inspected", input: `[{"x":1},{"mapping":{},"current_node":"a"}]`, want: SourceUnknown},
		{name: "empty array", input: `[]`, want: SourceUnknown},
		{name: "object", input: `{"mapping":{},"current_node":"a"}`, want: SourceUnknown},
		{name: "null", input: `null`, want: SourceUnknown},
		{name: "string", input: `"conversations"`, want: SourceUnknown},
		{name: "number", input: `42`, want: SourceUnknown},
		{name: "array of scalars", input: `[1,2,3]`, want: SourceUnknown},
		{name: "empty current_node", input: `[{"mapping":{},"current_node":""}]`, want: SourceUnknown},
		{name: "null mapping", input: `[{"mapping":null,"current_node":"a"}]`, want: SourceUnknown},
		{name: "empty uuid", input: `[{"uuid":"","chat_messages":[]}]`, want: SourceUnknown},
		{name: "missing chat_messages", input: `[{"uuid":"u1"}]`, want: SourceUnknown},
		{name: "false mapping", input: `[{"mapping":false,"current_node":"a"}]`, want: SourceUnknown},
		{name: "zero current_node", input: `[{"mapping":{},"current_node":0}]`, want: SourceUnknown},
		{name: "chatgpt wins when both match", input: `[{"mapping":{},"current_node":"a","uuid":"u","chat_messages":[]}]`, want: SourceChatGPT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectSource(decodeJSON(t, tt.input)); got != tt.want {
				t.Errorf("DetectSource(%s) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetectSource_GoValues(t *testing.T) {
	// never panics on values that did not come from encoding/json
	inputs := []any{nil, 1, []string{"a"}, map[string]any{}, []any{nil}, []any{[]any{}}}
	for _, in := range inputs {
		if got := DetectSource(in); got != SourceUnknown {
			t.Errorf("DetectSource(%#v) = %v, want unknown", in, got)
		}
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"x", true},
		{float64(0), false},
		{float64(-1), true},
		{map[string]any{}, true},
		{[]any{}, true},
	}

	for _, tt := range tests {
		if got := truthy(tt.value); got != tt.want {
			t.Errorf("truthy(%#v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
