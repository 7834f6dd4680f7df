package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/chat2md/internal"
	"github.com/iksnae/chat2md/testutil"
)

func TestDisplayIndex(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name  string
		index *internal.ConversationIndex
		want  []string
	}{
		{
			name:  "empty index",
			index: &internal.ConversationIndex{},
			want:  []string{"No conversations found"},
		},
		{
			name: "single conversation",
			index: &internal.ConversationIndex{
				Conversations: []internal.ConversationIndexEntry{
					{ID: "conv-1", Title: "Test Conversation", MessageCount: 2, CreateTime: 1705314600000},
				},
				Metadata: internal.CacheMetadata{Source: internal.SourceChatGPT},
			},
			want: []string{"Found 1 chatgpt conversation(s)", "conv-1", "Test Conversation", "2"},
		},
		{
			name: "long title is shortened",
			index: &internal.ConversationIndex{
				Conversations: []internal.ConversationIndexEntry{
					{ID: "conv-2", Title: strings.Repeat("a", 60)},
				},
				Metadata: internal.CacheMetadata{Source: internal.SourceClaude},
			},
			want: []string{strings.Repeat("a", 47) + "..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			displayIndex(&buf, tt.index, now)
			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("displayIndex() output missing %q\n%s", want, output)
				}
			}
		})
	}
}

func TestFormatCreated(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"today", now.Add(-2 * time.Hour), now.Add(-2 * time.Hour).Format("Today 15:04")},
		{"this week", now.Add(-3 * 24 * time.Hour), now.Add(-3 * 24 * time.Hour).Format("Mon 15:04")},
		{"this year", now.Add(-60 * 24 * time.Hour), now.Add(-60 * 24 * time.Hour).Format("Jan 02 15:04")},
		{"older", now.Add(-400 * 24 * time.Hour), now.Add(-400 * 24 * time.Hour).Format("2006-01-02")},
		{"future", now.Add(time.Hour), now.Add(time.Hour).Format("2006-01-02")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatCreated(tt.at.UnixMilli(), now); got != tt.want {
				t.Errorf("formatCreated() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := formatCreated(0, now); got != "—" {
		t.Errorf("formatCreated(0) = %q, want placeholder", got)
	}
}

func TestListCommand(t *testing.T) {
	isolateEnv(t)
	dir := testutil.CreateTempDir(t)
	path := testutil.WriteChatGPTExport(t, dir)

	// first run fills the cache, second run reads the index back
	for _, run := range []string{"parse", "cached"} {
		t.Run(run, func(t *testing.T) {
			out, err := executeCommand(t, "list", path)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			for _, want := range []string{"q1-msg", "b-answer-2", "Quick question"} {
				if !strings.Contains(out, want) {
					t.Errorf("list output missing %q\n%s", want, out)
				}
			}
		})
	}
}

func TestListCommand_Errors(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	tests := []struct {
		name string
		path string
	}{
		{"missing file", dir + "/missing.json"},
		{"not an export", testutil.WriteFile(t, dir, "other.json", []byte(`{"foo": 1}`))},
		{"invalid json", testutil.WriteFile(t, dir, "broken.json", []byte(`[{`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCommand(t, "--no-cache", "list", tt.path); err == nil {
				t.Error("list should fail")
			}
		})
	}
}
