package export

import (
	"strings"
	"testing"

	"github.com/iksnae/chat2md/internal"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World! 2024", "hello__world__2024"},
		{"simple", "simple"},
		{"MiXeD CaSe", "mixed_case"},
		{"", "untitled"},
		{"café", "caf_"},
		{"rocket 🚀", "rocket___"},
		{"a/b\\c.d", "a_b_c_d"},
		{strings.Repeat("x", 60), strings.Repeat("x", 50)},
		{strings.Repeat("é", 60), strings.Repeat("_", 50)},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := SanitizeFilename(tt.title); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	conv := &internal.Conversation{ID: "x", Title: "Weekly Sync"}
	if got := Filename(conv, internal.FormatMarkdown); got != "weekly_sync.md" {
		t.Errorf("Filename() = %q", got)
	}
	if got := Filename(conv, internal.FormatMDX); got != "weekly_sync.mdx" {
		t.Errorf("Filename() = %q", got)
	}
}
