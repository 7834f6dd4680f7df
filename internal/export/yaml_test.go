package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/chat2md/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	conv := internal.CreateTestConversation("test1")
	conv.Title = `Title: with "quotes"`

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(conv, &buf); err != nil {
		t.Fatalf("YAMLExporter.Export() error = %v", err)
	}

	var decoded internal.Conversation
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.ID != conv.ID || decoded.Title != conv.Title || decoded.CreateTime != conv.CreateTime {
		t.Errorf("decoded = %+v, want %+v", decoded, conv)
	}
	if len(decoded.Messages) != 2 || decoded.Messages[0].Role != internal.RoleUser {
		t.Errorf("messages = %+v", decoded.Messages)
	}
	if !strings.Contains(buf.String(), "create_time:") {
		t.Errorf("YAML should use snake_case keys:\n%s", buf.String())
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	if got := (&YAMLExporter{}).Extension(); got != "yaml" {
		t.Errorf("Extension() = %v, want yaml", got)
	}
}
