package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/chat2md/internal"
	"gopkg.in/yaml.v3"
)

func TestRender(t *testing.T) {
	conv := internal.CreateTestConversation("conv-1")

	tests := []struct {
		name string
		opts internal.ConversionOptions
		want string
	}{
		{
			name: "frontmatter",
			opts: internal.ConversionOptions{Format: internal.FormatMarkdown, IncludeFrontmatter: true},
			want: "---\ntitle: \"Test Conversation\"\ndate: 2024-01-15\nid: conv-1\n---\n\n" +
				"## User\n\nHello, how are you?\n\n" +
				"## Assistant\n\nI'm doing well, thank you!\n\n",
		},
		{
			name: "heading",
			opts: internal.ConversionOptions{Format: internal.FormatMarkdown},
			want: "# Test Conversation\n\n" +
				"## User\n\nHello, how are you?\n\n" +
				"## Assistant\n\nI'm doing well, thank you!\n\n",
		},
		{
			name: "timestamps in UTC",
			opts: internal.ConversionOptions{Format: internal.FormatMarkdown, AddTimestamps: true},
			want: "# Test Conversation\n\n" +
				"## User *(1/15/2024, 10:30:00 AM)*\n\nHello, how are you?\n\n" +
				"## Assistant *(1/15/2024, 10:30:05 AM)*\n\nI'm doing well, thank you!\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(conv, tt.opts); got != tt.want {
				t.Errorf("Render() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRender_Idempotent(t *testing.T) {
	conv := internal.CreateTestConversation("conv-1")
	opts := internal.ConversionOptions{Format: internal.FormatMDX, IncludeFrontmatter: true, AddTimestamps: true}

	first := Render(conv, opts)
	for i := 0; i < 5; i++ {
		if got := Render(conv, opts); got != first {
			t.Fatalf("Render() differs on call %d", i)
		}
	}

	// md and mdx bodies are identical
	opts.Format = internal.FormatMarkdown
	if got := Render(conv, opts); got != first {
		t.Error("md and mdx renderings differ")
	}
}

func TestRender_Edges(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	conv := &internal.Conversation{
		ID:    "c2",
		Title: "Edge cases",
		Messages: []internal.Message{
			{Role: internal.RoleSystem, Content: "system prompt", Date: "2024-07-01T22:15:00.000Z"},
			{Role: internal.RoleUser, Content: "undated"},
			{Role: internal.RoleUser, Content: "odd date", Date: "last tuesday"},
		},
	}
	opts := internal.ConversionOptions{IncludeFrontmatter: true, AddTimestamps: true, Location: berlin}

	got := Render(conv, opts)
	for _, want := range []string{
		"date: unknown\n",
		"## Assistant *(7/2/2024, 12:15:00 AM)*\n\nsystem prompt\n\n",
		"## User\n\nundated\n\n",
		"## User *(last tuesday)*\n\nodd date\n\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q in:\n%s", want, got)
		}
	}
}

func TestRender_FrontmatterEscaping(t *testing.T) {
	titles := []string{
		`He said "hi"`,
		`back\slash "quoted"`,
		"two\nlines",
		`: colon # hash`,
		`""`,
		"nul\x00byte",
		"bell\a",
		"carriage\rreturn",
		"tab\there",
		"nel\u0085x",
		"del\x7f and c1\u0090",
		"separators\u2028line\u2029para",
		"bom\ufeff",
		"emoji 🎉 ünïcode",
	}

	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			conv := internal.CreateTestConversationWithMessages("id-1", title, nil)
			doc := Render(conv, internal.ConversionOptions{IncludeFrontmatter: true})

			if !strings.HasPrefix(doc, "---\n") {
				t.Fatalf("document does not start with frontmatter: %q", doc)
			}
			end := strings.Index(doc[4:], "\n---\n")
			if end < 0 {
				t.Fatalf("frontmatter not terminated: %q", doc)
			}

			var meta struct {
				Title string `yaml:"title"`
				ID    string `yaml:"id"`
			}
			if err := yaml.Unmarshal([]byte(doc[4:4+end]), &meta); err != nil {
				t.Fatalf("frontmatter is not valid YAML: %v\n%s", err, doc[4:4+end])
			}
			if meta.Title != title {
				t.Errorf("title = %q, want %q", meta.Title, title)
			}
			if meta.ID != "id-1" {
				t.Errorf("id = %q, want id-1", meta.ID)
			}
		})
	}
}

func TestRender_FrontmatterID(t *testing.T) {
	tests := []struct {
		id        string
		wantPlain bool
	}{
		{"conv-1", true},
		{"c0ffee00-0000-4000-8000-000000000001", true},
		{"b-answer-2", true},
		{"a: b", false},
		{"#hash", false},
		{"[x", false},
		{"12345", false},
		{"1e3", false},
		{"0x1F", false},
		{"null", false},
		{"True", false},
		{"-dash", false},
		{`quote"d`, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			conv := internal.CreateTestConversationWithMessages(tt.id, "Title", nil)
			doc := Render(conv, internal.ConversionOptions{IncludeFrontmatter: true})

			if plain := strings.Contains(doc, "\nid: "+tt.id+"\n"); plain != tt.wantPlain {
				t.Errorf("id written plain = %v, want %v\n%s", plain, tt.wantPlain, doc)
			}

			end := strings.Index(doc[4:], "\n---\n")
			var meta struct {
				ID string `yaml:"id"`
			}
			if err := yaml.Unmarshal([]byte(doc[4:4+end]), &meta); err != nil {
				t.Fatalf("frontmatter is not valid YAML: %v\n%s", err, doc)
			}
			if meta.ID != tt.id {
				t.Errorf("id = %q, want %q", meta.ID, tt.id)
			}
		})
	}
}

func TestMarkdownExporter_Export(t *testing.T) {
	exporter := &MarkdownExporter{Options: internal.ConversionOptions{Format: internal.FormatMDX}}
	conv := internal.CreateTestConversation("conv-1")

	var buf bytes.Buffer
	if err := exporter.Export(conv, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if buf.String() != Render(conv, exporter.Options) {
		t.Error("Export() should write Render() output")
	}
	if exporter.Extension() != "mdx" {
		t.Errorf("Extension() = %q, want mdx", exporter.Extension())
	}
	if (&MarkdownExporter{}).Extension() != "md" {
		t.Error("zero-value exporter should use md")
	}
}
