package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iksnae/chat2md/internal"
)

// timestampLayout matches the en-US form of JavaScript's toLocaleString
const timestampLayout = "1/2/2006, 3:04:05 PM"

// MarkdownExporter exports conversations as Markdown or MDX documents
type MarkdownExporter struct {
	Options internal.ConversionOptions
}

// Export writes the rendered document
func (e *MarkdownExporter) Export(conv *internal.Conversation, w io.Writer) error {
	_, err := io.WriteString(w, Render(conv, e.Options))
	return err
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	if e.Options.Format == internal.FormatMDX {
		return "mdx"
	}
	return "md"
}

// Render turns a conversation into a Markdown document. MD and MDX share the
// same body. Render does no I/O and its output depends only on its arguments.
func Render(conv *internal.Conversation, opts internal.ConversionOptions) string {
	var b strings.Builder

	if opts.IncludeFrontmatter {
		writeFrontmatter(&b, conv)
	} else {
		fmt.Fprintf(&b, "# %s\n\n", conv.Title)
	}

	for _, msg := range conv.Messages {
		writeMessage(&b, msg, opts)
	}

	return b.String()
}

func writeFrontmatter(b *strings.Builder, conv *internal.Conversation) {
	date := "unknown"
	if conv.CreateTime != 0 {
		date = conv.GetCreatedAt().Format("2006-01-02")
	}

	b.WriteString("---\n")
	fmt.Fprintf(b, "title: \"%s\"\n", escapeFrontmatter(conv.Title))
	fmt.Fprintf(b, "date: %s\n", date)
	fmt.Fprintf(b, "id: %s\n", frontmatterID(conv.ID))
	b.WriteString("---\n\n")
}

// roleHeading collapses every non-user role, system included, into Assistant
func roleHeading(role internal.Role) string {
	if role == internal.RoleUser {
		return "## User"
	}
	return "## Assistant"
}

func writeMessage(b *strings.Builder, msg internal.Message, opts internal.ConversionOptions) {
	b.WriteString(roleHeading(msg.Role))
	if opts.AddTimestamps && msg.Date != "" {
		fmt.Fprintf(b, " *(%s)*", formatTimestamp(msg.Date, opts))
	}
	b.WriteString("\n\n")
	b.WriteString(msg.Content)
	b.WriteString("\n\n")
}

// formatTimestamp renders an ISO date in the configured zone. Unparseable
// dates are emitted as-is.
func formatTimestamp(date string, opts internal.ConversionOptions) string {
	t, ok := internal.ParseISOTimestamp(date)
	if !ok {
		return date
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(timestampLayout)
}

// escapeFrontmatter makes a string safe inside a double-quoted YAML scalar.
// Characters YAML does not allow unescaped, and line breaks YAML would fold,
// use YAML escape sequences.
func escapeFrontmatter(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u0085':
			b.WriteString(`\N`)
		case '\u2028':
			b.WriteString(`\L`)
		case '\u2029':
			b.WriteString(`\P`)
		case '\uFEFF', '\uFFFE', '\uFFFF':
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
				fmt.Fprintf(&b, `\x%02X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// frontmatterID writes ids such as UUIDs and node ids as plain scalars and
// quotes anything YAML could read as another value or type.
func frontmatterID(id string) string {
	if isPlainID(id) {
		return id
	}
	return `"` + escapeFrontmatter(id) + `"`
}

// isPlainID reports whether id reads back as the same string when unquoted:
// letters, digits and inner "-_.", at least one letter, and not a YAML
// keyword or number.
func isPlainID(id string) bool {
	switch strings.ToLower(id) {
	case "null", "true", "false":
		return false
	}
	hasLetter := false
	for i, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
		case (r == '-' || r == '_' || r == '.') && i > 0:
		default:
			return false
		}
	}
	if !hasLetter {
		return false
	}
	if _, err := strconv.ParseInt(id, 0, 64); err == nil {
		return false
	}
	if _, err := strconv.ParseFloat(id, 64); err == nil {
		return false
	}
	return true
}
