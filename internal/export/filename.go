package export

import (
	"strings"
	"unicode/utf16"

	"github.com/iksnae/chat2md/internal"
)

const maxFilenameLength = 50

// SanitizeFilename derives an archive file base name from a title. Every
// character outside [A-Za-z0-9] becomes an underscore per UTF-16 code unit, so
// astral characters such as emoji produce two. The result is lowercased,
// truncated to 50 characters and falls back to "untitled".
func SanitizeFilename(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			n := utf16.RuneLen(r)
			if n < 1 {
				n = 1
			}
			b.WriteString(strings.Repeat("_", n))
		}
	}

	name := b.String()
	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}
	if name == "" {
		return "untitled"
	}
	return name
}

// Filename returns the archive entry name for a conversation
func Filename(conv *internal.Conversation, format internal.Format) string {
	return SanitizeFilename(conv.Title) + "." + string(format)
}
