package internal

import (
	"fmt"
	"time"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Source identifies the chat product an export came from
type Source string

const (
	SourceChatGPT Source = "chatgpt"
	SourceClaude  Source = "claude"
	SourceUnknown Source = "unknown"
)

// Format is the output document format
type Format string

const (
	FormatMarkdown Format = "md"
	FormatMDX      Format = "mdx"
)

// DefaultTitle is used when an export carries a blank title
const DefaultTitle = "Untitled Chat"

// Message represents a normalized message
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
	Date    string `json:"date,omitempty" yaml:"date,omitempty"` // ISO-8601, empty when unknown
}

// Conversation represents a normalized conversation. Times are epoch
// milliseconds; zero means the export did not carry one.
type Conversation struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Messages   []Message `json:"messages" yaml:"messages"`
	CreateTime int64     `json:"createTime,omitempty" yaml:"create_time,omitempty"`
	UpdateTime int64     `json:"updateTime,omitempty" yaml:"update_time,omitempty"`
}

// GetCreatedAt returns CreateTime as a time.Time, zero when absent
func (c *Conversation) GetCreatedAt() time.Time {
	if c.CreateTime == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.CreateTime).UTC()
}

// GetUpdatedAt returns UpdateTime, falling back to CreateTime
func (c *Conversation) GetUpdatedAt() time.Time {
	if c.UpdateTime == 0 {
		return c.GetCreatedAt()
	}
	return time.UnixMilli(c.UpdateTime).UTC()
}

// ConversionOptions controls rendering and packaging. It is passed by value
// and never mutated.
type ConversionOptions struct {
	Format             Format
	IncludeFrontmatter bool
	SeparateFiles      bool
	AddTimestamps      bool
	// Location is the zone for per-message timestamps; nil means UTC.
	Location *time.Location
}

// DefaultConversionOptions mirrors the defaults offered to users
func DefaultConversionOptions() ConversionOptions {
	return ConversionOptions{
		Format:             FormatMarkdown,
		IncludeFrontmatter: true,
		SeparateFiles:      true,
		AddTimestamps:      false,
	}
}

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatMarkdown, "markdown":
		return FormatMarkdown, nil
	case FormatMDX:
		return FormatMDX, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: md, mdx)", s)
	}
}
