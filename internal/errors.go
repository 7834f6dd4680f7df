package internal

import "fmt"

// StorageError represents errors reading export files or the cache
type StorageError struct {
	Path string
	Op   string // "open", "read", "write"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError means the input bytes are not valid JSON
type ParseError struct {
	Source string // file name or "input"
	Offset int64  // byte offset of the syntax error, when known
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("parse error [%s] at offset %d: %v", e.Source, e.Offset, e.Err)
	}
	return fmt.Sprintf("parse error [%s]: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError means the JSON is valid but matches no known export schema
type UnsupportedFormatError struct {
	Detail string
}

func (e *UnsupportedFormatError) Error() string {
	msg := "unsupported export format: expected a ChatGPT or Claude conversations export"
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// MalformedConversationError describes a single export entry that was skipped
type MalformedConversationError struct {
	Source Source
	Index  int    // position in the export array
	ID     string // best-effort identifier, may be empty
	Reason string
	Err    error
}

func (e *MalformedConversationError) Error() string {
	id := e.ID
	if id == "" {
		id = "?"
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed %s conversation #%d [%s]: %s: %v", e.Source, e.Index, id, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s conversation #%d [%s]: %s", e.Source, e.Index, id, e.Reason)
}

func (e *MalformedConversationError) Unwrap() error {
	return e.Err
}

// PackagingError represents a failure while building the output archive
type PackagingError struct {
	Entry string // archive entry being written, empty for archive-level failures
	Err   error
}

func (e *PackagingError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("packaging error [%s]: %v", e.Entry, e.Err)
	}
	return fmt.Sprintf("packaging error: %v", e.Err)
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}

// ExportError represents errors writing converted output to disk
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
