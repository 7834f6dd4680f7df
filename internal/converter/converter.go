// Package converter wires detection, reconstruction, rendering and packaging
// into the two operations callers use: Parse and Convert.
package converter

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/iksnae/chat2md/internal"
	"github.com/iksnae/chat2md/internal/export"
)

// ParseResult is the outcome of parsing one export
type ParseResult struct {
	Source        internal.Source
	Conversations []*internal.Conversation
	// Skipped lists entries that could not be reconstructed
	Skipped []*internal.MalformedConversationError
}

// Converter holds the settings shared by Parse and Convert
type Converter struct {
	packager *export.Packager
}

// New creates a Converter rendering with up to workers goroutines
func New(workers int) *Converter {
	return &Converter{packager: export.NewPackager(workers)}
}

// Parse decodes an export, detects its source and reconstructs its
// conversations. Invalid JSON yields a *internal.ParseError and an
// unrecognised shape an *internal.UnsupportedFormatError; neither returns a
// partial result.
func (c *Converter) Parse(raw []byte) (*ParseResult, error) {
	return parse("input", raw)
}

// ParseFile reads and parses an export file
func (c *Converter) ParseFile(path string) (*ParseResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &internal.StorageError{Path: path, Op: "read", Err: err}
	}
	return parse(filepath.Base(path), raw)
}

func parse(name string, raw []byte) (*ParseResult, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		parseErr := &internal.ParseError{Source: name, Err: err}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			parseErr.Offset = syntaxErr.Offset
		}
		return nil, parseErr
	}

	source := internal.DetectSource(value)
	if source == internal.SourceUnknown {
		return nil, &internal.UnsupportedFormatError{Detail: name}
	}

	reconstructor, err := internal.NewReconstructor(source)
	if err != nil {
		return nil, err
	}

	// detection guarantees a top-level array
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &internal.ParseError{Source: name, Err: err}
	}

	conversations, skipped := reconstructor.ReconstructAll(entries)
	for _, s := range skipped {
		internal.LogWarn("Skipping entry: %v", s)
	}
	internal.LogDebug("Parsed %d %s conversation(s) from %s, skipped %d", len(conversations), source, name, len(skipped))

	return &ParseResult{
		Source:        source,
		Conversations: conversations,
		Skipped:       skipped,
	}, nil
}

// Convert renders conversations with opts and packages them into a zip
// archive. Every failure is reported as a *internal.PackagingError.
func (c *Converter) Convert(ctx context.Context, conversations []*internal.Conversation, opts internal.ConversionOptions) ([]byte, error) {
	archive, err := c.packager.Package(ctx, conversations, opts)
	if err != nil {
		var packagingErr *internal.PackagingError
		if errors.As(err, &packagingErr) {
			return nil, err
		}
		return nil, &internal.PackagingError{Err: err}
	}
	return archive, nil
}

// ArchiveName returns the download name used for an archive of source
func ArchiveName(source internal.Source) string {
	if source == "" || source == internal.SourceUnknown {
		return "chat-export-converted.zip"
	}
	return "chat-export-" + string(source) + ".zip"
}
