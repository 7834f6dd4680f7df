package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/iksnae/chat2md/internal"
	"github.com/klauspost/compress/zip"
)

// CombinedBaseName is the entry name used when SeparateFiles is off
const CombinedBaseName = "conversations"

// Document is a rendered file ready to be packaged
type Document struct {
	Name     string
	Content  string
	Modified time.Time
}

// Packager renders conversations and packages them into a zip archive
type Packager struct {
	workers int
}

// NewPackager creates a packager rendering with up to workers goroutines.
// workers <= 0 uses GOMAXPROCS.
func NewPackager(workers int) *Packager {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Packager{workers: workers}
}

// Package renders every conversation and returns the zip archive bytes
func (p *Packager) Package(ctx context.Context, conversations []*internal.Conversation, opts internal.ConversionOptions) ([]byte, error) {
	docs, err := p.Documents(ctx, conversations, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteArchive(&buf, docs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Documents renders the archive entries in input order. Entries whose names
// collide are merged: the later content wins and the first position is kept.
func (p *Packager) Documents(ctx context.Context, conversations []*internal.Conversation, opts internal.ConversionOptions) ([]Document, error) {
	if opts.Format == "" {
		opts.Format = internal.FormatMarkdown
	}

	if !opts.SeparateFiles {
		doc, err := p.combined(ctx, conversations, opts)
		if err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	}

	rendered, err := p.renderAll(ctx, conversations, opts)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(rendered))
	position := make(map[string]int, len(rendered))
	for i, conv := range conversations {
		if conv == nil {
			continue
		}
		doc := Document{
			Name:     Filename(conv, opts.Format),
			Content:  rendered[i],
			Modified: conv.GetUpdatedAt(),
		}
		if at, ok := position[doc.Name]; ok {
			internal.LogWarn("Filename collision on %s: conversation %s replaces an earlier one", doc.Name, conv.ID)
			docs[at] = doc
			continue
		}
		position[doc.Name] = len(docs)
		docs = append(docs, doc)
	}
	return docs, nil
}

// combined renders all conversations into a single document, each under its
// own title heading, separated by horizontal rules.
func (p *Packager) combined(ctx context.Context, conversations []*internal.Conversation, opts internal.ConversionOptions) (Document, error) {
	perConversation := opts
	perConversation.IncludeFrontmatter = false

	rendered, err := p.renderAll(ctx, conversations, perConversation)
	if err != nil {
		return Document{}, err
	}

	var b strings.Builder
	if opts.IncludeFrontmatter {
		b.WriteString("---\n")
		b.WriteString("title: \"Chat Export\"\n")
		fmt.Fprintf(&b, "conversations: %d\n", countNonNil(conversations))
		b.WriteString("---\n\n")
	}

	var modified time.Time
	first := true
	for i, conv := range conversations {
		if conv == nil {
			continue
		}
		if !first {
			b.WriteString("---\n\n")
		}
		first = false
		b.WriteString(rendered[i])
		if t := conv.GetUpdatedAt(); t.After(modified) {
			modified = t
		}
	}

	return Document{
		Name:     CombinedBaseName + "." + string(opts.Format),
		Content:  b.String(),
		Modified: modified,
	}, nil
}

// renderAll renders each conversation on a bounded pool of goroutines. The
// result slice is indexed like the input; nil conversations render as "".
func (p *Packager) renderAll(ctx context.Context, conversations []*internal.Conversation, opts internal.ConversionOptions) ([]string, error) {
	rendered := make([]string, len(conversations))
	if len(conversations) == 0 {
		return rendered, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > len(conversations) {
		workers = len(conversations)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if conv := conversations[i]; conv != nil {
					rendered[i] = Render(conv, opts)
				}
			}
		}()
	}

	var err error
feed:
	for i := range conversations {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, &internal.PackagingError{Err: err}
	}
	return rendered, nil
}

// WriteArchive writes docs as a zip archive. An empty docs slice yields a
// valid empty archive.
func WriteArchive(w io.Writer, docs []Document) error {
	zw := zip.NewWriter(w)

	for _, doc := range docs {
		header := &zip.FileHeader{
			Name:   doc.Name,
			Method: zip.Deflate,
		}
		if !doc.Modified.IsZero() {
			header.Modified = doc.Modified
		}

		fw, err := zw.CreateHeader(header)
		if err != nil {
			_ = zw.Close()
			return &internal.PackagingError{Entry: doc.Name, Err: err}
		}
		if _, err := io.WriteString(fw, doc.Content); err != nil {
			_ = zw.Close()
			return &internal.PackagingError{Entry: doc.Name, Err: err}
		}
	}

	if err := zw.Close(); err != nil {
		return &internal.PackagingError{Err: err}
	}
	return nil
}

func countNonNil(conversations []*internal.Conversation) int {
	n := 0
	for _, conv := range conversations {
		if conv != nil {
			n++
		}
	}
	return n
}
