package document

import (
	"fmt"
	"regexp"
	"strings"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxTextSize is the maximum document text size in bytes.
const MaxTextSize = 16384

// Document is a food-fact record (immutable value object).
// Region and type are optional; empty means absent.
type Document struct {
	id     string
	text   string
	region string
	kind   string
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_-]+$, 1-64 chars. Text: non-empty, max 16KB.
func New(id, text, region, kind string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 64 {
		return Document{}, fmt.Errorf("document ID too long (max 64)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	if strings.TrimSpace(text) == "" {
		return Document{}, fmt.Errorf("document %q: text is required", id)
	}
	if len(text) > MaxTextSize {
		return Document{}, fmt.Errorf("document %q: text too large (max %d bytes)", id, MaxTextSize)
	}

	return Document{
		id:     id,
		text:   text,
		region: strings.TrimSpace(region),
		kind:   strings.TrimSpace(kind),
	}, nil
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Text returns the free-form document text.
func (d *Document) Text() string { return d.text }

// Region returns the region tag, or "" when absent.
func (d *Document) Region() string { return d.region }

// Type returns the type tag, or "" when absent.
func (d *Document) Type() string { return d.kind }

// EnrichedText returns the text suffixed with " Region: <region>." and
// " Type: <type>." for the tags that are present.
func (d *Document) EnrichedText() string {
	var b strings.Builder
	b.WriteString(d.text)
	if d.region != "" {
		b.WriteString(" Region: ")
		b.WriteString(d.region)
		b.WriteString(".")
	}
	if d.kind != "" {
		b.WriteString(" Type: ")
		b.WriteString(d.kind)
		b.WriteString(".")
	}
	return b.String()
}

// Name derives a display name: the first line of the text, cut before the
// first " is " when present.
func (d *Document) Name() string {
	return DisplayName(d.text)
}

// DisplayName derives a display name from free text.
func DisplayName(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	if head, _, found := strings.Cut(line, " is "); found {
		line = head
	}
	return strings.TrimSpace(line)
}
