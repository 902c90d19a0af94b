package passage

import "github.com/kailas-cloud/foodrag/internal/domain/document"

// Passage is a single retrieved item, ranked highest-relevance first by the retriever.
// Corpus passages carry region/type tags; web passages carry a title and URL.
type Passage struct {
	id     string
	title  string
	text   string
	url    string
	region string
	kind   string
	score  float64
	web    bool
}

// FromDocument creates a passage from a corpus document.
func FromDocument(d *document.Document, score float64) Passage {
	return Passage{
		id:     d.ID(),
		text:   d.Text(),
		region: d.Region(),
		kind:   d.Type(),
		score:  score,
	}
}

// FromWebResult creates a passage from a web search hit.
func FromWebResult(id, title, link, snippet string) Passage {
	return Passage{id: id, title: title, text: snippet, url: link, web: true}
}

// ID returns the passage identifier.
func (p *Passage) ID() string { return p.id }

// Title returns the explicit title, or "" for corpus passages.
func (p *Passage) Title() string { return p.title }

// Text returns the passage body (document text or search snippet).
func (p *Passage) Text() string { return p.text }

// URL returns the source link, or "" for corpus passages.
func (p *Passage) URL() string { return p.url }

// Region returns the region tag, or "" when absent.
func (p *Passage) Region() string { return p.region }

// Type returns the type tag, or "" when absent.
func (p *Passage) Type() string { return p.kind }

// IsWeb reports whether the passage came from a web search.
func (p *Passage) IsWeb() bool { return p.web }

// Score returns the relevance score (0 for web results, which arrive pre-ranked).
func (p *Passage) Score() float64 { return p.score }

// Name returns the display name: the title for web passages (even when
// empty), a name derived from the text for corpus passages.
func (p *Passage) Name() string {
	if p.web {
		return p.title
	}
	return document.DisplayName(p.text)
}

// ContextEntry is the passage as it appears inside the prompt context block.
func (p *Passage) ContextEntry() string {
	if p.web {
		return p.title + "\n" + p.text
	}
	return p.text
}
