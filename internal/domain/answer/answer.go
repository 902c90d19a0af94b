package answer

import "github.com/kailas-cloud/foodrag/internal/domain/passage"

// Labels are the fallback region/type shown for sources that carry no tags.
type Labels struct {
	Region string
	Type   string
}

// Source is one cited item of an answer. Region and Type stay empty when the
// underlying passage has no tag; Labels fill them at the formatting boundary.
type Source struct {
	ID     string
	Name   string
	Text   string
	URL    string
	Region string
	Type   string
}

// Answer is the generated text plus the sources it was grounded on, in rank order.
type Answer struct {
	text    string
	sources []Source
	labels  Labels
}

// New builds an answer from the completion text and the retrieved passages.
func New(text string, passages []passage.Passage, labels Labels) Answer {
	sources := make([]Source, len(passages))
	for i := range passages {
		p := &passages[i]
		sources[i] = Source{
			ID:     p.ID(),
			Name:   p.Name(),
			Text:   p.Text(),
			URL:    p.URL(),
			Region: p.Region(),
			Type:   p.Type(),
		}
	}
	return Answer{text: text, sources: sources, labels: labels}
}

// Text returns the generated answer.
func (a *Answer) Text() string { return a.text }

// Sources returns the raw sources (tags may be empty).
func (a *Answer) Sources() []Source { return a.sources }

// Labels returns the fallback labels for untagged sources.
func (a *Answer) Labels() Labels { return a.labels }

// LabeledSources returns the sources with empty region/type replaced by the labels.
func (a *Answer) LabeledSources() []Source {
	out := make([]Source, len(a.sources))
	for i, s := range a.sources {
		if s.Region == "" {
			s.Region = a.labels.Region
		}
		if s.Type == "" {
			s.Type = a.labels.Type
		}
		out[i] = s
	}
	return out
}
