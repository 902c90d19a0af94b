package foodrag

import "time"

// Document is a food fact supplied with WithCorpus. Region and Type are optional.
type Document struct {
	ID     string
	Text   string
	Region string
	Type   string
}

// Source is a cited passage of an answer. Region and Type are never empty:
// untagged sources carry the strategy's fallback labels.
type Source struct {
	ID     string
	Name   string
	Text   string
	URL    string
	Region string
	Type   string
}

// Answer is a generated answer and the sources it was grounded on, in rank order.
type Answer struct {
	Text    string
	Sources []Source
}

// Passage is a ranked retrieval result.
type Passage struct {
	Source
	Score float64
}

// Status describes the configured pipeline.
type Status struct {
	Message  string
	Strategy string // "corpus" or "websearch"
	// DocumentCount and LastUpdated are zero for web search.
	DocumentCount int
	LastUpdated   time.Time
}
