package domain

// SearchResult is a single web search hit. Transient, produced per request.
type SearchResult struct {
	Title   string
	Link    string
	Snippet string
}
