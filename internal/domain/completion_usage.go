package domain

import "context"

type completionUsageKey struct{}

// CompletionUsage collects token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the service writes after completion; the handler reads it for response headers.
type CompletionUsage struct {
	TotalTokens int
	Cached      bool
	Used        bool // true if completion was called, even on a cache hit with 0 tokens
}

// NewContextWithUsage returns a context with a completion usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *CompletionUsage) {
	u := &CompletionUsage{}
	return context.WithValue(ctx, completionUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *CompletionUsage {
	u, _ := ctx.Value(completionUsageKey{}).(*CompletionUsage)
	return u
}

// Record stores the usage of one completion call.
func (u *CompletionUsage) Record(res CompletionResult) {
	if u != nil {
		u.TotalTokens += res.TotalTokens
		u.Cached = u.Cached || res.Cached
		u.Used = true
	}
}
