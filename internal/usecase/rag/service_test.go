package rag

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/foodrag/internal/domain"
	"github.com/kailas-cloud/foodrag/internal/domain/document"
	"github.com/kailas-cloud/foodrag/internal/domain/passage"
	"github.com/kailas-cloud/foodrag/internal/domain/prompt"
	"github.com/kailas-cloud/foodrag/internal/metrics"
	"github.com/kailas-cloud/foodrag/internal/usecase/retrieval"
)

func TestMain(m *testing.M) {
	metrics.RegisterRetrievalMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockCorpus struct {
	docs    []document.Document
	updated time.Time
}

func (m *mockCorpus) Documents() []document.Document { return m.docs }
func (m *mockCorpus) Count() int                     { return len(m.docs) }
func (m *mockCorpus) UpdatedAt() time.Time           { return m.updated }

type mockRetriever struct {
	strategy string
	passages []passage.Passage
	err      error
	calls    int
	gotQuery string
	gotK     int
}

func (m *mockRetriever) Retrieve(_ context.Context, q string, k int) ([]passage.Passage, error) {
	m.calls++
	m.gotQuery = q
	m.gotK = k
	return m.passages, m.err
}

func (m *mockRetriever) Strategy() string { return m.strategy }

type mockCompleter struct {
	text   string
	err    error
	calls  int
	prompt prompt.Prompt
}

func (m *mockCompleter) Complete(_ context.Context, p prompt.Prompt) (domain.CompletionResult, error) {
	m.calls++
	m.prompt = p
	if m.err != nil {
		return domain.CompletionResult{}, m.err
	}
	return domain.CompletionResult{Text: m.text, TotalTokens: 42}, nil
}

func sushiCorpus(t *testing.T) *mockCorpus {
	t.Helper()
	d, err := document.New("1", "Sushi is a Japanese dish of vinegared rice.", "Japan", "Seafood")
	require.NoError(t, err)
	return &mockCorpus{docs: []document.Document{d}, updated: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)}
}

// --- Tests ---

func TestAsk_EmptyQuestionShortCircuits(t *testing.T) {
	for _, q := range []string{"", "   ", "\n\t"} {
		r := &mockRetriever{strategy: retrieval.StrategyCorpus}
		c := &mockCompleter{}
		svc := New(r, c, nil, 0)

		_, err := svc.Ask(context.Background(), q)
		require.ErrorIs(t, err, domain.ErrQuestionRequired)
		assert.Equal(t, "Question is required", domain.PublicMessage(err))
		assert.Zero(t, r.calls, "retrieval must not run for %q", q)
		assert.Zero(t, c.calls, "completion must not run for %q", q)
	}
}

func TestAsk_SushiScenario(t *testing.T) {
	corpus := sushiCorpus(t)
	c := &mockCompleter{text: "Sushi is vinegared rice with fish."}
	svc := New(retrieval.New(corpus, retrieval.ScoringTags), c, corpus, 3)

	ans, err := svc.Ask(context.Background(), "  Japanese rice dish ")
	require.NoError(t, err)

	assert.Equal(t, "Sushi is vinegared rice with fish.", ans.Text())
	sources := ans.LabeledSources()
	require.Len(t, sources, 1)
	assert.Equal(t, "1", sources[0].ID)
	assert.Equal(t, "Sushi", sources[0].Name)
	assert.Equal(t, "Japan", sources[0].Region)
	assert.Equal(t, "Seafood", sources[0].Type)

	assert.Equal(t, prompt.Corpus.System, c.prompt.System)
	assert.Contains(t, c.prompt.User, "Context:\nSushi is a Japanese dish of vinegared rice.\n\n")
	assert.True(t, strings.HasSuffix(c.prompt.User, "Question: Japanese rice dish\nAnswer:"))
}

func TestAsk_EmptyStoreStillCompletes(t *testing.T) {
	corpus := &mockCorpus{}
	c := &mockCompleter{text: "I don't know."}
	svc := New(retrieval.New(corpus, retrieval.ScoringTags), c, corpus, 3)

	ans, err := svc.Ask(context.Background(), "What is sushi?")
	require.NoError(t, err)

	assert.Equal(t, 1, c.calls)
	assert.Contains(t, c.prompt.User, "Context:\n\n\nQuestion: What is sushi?")
	assert.Empty(t, ans.Sources())
}

func TestAsk_WebProfile(t *testing.T) {
	r := &mockRetriever{
		strategy: retrieval.StrategyWebSearch,
		passages: []passage.Passage{
			passage.FromWebResult("0", "Ramen guide", "https://a.example", "Top shops."),
			passage.FromWebResult("1", "Tonkotsu", "https://b.example", "Pork broth."),
		},
	}
	c := &mockCompleter{text: "Try Ichiran."}
	svc := New(r, c, nil, 3)

	ans, err := svc.Ask(context.Background(), "best ramen")
	require.NoError(t, err)

	assert.Equal(t, 3, r.gotK)
	assert.Equal(t, prompt.WebSearch.System, c.prompt.System)
	assert.Contains(t, c.prompt.User, "Ramen guide\nTop shops.\n\nTonkotsu\nPork broth.")

	sources := ans.LabeledSources()
	require.Len(t, sources, 2)
	assert.Equal(t, "Ramen guide", sources[0].Name)
	assert.Equal(t, "https://a.example", sources[0].URL)
	assert.Equal(t, "Internet", sources[0].Region)
	assert.Equal(t, "Web Source", sources[0].Type)
}

func TestAsk_MissingCompletionKey(t *testing.T) {
	corpus := sushiCorpus(t)
	c := &mockCompleter{err: domain.NewConfigError("GROQ_API_KEY is not configured")}
	svc := New(retrieval.New(corpus, retrieval.ScoringTags), c, corpus, 3)

	_, err := svc.Ask(context.Background(), "What is sushi?")
	require.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Equal(t, "GROQ_API_KEY is not configured", domain.PublicMessage(err))
}

func TestAsk_RetrievalErrorSkipsCompletion(t *testing.T) {
	searchErr := domain.NewProviderError(domain.ErrSearchProviderError, "Google Search", 403, "quota")
	r := &mockRetriever{strategy: retrieval.StrategyWebSearch, err: searchErr}
	c := &mockCompleter{}
	svc := New(r, c, nil, 3)

	_, err := svc.Ask(context.Background(), "pho")
	require.ErrorIs(t, err, domain.ErrSearchProviderError)
	assert.Zero(t, c.calls)
}

func TestRetrieve(t *testing.T) {
	r := &mockRetriever{strategy: retrieval.StrategyCorpus}
	svc := New(r, &mockCompleter{}, nil, 4)

	_, err := svc.Retrieve(context.Background(), "  ", 3)
	require.ErrorIs(t, err, domain.ErrInvalidQuery)
	assert.Zero(t, r.calls)

	_, err = svc.Retrieve(context.Background(), "rice", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, r.gotK)

	_, err = svc.Retrieve(context.Background(), "rice", 1000)
	require.NoError(t, err)
	assert.Equal(t, MaxPreviewK, r.gotK)

	r.err = errors.New("boom")
	_, err = svc.Retrieve(context.Background(), "rice", 2)
	require.Error(t, err)
}

func TestStatus(t *testing.T) {
	corpus := sushiCorpus(t)
	svc := New(retrieval.New(corpus, ""), &mockCompleter{}, corpus, 0)

	st := svc.Status()
	assert.Equal(t, retrieval.StrategyCorpus, st.Strategy)
	assert.True(t, st.HasCorpus)
	assert.Equal(t, 1, st.DocumentCount)
	assert.Equal(t, "2025-01-15", st.LastUpdated.Format(time.DateOnly))

	web := New(&mockRetriever{strategy: retrieval.StrategyWebSearch}, &mockCompleter{}, nil, 0)
	st = web.Status()
	assert.False(t, st.HasCorpus)
	assert.Equal(t, "RAG API with Google Search is running", st.Message)
}
