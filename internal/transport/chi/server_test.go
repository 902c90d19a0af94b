package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/foodrag/internal/domain"
	"github.com/kailas-cloud/foodrag/internal/domain/document"
	"github.com/kailas-cloud/foodrag/internal/domain/prompt"
	"github.com/kailas-cloud/foodrag/internal/metrics"
	healthuc "github.com/kailas-cloud/foodrag/internal/usecase/health"
	raguc "github.com/kailas-cloud/foodrag/internal/usecase/rag"
	"github.com/kailas-cloud/foodrag/internal/usecase/retrieval"
	usageuc "github.com/kailas-cloud/foodrag/internal/usecase/usage"
)

func TestMain(m *testing.M) {
	metrics.RegisterHTTPMetrics()
	metrics.RegisterRetrievalMetrics()
	metrics.RegisterCompletionMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockCorpus struct {
	docs []document.Document
}

func (m *mockCorpus) Documents() []document.Document { return m.docs }
func (m *mockCorpus) Count() int                     { return len(m.docs) }
func (m *mockCorpus) UpdatedAt() time.Time {
	return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
}

type mockCompleter struct {
	text  string
	err   error
	calls int
}

func (m *mockCompleter) Complete(ctx context.Context, _ prompt.Prompt) (domain.CompletionResult, error) {
	m.calls++
	if m.err != nil {
		return domain.CompletionResult{}, m.err
	}
	res := domain.CompletionResult{Text: m.text, TotalTokens: 150}
	domain.UsageFromContext(ctx).Record(res)
	return res, nil
}

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

func mustDoc(t *testing.T, id, text, region, kind string) document.Document {
	t.Helper()
	d, err := document.New(id, text, region, kind)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return d
}

type testEnv struct {
	handler   http.Handler
	completer *mockCompleter
	checker   *mockChecker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	corpus := &mockCorpus{docs: []document.Document{
		mustDoc(t, "1", "Sushi is a Japanese dish of vinegared rice.", "Japan", "Seafood"),
		mustDoc(t, "2", "Paella is a Spanish rice dish.", "Spain", ""),
		mustDoc(t, "3", "Croissant is a buttery French pastry.", "", ""),
	}}
	completer := &mockCompleter{text: "Sushi is vinegared rice."}
	checker := &mockChecker{}

	rag := raguc.New(retrieval.New(corpus, retrieval.ScoringTags), completer, corpus, 3)
	server := NewServer(rag, usageuc.New(nil, "llama-3.1-8b-instant"), healthuc.New(nil, checker), zap.NewNop())

	return &testEnv{
		handler:   NewRouter(server, nil, zap.NewNop()),
		completer: completer,
		checker:   checker,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

// --- POST /api/rag ---

func TestAsk_Success(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/rag", `{"question":"Japanese rice dish"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Completion-Tokens") != "150" {
		t.Errorf("expected X-Completion-Tokens=150, got %q", rr.Header().Get("X-Completion-Tokens"))
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	var resp AskResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer != "Sushi is vinegared rice." {
		t.Errorf("unexpected answer %q", resp.Answer)
	}
	if len(resp.Sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(resp.Sources))
	}
	first := resp.Sources[0]
	if first.ID != "1" || first.Name != "Sushi" || first.Region != "Japan" || first.Type != "Seafood" {
		t.Errorf("unexpected first source: %+v", first)
	}
	for _, src := range resp.Sources {
		if src.ID == "2" && src.Type != "Food" {
			t.Errorf("expected default type Food for untagged source, got %q", src.Type)
		}
		if src.ID == "3" && (src.Region != "Global" || src.Type != "Food") {
			t.Errorf("expected default labels, got %+v", src)
		}
	}
}

func TestAsk_QuestionRequired(t *testing.T) {
	for _, body := range []string{`{"question":""}`, `{"question":"   "}`, `{}`, ""} {
		env := newTestEnv(t)
		rr := env.do(t, http.MethodPost, "/api/rag", body)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: got %d, want 400", body, rr.Code)
			continue
		}
		resp := decodeError(t, rr)
		if resp.Error != "Question is required" {
			t.Errorf("body %q: unexpected error %q", body, resp.Error)
		}
		if env.completer.calls != 0 {
			t.Errorf("body %q: completion must not be called", body)
		}
	}
}

func TestAsk_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/rag", `{"question":`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeBadRequest {
		t.Errorf("unexpected code %q", resp.Code)
	}
}

func TestAsk_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
		wantMsg    string
	}{
		{
			"missing key",
			domain.NewConfigError("GROQ_API_KEY is not configured"),
			http.StatusInternalServerError, CodeNotConfigured,
			"GROQ_API_KEY is not configured",
		},
		{
			"provider error",
			domain.NewProviderError(domain.ErrCompletionProviderError, "Groq", 401, "Invalid API Key"),
			http.StatusInternalServerError, CodeCompletionProviderError,
			"Groq API error: Invalid API Key",
		},
		{
			"quota",
			domain.ErrCompletionQuotaExceeded,
			http.StatusTooManyRequests, CodeCompletionQuotaExceeded,
			"Completion token budget exceeded",
		},
		{
			"unexpected",
			errors.New("boom"),
			http.StatusInternalServerError, CodeInternalError,
			"complete: boom",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.completer.err = tc.err

			rr := env.do(t, http.MethodPost, "/api/rag", `{"question":"What is sushi?"}`)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status: got %d, want %d", rr.Code, tc.wantStatus)
			}
			resp := decodeError(t, rr)
			if resp.Code != tc.wantCode {
				t.Errorf("code: got %q, want %q", resp.Code, tc.wantCode)
			}
			if resp.Error != tc.wantMsg {
				t.Errorf("error: got %q, want %q", resp.Error, tc.wantMsg)
			}
		})
	}
}

// --- GET /api/rag ---

func TestStatus(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/api/rag", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	var resp StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Strategy != "corpus" {
		t.Errorf("unexpected status: %+v", resp)
	}
	if resp.DocumentCount == nil || *resp.DocumentCount != 3 {
		t.Errorf("expected documentCount 3, got %v", resp.DocumentCount)
	}
	if resp.LastUpdated == nil || *resp.LastUpdated != "2025-01-15" {
		t.Errorf("expected lastUpdated 2025-01-15, got %v", resp.LastUpdated)
	}
}

// --- GET /api/rag/search ---

func TestSearchPassages(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/api/rag/search?q=rice&k=2", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var resp PassagesResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(resp.Passages))
	}
	if resp.Passages[0].Score < resp.Passages[1].Score {
		t.Error("passages must be sorted by score descending")
	}
	if env.completer.calls != 0 {
		t.Error("preview must not call completion")
	}
}

func TestSearchPassages_BadParams(t *testing.T) {
	for _, path := range []string{
		"/api/rag/search",
		"/api/rag/search?q=",
		"/api/rag/search?q=rice&k=abc",
		"/api/rag/search?q=rice&k=0",
	} {
		env := newTestEnv(t)
		rr := env.do(t, http.MethodGet, path, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", path, rr.Code)
		}
	}
}

// --- GET /api/usage ---

func TestGetUsage(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/api/usage?period=day", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	var resp UsageResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Period != "day" || resp.Model != "llama-3.1-8b-instant" {
		t.Errorf("unexpected usage response: %+v", resp)
	}
	if resp.PeriodStartAt == nil || resp.Budget.ResetsAt == nil {
		t.Error("expected period boundaries and reset time for day")
	}
	if resp.Budget.TokensRemaining != -1 || resp.Budget.IsExhausted {
		t.Errorf("expected unlimited budget, got %+v", resp.Budget)
	}

	if rr := env.do(t, http.MethodGet, "/api/usage", ""); rr.Code != http.StatusOK {
		t.Errorf("default period: got %d, want 200", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/api/usage?period=week", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown period: got %d, want 400", rr.Code)
	}
}

// --- ops ---

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Checks["completion"] != "ok" {
		t.Errorf("unexpected health: %+v", resp)
	}

	env.checker.err = errors.New("down")
	if rr := env.do(t, http.MethodGet, "/health", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded: got %d, want 503", rr.Code)
	}
}

func TestPage(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html") {
		t.Errorf("unexpected content type %q", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Body.String(), "Food Explorer") {
		t.Error("expected page title in body")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/rag", "")

	rr := env.do(t, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "foodrag_http_requests_total") {
		t.Error("expected http metrics in exposition")
	}
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/api/nope", "")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeNotFound {
		t.Errorf("unexpected code %q", resp.Code)
	}
}

func TestJSONRecoverer(t *testing.T) {
	handler := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/rag", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Error != "An unexpected error occurred" {
		t.Errorf("unexpected error %q", resp.Error)
	}
}
