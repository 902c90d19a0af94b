package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/foodrag/internal/domain"
	"github.com/kailas-cloud/foodrag/internal/domain/answer"
	"github.com/kailas-cloud/foodrag/internal/domain/passage"
	domusage "github.com/kailas-cloud/foodrag/internal/domain/usage"
	"github.com/kailas-cloud/foodrag/internal/logger"
	"github.com/kailas-cloud/foodrag/internal/version"
	healthuc "github.com/kailas-cloud/foodrag/internal/usecase/health"
	raguc "github.com/kailas-cloud/foodrag/internal/usecase/rag"
	usageuc "github.com/kailas-cloud/foodrag/internal/usecase/usage"
)

// maxBodyBytes limits the POST /api/rag body.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	rag           *raguc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	rag *raguc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		rag:    rag,
		usage:  usage,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrQuestionRequired, http.StatusBadRequest, CodeQuestionRequired),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
		sentinelHandler(domain.ErrCompletionQuotaExceeded, http.StatusTooManyRequests, CodeCompletionQuotaExceeded),
		sentinelHandler(domain.ErrNotConfigured, http.StatusInternalServerError, CodeNotConfigured),
		sentinelHandler(domain.ErrSearchProviderError, http.StatusInternalServerError, CodeSearchProviderError),
		sentinelHandler(domain.ErrCompletionProviderError,
			http.StatusInternalServerError, CodeCompletionProviderError),
	}
	return s
}

// Ask handles POST /api/rag.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	ans, err := s.rag.Ask(ctx, req.Question)
	setCompletionHeaders(w, usage)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:  ans.Text(),
		Sources: sourcesToDTO(ans.LabeledSources()),
	})
}

// Status handles GET /api/rag.
func (s *Server) Status(w http.ResponseWriter, _ *http.Request) {
	st := s.rag.Status()
	resp := StatusResponse{
		Status:   "ok",
		Message:  st.Message,
		Strategy: st.Strategy,
	}
	if st.HasCorpus {
		count := st.DocumentCount
		resp.DocumentCount = &count
		if !st.LastUpdated.IsZero() {
			updated := st.LastUpdated.Format(time.DateOnly)
			resp.LastUpdated = &updated
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// SearchPassages handles GET /api/rag/search: retrieval only, no completion.
func (s *Server) SearchPassages(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := runtime.BindQueryParameter("form", true, true, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidQuery, "Invalid format for parameter q: "+err.Error())
		return
	}
	var k *int
	if err := runtime.BindQueryParameter("form", true, false, "k", r.URL.Query(), &k); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidQuery, "Invalid format for parameter k: "+err.Error())
		return
	}
	if k != nil && *k <= 0 {
		writeError(w, http.StatusBadRequest, CodeInvalidQuery,
			"k must be between 1 and "+strconv.Itoa(raguc.MaxPreviewK))
		return
	}

	passages, err := s.rag.Retrieve(r.Context(), q, derefInt(k))
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	labels := s.rag.Labels()
	items := make([]Passage, len(passages))
	for i := range passages {
		items[i] = passageToDTO(&passages[i], labels)
	}
	writeJSON(w, http.StatusOK, PassagesResponse{
		Query:    q,
		Strategy: s.rag.Status().Strategy,
		Passages: items,
	})
}

// GetUsage handles GET /api/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	var raw *string
	if err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &raw); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter period: "+err.Error())
		return
	}
	period, ok := domusage.ParsePeriod(derefString(raw))
	if !ok {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "period must be one of day, month, total")
		return
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := UsageResponse{
		Period: string(report.Period()),
		Model:  report.Model(),
		Usage: UsageMetrics{
			CompletionRequests: report.Metrics().CompletionRequests(),
			Tokens:             report.Metrics().Tokens(),
		},
		Budget: BudgetStatus{
			TokensLimit:     report.Budget().TokensLimit(),
			TokensUsed:      report.Budget().TokensUsed(),
			TokensRemaining: report.Budget().TokensRemaining(),
			IsExhausted:     report.Budget().IsExhausted(),
		},
	}

	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}

	if report.Budget().ResetsAt() > 0 {
		resetsAt := time.UnixMilli(report.Budget().ResetsAt()).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setCompletionHeaders(w http.ResponseWriter, usage *domain.CompletionUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Completion-Tokens", strconv.Itoa(usage.TotalTokens))
		w.Header().Set("X-Completion-Cached", strconv.FormatBool(usage.Cached))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContext(ctx)
	msg := domain.PublicMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, msg)
}

func sourcesToDTO(sources []answer.Source) []Source {
	out := make([]Source, len(sources))
	for i, src := range sources {
		out[i] = Source{
			ID:     src.ID,
			Name:   src.Name,
			Text:   src.Text,
			Region: src.Region,
			Type:   src.Type,
			URL:    src.URL,
		}
	}
	return out
}

func passageToDTO(p *passage.Passage, labels answer.Labels) Passage {
	region, kind := p.Region(), p.Type()
	if region == "" {
		region = labels.Region
	}
	if kind == "" {
		kind = labels.Type
	}
	return Passage{
		Source: Source{
			ID:     p.ID(),
			Name:   p.Name(),
			Text:   p.Text(),
			Region: region,
			Type:   kind,
			URL:    p.URL(),
		},
		Score: p.Score(),
	}
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
