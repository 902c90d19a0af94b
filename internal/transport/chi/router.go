package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/foodrag/internal/metrics"
	"github.com/kailas-cloud/foodrag/internal/transport/chi/web"
)

// NewRouter mounts the page, the API and the ops endpoints behind the
// middleware stack: recoverer, request id, wide-event log, auth, metrics.
func NewRouter(s *Server, apiKeys []string, logger *zap.Logger) http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	r.Method(http.MethodGet, "/", web.Handler())

	r.Route("/api", func(r gochi.Router) {
		r.Post("/rag", s.Ask)
		r.Get("/rag", s.Status)
		r.Get("/rag/search", s.SearchPassages)
		r.Get("/usage", s.GetUsage)
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	return r
}
