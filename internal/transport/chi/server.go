package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
	domrank "github.com/kailas-cloud/lexdex/internal/domain/ranking"
	domusage "github.com/kailas-cloud/lexdex/internal/domain/usage"
	logpkg "github.com/kailas-cloud/lexdex/internal/logger"
	"github.com/kailas-cloud/lexdex/internal/usecase/health"
	"github.com/kailas-cloud/lexdex/internal/usecase/ranking"
	"github.com/kailas-cloud/lexdex/internal/version"
)

const (
	defaultSearchLimit = 10
	maxRequestBytes    = 1 << 20
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the lexdex HTTP API.
type Server struct {
	admission      Admitter
	search         Searcher
	catalog        Reloader
	health         HealthReporter
	usage          UsageReporter
	maxSearchLimit int
	logger         *zap.Logger
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server. maxSearchLimit <= 0 leaves
// /v1/search uncapped.
func NewServer(
	admission Admitter,
	search Searcher,
	catalog Reloader,
	health HealthReporter,
	usage UsageReporter,
	maxSearchLimit int,
	logger *zap.Logger,
) *Server {
	s := &Server{
		admission:      admission,
		search:         search,
		catalog:        catalog,
		health:         health,
		usage:          usage,
		maxSearchLimit: maxSearchLimit,
		logger:         logger,
	}
	// ErrLoad wraps its cause, so it must be matched before ErrNotFound.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrPolicyQuotaExceeded, http.StatusTooManyRequests, ErrorCodeQuotaExceeded),
		sentinelHandler(domain.ErrPolicyChannel, http.StatusBadGateway, ErrorCodePolicyChannel),
		sentinelHandler(domain.ErrNotIndexed, http.StatusServiceUnavailable, ErrorCodeNotIndexed),
		sentinelHandler(domain.ErrLoad, http.StatusInternalServerError, ErrorCodeLoadFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrConfiguration, http.StatusInternalServerError, ErrorCodeConfiguration),
	}
	return s
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "question is required")
		return
	}

	d, err := s.admission.Evaluate(r.Context(), req.Question, req.Background)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	logpkg.From(r.Context()).Debug("Question answered",
		zap.Bool("released", d.Released),
		zap.Int("doc_index", d.Selected.DocIndex),
	)
	writeJSON(w, http.StatusOK, AskResponse{
		Answer:   d.Answer,
		Released: d.Released,
		Vendor:   string(s.admission.Vendor()),
		Selected: rankedArticle(d.Selected),
		Criteria: d.Outcomes.Strings(),
	})
}

// Search handles GET /v1/search. Rows come back best match first.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var (
		query string
		limit *int
	)
	if err := runtime.BindQueryParameter("form", true, true, "q", r.URL.Query(), &query); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid query parameter q: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid query parameter limit: "+err.Error())
		return
	}

	n := defaultSearchLimit
	if limit != nil {
		n = *limit
	}
	if n < 1 {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "limit must be positive")
		return
	}
	if s.maxSearchLimit > 0 && n > s.maxSearchLimit {
		n = s.maxSearchLimit
	}

	rows, err := s.search.Search(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	sorted := ranking.Sort(rows, domrank.Similarity)
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	items := make([]RankedArticle, len(sorted))
	for i, row := range sorted {
		items[i] = rankedArticle(row)
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Query: query,
		Items: items,
		Limit: n,
		Total: len(rows),
	})
}

// ReloadIndex handles POST /v1/index/reload.
func (s *Server) ReloadIndex(w http.ResponseWriter, r *http.Request) {
	m, err := s.catalog.Reload(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	resp := ReloadResponse{
		Documents:     m.Documents,
		Vocabulary:    m.Vocabulary,
		Fingerprint:   m.Fingerprint,
		FormatVersion: m.FormatVersion,
		BuiltAt:       m.BuiltAt,
	}
	if info, ok := s.catalog.Info(); ok {
		resp.PublishedAt = info.PublishedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	var raw string
	if err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &raw); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid query parameter period: "+err.Error())
		return
	}
	period, err := domusage.ParsePeriod(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "period must be day, month or total")
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	b := report.Budget()
	resp := UsageResponse{
		Period:     string(report.Period()),
		Channel:    report.Channel(),
		TokensUsed: report.TokensUsed(),
		Budget: BudgetStatus{
			TokensLimit:     b.TokensLimit(),
			TokensRemaining: b.TokensRemaining(),
			IsExhausted:     b.IsExhausted(),
			Utilization:     b.Utilization(),
		},
	}
	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}
	if b.ResetsAt() > 0 {
		resetsAt := time.UnixMilli(b.ResetsAt()).UTC()
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
	if report.Status != health.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	resp := HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	}
	if ix := report.Index; ix != nil {
		resp.Index = &IndexStatus{Articles: ix.Articles, Vocabulary: ix.Vocabulary, Fingerprint: ix.Fingerprint}
	}
	writeJSON(w, httpStatus, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func rankedArticle(row domrank.Row) RankedArticle {
	return RankedArticle{
		DocIndex:     row.DocIndex,
		ArticleTitle: row.ArticleTitle,
		Similarity:   row.Similarity,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel
// error. Only the sentinel text reaches the client.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
