package chi

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/domain"
	"github.com/kailas-cloud/popchoice/internal/domain/recommendation"
	"github.com/kailas-cloud/popchoice/internal/logger"
	gen "github.com/kailas-cloud/popchoice/internal/transport/generated"
	healthuc "github.com/kailas-cloud/popchoice/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/popchoice/internal/usecase/ingest"
	usageuc "github.com/kailas-cloud/popchoice/internal/usecase/usage"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// Recommender runs the recommendation pipeline.
type Recommender interface {
	RecommendAnswers(ctx context.Context, q1, q2, q3 string) (recommendation.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// UsageReporter reports the provider token budget.
type UsageReporter interface {
	Report(ctx context.Context, period usageuc.Period) usageuc.Report
}

// Ingester embeds and stores a single catalog entry.
type Ingester interface {
	Add(ctx context.Context, content string) (ingestuc.Added, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements generated.ServerInterface for the oapi-codegen chi router.
type Server struct {
	gen.Unimplemented
	recommender   Recommender
	health        HealthChecker
	usage         UsageReporter
	ingester      Ingester
	allowExplain  bool
	validate      *validator.Validate
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ gen.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server. allowExplain gates the explain query parameter.
func NewServer(recommender Recommender, health HealthChecker, allowExplain bool, logger *zap.Logger) *Server {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	s := &Server{
		recommender:  recommender,
		health:       health,
		allowExplain: allowExplain,
		validate:     v,
		logger:       logger,
	}
	// Order matters: budget errors also match ErrUpstream.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, gen.ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrBudgetExceeded, http.StatusTooManyRequests, gen.ErrorResponseCodeBudgetExceeded),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, gen.ErrorResponseCodeUpstreamError),
	}
	return s
}

// WithUsage enables GET /api/usage. Without it the endpoint reports an unlimited budget.
func (s *Server) WithUsage(u UsageReporter) *Server {
	s.usage = u
	return s
}

// WithIngest enables POST /api/embed.
func (s *Server) WithIngest(i Ingester) *Server {
	s.ingester = i
	return s
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, gen.RootResponse{Message: "PopChoice API is running"})
}

// Recommend handles POST /api/recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request, params gen.RecommendParams) {
	var req gen.RecommendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeValidationFailed, validationMessage(err))
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.recommender.RecommendAnswers(ctx, req.Q1, req.Q2, req.Q3)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := gen.RecommendResponse{Content: res.Content, Similarity: res.Similarity}
	if params.Explain != nil && *params.Explain && s.allowExplain {
		matches := make([]gen.Match, len(res.Matches))
		for i, m := range res.Matches {
			matches[i] = gen.Match{Id: m.ID, Content: m.Content, Similarity: m.Similarity}
		}
		resp.Matches = &matches
	}

	writeJSON(w, http.StatusOK, resp)
}

// EmbedContent handles POST /api/embed.
func (s *Server) EmbedContent(w http.ResponseWriter, r *http.Request) {
	if s.ingester == nil {
		s.Unimplemented.EmbedContent(w, r)
		return
	}

	var req gen.EmbedRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeValidationFailed, validationMessage(err))
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	added, err := s.ingester.Add(ctx, req.Content)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, gen.EmbedResponse{Id: added.ID, Tokens: added.Tokens})
}

// GetUsage handles GET /api/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request, params gen.GetUsageParams) {
	var raw string
	if params.Period != nil {
		raw = string(*params.Period)
	}
	period, err := usageuc.ParsePeriod(raw)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	u := s.usage
	if u == nil {
		u = usageuc.New(nil)
	}
	rep := u.Report(r.Context(), period)

	writeJSON(w, http.StatusOK, gen.UsageResponse{
		Period:          gen.UsageResponsePeriod(rep.Period),
		PeriodStart:     rep.Start.UnixMilli(),
		PeriodEnd:       rep.End.UnixMilli(),
		TokensLimit:     rep.Limit,
		TokensUsed:      rep.Used,
		TokensRemaining: rep.Remaining,
		Exhausted:       rep.Exhausted,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]gen.HealthResponseChecks, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = gen.HealthResponseChecks(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, gen.HealthResponse{
		Status: gen.HealthResponseStatus(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.TokenUsage) {
	if n := usage.Embedding(); n > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.FormatInt(n, 10))
	}
	if n := usage.Completion(); n > 0 {
		w.Header().Set("X-Completion-Tokens", strconv.FormatInt(n, 10))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code gen.ErrorResponseCode, message string) {
	writeJSON(w, status, gen.ErrorResponse{Code: code, Message: message})
}

// validationMessage names the first failing field, e.g. "q2 is required".
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		if fe.Tag() == "required" {
			return fe.Field() + " is required"
		}
		return fe.Field() + " is invalid"
	}
	return "invalid request"
}

// safeDomainMessage returns a client-safe message without exposing internals.
// Validation messages are built from caller input only, so they are passed through.
func safeDomainMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		var ue *domain.UpstreamError
		if errors.As(err, &ue) {
			return domain.ErrValidation.Error()
		}
		return err.Error()
	case errors.Is(err, domain.ErrBudgetExceeded):
		return domain.ErrBudgetExceeded.Error()
	case errors.Is(err, domain.ErrUpstream):
		var ue *domain.UpstreamError
		if errors.As(err, &ue) {
			return "upstream " + string(ue.Stage) + " failed"
		}
		return domain.ErrUpstream.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code gen.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			if errors.Is(err, domain.ErrValidation) {
				log.Info("rejected request", zap.Error(err))
			} else {
				log.Error("request failed", zap.Error(err))
			}
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, gen.ErrorResponseCodeInternalError, "internal error")
}
