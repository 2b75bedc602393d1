package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kirillkom/job-search-assistant/internal/config"
	"github.com/kirillkom/job-search-assistant/internal/core/ports"
	"github.com/kirillkom/job-search-assistant/internal/observability/metrics"
)

const (
	serviceName       = "api"
	maxJSONBodyBytes  = 1 << 20
	maxResumeBytes    = 10 << 20
	backpressureGrace = 50 * time.Millisecond
)

// Services are the inbound ports the router dispatches to. Reindex may be nil
// when the API runs without a message queue.
type Services struct {
	Search          ports.JobSearchService
	Chat            ports.JobChatService
	Browse          ports.CorpusBrowser
	Profiles        ports.ProfileService
	Reindex         ports.ReindexRequester
	RankingStrategy string
}

type Router struct {
	cfg      config.Config
	svc      Services
	metrics  *metrics.HTTPServerMetrics
	validate *validator.Validate
}

func NewRouter(cfg config.Config, svc Services, httpMetrics *metrics.HTTPServerMetrics) *Router {
	return &Router{
		cfg:      cfg,
		svc:      svc,
		metrics:  httpMetrics,
		validate: validator.New(),
	}
}

func (rt *Router) Handler() (http.Handler, error) {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/search", rt.search)
	api.HandleFunc("POST /v1/agent-chat", rt.agentChat)
	api.HandleFunc("POST /v1/chat", rt.basicChat)
	api.HandleFunc("GET /v1/jobs", rt.browseJobs)
	api.HandleFunc("GET /v1/jobs/export", rt.exportJobs)
	api.HandleFunc("POST /v1/user/profile", rt.saveProfile)
	api.HandleFunc("GET /v1/user/profile/{user_id}", rt.getProfile)
	api.HandleFunc("POST /v1/user/profile/{user_id}/resume", rt.importResume)
	api.HandleFunc("GET /v1/stats", rt.stats)
	api.HandleFunc("POST /v1/corpus/reindex", rt.requestReindex)

	doc, err := LoadOpenAPI()
	if err != nil {
		return nil, err
	}
	validated, err := openAPIValidationMiddleware(doc, api)
	if err != nil {
		return nil, err
	}

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		root.Handle("GET /metrics", rt.metrics.Handler())
	}
	root.Handle("/", validated)

	var onLimited, onShed func()
	if rt.metrics != nil {
		onLimited = func() { rt.metrics.RecordRateLimited(serviceName) }
		onShed = func() { rt.metrics.RecordShed(serviceName) }
	}

	var h http.Handler = root
	h = backpressureWithHook(h, rt.cfg.APIMaxInFlight, backpressureGrace, onShed)
	h = rateLimitMiddleware(h, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, onLimited)
	h = corsMiddleware(rt.cfg.APICORSOrigins, h)
	if rt.metrics != nil {
		h = rt.metrics.Middleware(serviceName, h)
	}
	h = accessLogMiddleware(h)
	h = requestIDMiddleware(h)
	return h, nil
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads a size-capped JSON body into dst and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid json: %v", err), Code: "invalid_request"})
		return false
	}
	return true
}
