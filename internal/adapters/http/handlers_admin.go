package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

type statsResponse struct {
	TotalJobs         int               `json:"total_jobs"`
	TotalUsers        int               `json:"total_users"`
	MaxSummaryResults int               `json:"max_summary_results"`
	RankingStrategy   string            `json:"ranking_strategy"`
	Endpoints         map[string]string `json:"endpoints"`
}

var endpointIndex = map[string]string{
	"search":        "POST /v1/search",
	"agent_chat":    "POST /v1/agent-chat",
	"chat":          "POST /v1/chat",
	"browse":        "GET /v1/jobs",
	"export":        "GET /v1/jobs/export",
	"save_profile":  "POST /v1/user/profile",
	"get_profile":   "GET /v1/user/profile/{user_id}",
	"import_resume": "POST /v1/user/profile/{user_id}/resume",
	"reindex":       "POST /v1/corpus/reindex",
	"stats":         "GET /v1/stats",
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	users, err := rt.svc.Profiles.Count(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalJobs:         rt.svc.Browse.Size(),
		TotalUsers:        users,
		MaxSummaryResults: rt.cfg.SummaryMaxJobs,
		RankingStrategy:   rt.svc.RankingStrategy,
		Endpoints:         endpointIndex,
	})
}

type reindexRequest struct {
	Reason string `json:"reason"`
}

func (rt *Router) requestReindex(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Reindex == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "reindex queue is not configured", Code: "temporarily_unavailable"})
		return
	}

	var req reindexRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json: " + err.Error(), Code: "invalid_request"})
		return
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "manual"
	}
	if err := rt.svc.Reindex.RequestReindex(r.Context(), reason); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "reason": reason})
}
