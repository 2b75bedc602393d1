package httpadapter

import (
	"net/http"
	"strings"

	"github.com/kirillkom/job-search-assistant/internal/core/ports"
)

type searchRequest struct {
	Query        string `json:"query"`
	ResultBudget int    `json:"result_budget"`
}

type agentChatRequest struct {
	Message      string `json:"message"`
	UserID       string `json:"user_id"`
	UserMemory   string `json:"user_memory"`
	UseSummary   *bool  `json:"use_summary"`
	ResultBudget int    `json:"result_budget"`
}

type chatRequest struct {
	Message    string `json:"message"`
	UserID     string `json:"user_id"`
	UserMemory string `json:"user_memory"`
	ReturnAll  bool   `json:"return_all"`
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "query is required", Code: "invalid_request"})
		return
	}

	result, err := rt.svc.Search.Search(r.Context(), req.Query, req.ResultBudget)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) agentChat(w http.ResponseWriter, r *http.Request) {
	var req agentChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	useSummary := true
	if req.UseSummary != nil {
		useSummary = *req.UseSummary
	}

	summary, err := rt.svc.Chat.AgentChat(r.Context(), ports.AgentChatRequest{
		Message:      req.Message,
		UserID:       req.UserID,
		UserMemory:   req.UserMemory,
		UseSummary:   useSummary,
		ResultBudget: req.ResultBudget,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (rt *Router) basicChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := rt.svc.Chat.BasicChat(r.Context(), ports.BasicChatRequest{
		Message:    req.Message,
		UserID:     req.UserID,
		UserMemory: req.UserMemory,
		ReturnAll:  req.ReturnAll,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
