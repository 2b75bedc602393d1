package httpadapter

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type browseParams struct {
	Page   *int
	Limit  *int
	Search *string
}

type exportParams struct {
	Query        string
	ResultBudget *int
}

func bindBrowseParams(r *http.Request) (browseParams, error) {
	var p browseParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &p.Page); err != nil {
		return p, fmt.Errorf("invalid page: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &p.Limit); err != nil {
		return p, fmt.Errorf("invalid limit: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "search", query, &p.Search); err != nil {
		return p, fmt.Errorf("invalid search: %w", err)
	}
	return p, nil
}

func (rt *Router) browseJobs(w http.ResponseWriter, r *http.Request) {
	params, err := bindBrowseParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: "invalid_request"})
		return
	}

	page, limit, term := 0, 0, ""
	if params.Page != nil {
		page = *params.Page
	}
	if params.Limit != nil {
		limit = *params.Limit
	}
	if params.Search != nil {
		term = *params.Search
	}
	writeJSON(w, http.StatusOK, rt.svc.Browse.Browse(page, limit, term))
}

func (rt *Router) exportJobs(w http.ResponseWriter, r *http.Request) {
	var params exportParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "query", query, &params.Query); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid query: %v", err), Code: "invalid_request"})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "result_budget", query, &params.ResultBudget); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid result_budget: %v", err), Code: "invalid_request"})
		return
	}
	budget := 0
	if params.ResultBudget != nil {
		budget = *params.ResultBudget
	}

	result, err := rt.svc.Search.Search(r.Context(), params.Query, budget)
	if err != nil {
		writeError(w, r, err)
		return
	}

	workbook, err := buildWorkbook(result.Records)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="jobs.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_ = workbook.Write(w)
}
