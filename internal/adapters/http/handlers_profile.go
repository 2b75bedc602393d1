package httpadapter

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

type profileRequest struct {
	UserID      string                    `json:"user_id" validate:"omitempty,max=128"`
	Preferences domain.ProfilePreferences `json:"preferences"`
}

func (rt *Router) saveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Preferences.CompanySize = strings.ToLower(strings.TrimSpace(req.Preferences.CompanySize))
	if err := rt.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validationErrorMessage(err), Code: "invalid_request"})
		return
	}

	profile, err := rt.svc.Profiles.Save(r.Context(), domain.UserProfile{
		UserID:      req.UserID,
		Preferences: req.Preferences,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (rt *Router) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := rt.svc.Profiles.Get(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (rt *Router) importResume(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	if filename == "" {
		filename = defaultResumeName(r.Header.Get("Content-Type"))
	}

	body := http.MaxBytesReader(w, r.Body, maxResumeBytes)
	profile, err := rt.svc.Profiles.ImportResume(r.Context(), r.PathValue("user_id"), filename, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "resume too large", Code: "invalid_request"})
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func defaultResumeName(contentType string) string {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/pdf":
		return "resume.pdf"
	case "text/plain":
		return "resume.txt"
	default:
		return "resume"
	}
}

func validationErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Namespace()+" failed "+fe.Tag())
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}
