package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pochi-app/pochi-web/internal/middleware"
)

type LanguageResponse struct {
	Success   bool     `json:"success"`
	Language  string   `json:"language"`
	Supported []string `json:"supported"`
}

// GetLanguage returns the visitor's active locale: their stored choice if
// any, otherwise the best match for their Accept-Language header.
func GetLanguage(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r.Context())

	lang, err := visitorPrefs.Language(r.Context(), visitor)
	if err != nil || lang == "" || !bundle.IsSupported(lang) {
		lang = bundle.Resolve(r.Header.Get("Accept-Language"))
	}
	writeJSON(w, http.StatusOK, LanguageResponse{
		Success:   true,
		Language:  lang,
		Supported: bundle.SupportedList(),
	})
}

type SetLanguageRequest struct {
	Language string `json:"language"`
}

// SetLanguage stores the visitor's locale choice. An unsupported code is
// logged and ignored so a stale client can never corrupt the preference.
func SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req SetLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Language == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "language is required"})
		return
	}

	visitor := middleware.VisitorID(r.Context())
	if !bundle.IsSupported(req.Language) {
		log.Printf("⚠️ ignoring unsupported language %q from visitor %s", req.Language, visitor)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	if err := visitorPrefs.SetLanguage(r.Context(), visitor, req.Language); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Could not save language"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type MessagesResponse struct {
	Success  bool              `json:"success"`
	Language string            `json:"language"`
	Messages map[string]string `json:"messages"`
}

// GetMessages serves the full string table for one locale, fallback keys
// filled in. Unsupported codes answer with the fallback locale.
func GetMessages(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	if !bundle.IsSupported(lang) {
		lang = bundle.Fallback()
	}
	writeJSON(w, http.StatusOK, MessagesResponse{
		Success:  true,
		Language: lang,
		Messages: bundle.Messages(lang),
	})
}
