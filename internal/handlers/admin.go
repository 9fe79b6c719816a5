package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pochi-app/pochi-web/internal/audit"
	"github.com/pochi-app/pochi-web/internal/middleware"
	"github.com/pochi-app/pochi-web/internal/session"
	"github.com/pochi-app/pochi-web/internal/upstream"
	"github.com/pochi-app/pochi-web/pkg/clientip"
)

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// AdminLogin exchanges a password for an admin session bound to this
// visitor. Every failure reads the same; nothing distinguishes a wrong
// password from a dead backend.
func AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, AdminLoginResponse{Message: "Password is required"})
		return
	}

	visitor := middleware.VisitorID(r.Context())
	if err := sessions.Login(r.Context(), visitor, req.Password); err != nil {
		writeJSON(w, http.StatusUnauthorized, AdminLoginResponse{Message: "Invalid credentials"})
		return
	}

	audit.Record(r.Context(), audit.ActionLogin, visitor, "", clientip.RealClientIP(r))
	writeJSON(w, http.StatusOK, AdminLoginResponse{Success: true})
}

// AdminLogout ends the session. Always succeeds client-side.
func AdminLogout(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r.Context())
	if err := sessions.Logout(r.Context(), visitor); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Could not clear session"})
		return
	}
	audit.Record(r.Context(), audit.ActionLogout, visitor, "", clientip.RealClientIP(r))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type AdminSessionResponse struct {
	Success  bool `json:"success"`
	LoggedIn bool `json:"logged_in"`
}

// AdminSession reports whether this visitor currently holds a session. The
// admin page calls it on mount instead of clearing the token.
func AdminSession(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r.Context())
	writeJSON(w, http.StatusOK, AdminSessionResponse{
		Success:  true,
		LoggedIn: sessions.LoggedIn(r.Context(), visitor),
	})
}

// requireAdmin resolves the caller's admin token or answers 401.
func requireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	visitor := middleware.VisitorID(r.Context())
	token, err := sessions.Token(r.Context(), visitor)
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Not logged in"})
		} else {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Could not read session"})
		}
		return "", false
	}
	return token, true
}

// writeAdminError handles failures of authenticated upstream calls. A
// 401/403 from the backend invalidates the stored session and tells the
// page to log in again; other errors keep their specific messages.
func writeAdminError(w http.ResponseWriter, r *http.Request, op string, err error) {
	visitor := middleware.VisitorID(r.Context())
	if sessions.ExpiredAuth(r.Context(), visitor, err) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Session expired, please log in again"})
		return
	}
	writeUpstreamError(w, op, err)
}

type AdminFeedbackResponse struct {
	Success  bool                    `json:"success"`
	Feedback []upstream.FeedbackItem `json:"feedback"`
	Total    int                     `json:"total"`
}

// AdminFeedback lists all feedback including IP addresses for moderation.
func AdminFeedback(w http.ResponseWriter, r *http.Request) {
	token, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	items, err := backend.AdminFeedback(r.Context(), token)
	if err != nil {
		writeAdminError(w, r, "list admin feedback", err)
		return
	}
	if items == nil {
		items = []upstream.FeedbackItem{}
	}
	writeJSON(w, http.StatusOK, AdminFeedbackResponse{Success: true, Feedback: items, Total: len(items)})
}

// AdminDeleteFeedback removes one feedback entry.
func AdminDeleteFeedback(w http.ResponseWriter, r *http.Request) {
	token, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid feedback id"})
		return
	}

	if err := backend.DeleteFeedback(r.Context(), token, id); err != nil {
		writeAdminError(w, r, "delete feedback", err)
		return
	}

	audit.Record(r.Context(), audit.ActionDeleteFeedback, strconv.Itoa(id), "", clientip.RealClientIP(r))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type AdminAuditResponse struct {
	Success bool          `json:"success"`
	Entries []audit.Entry `json:"entries"`
}

// AdminAudit lists recent moderation actions. Empty when Postgres is not
// configured.
func AdminAudit(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := audit.List(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Could not load audit log"})
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, AdminAuditResponse{Success: true, Entries: entries})
}
