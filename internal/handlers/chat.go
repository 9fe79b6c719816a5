package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pochi-app/pochi-web/internal/chat"
	"github.com/pochi-app/pochi-web/internal/models"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 100
)

type ChatHistoryResponse struct {
	Success bool              `json:"success"`
	Turns   []models.ChatTurn `json:"turns"`
	HasMore bool              `json:"has_more"`
}

// ChatHistory pages through a session's stored transcript, oldest first.
// Query: session_id (required), before (RFC3339), limit.
func ChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "session_id is required"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var before *time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "before must be an RFC3339 timestamp"})
			return
		}
		before = &t
	}

	turns, hasMore, err := chat.LoadTranscriptWithCache(r.Context(), sessionID, before, int64(limit))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Could not load chat history"})
		return
	}
	if turns == nil {
		turns = []models.ChatTurn{}
	}
	writeJSON(w, http.StatusOK, ChatHistoryResponse{Success: true, Turns: turns, HasMore: hasMore})
}

type SuggestionsResponse struct {
	Success     bool     `json:"success"`
	Suggestions []string `json:"suggestions"`
}

// ChatSuggestions proposes follow-up questions for the last message.
// Query: message, language.
func ChatSuggestions(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	lang := r.URL.Query().Get("language")
	writeJSON(w, http.StatusOK, SuggestionsResponse{
		Success:     true,
		Suggestions: chat.Suggest(message, lang, 3),
	})
}
