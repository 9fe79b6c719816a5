package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pochi-app/pochi-web/internal/avatar"
)

type ShareAvatarRequest struct {
	ImageURL  string `json:"image_url"`
	SessionID string `json:"session_id"`
}

type ShareAvatarResponse struct {
	Success  bool   `json:"success"`
	ShareURL string `json:"share_url,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ShareAvatar publishes a generated chibi to Cloudinary and returns a
// stable link, so sharing never moves the multi-megabyte data URL around.
func ShareAvatar(w http.ResponseWriter, r *http.Request) {
	var req ShareAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageURL == "" || req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, ShareAvatarResponse{Message: "image_url and session_id are required"})
		return
	}

	url, err := shareService.Publish(r.Context(), req.ImageURL, req.SessionID)
	if err != nil {
		if errors.Is(err, avatar.ErrNotConfigured) {
			writeJSON(w, http.StatusServiceUnavailable, ShareAvatarResponse{Message: "Sharing is not available right now"})
			return
		}
		writeJSON(w, http.StatusBadGateway, ShareAvatarResponse{Message: "Could not publish the avatar"})
		return
	}

	writeJSON(w, http.StatusOK, ShareAvatarResponse{Success: true, ShareURL: url})
}
