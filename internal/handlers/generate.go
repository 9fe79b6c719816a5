package handlers

import (
	"io"
	"net/http"

	"github.com/pochi-app/pochi-web/internal/middleware"
	"github.com/pochi-app/pochi-web/internal/upload"
	"github.com/pochi-app/pochi-web/pkg/retryhttp"
)

type GenerateResponse struct {
	Success   bool   `json:"success"`
	ImageURL  string `json:"image_url,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	PreviewID string `json:"preview_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// GenerateChibi accepts a photo, holds it as this visitor's avatar preview
// and forwards it for chibi rendering. Multipart: file (required), session_id,
// style. The render call is never retried; a timeout here means the visitor
// tries again explicitly.
func GenerateChibi(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(upload.MaxFileSize); err != nil {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Message: "Failed to parse form"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Message: "A photo is required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	data, err := io.ReadAll(io.LimitReader(file, upload.MaxFileSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Message: "Could not read the uploaded photo"})
		return
	}

	visitor := middleware.VisitorID(r.Context())
	preview, err := previews.Accept(visitor+"/avatar", header.Filename, contentType, data, &upload.AvatarPolicy)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Message: err.Error()})
		return
	}

	result, err := backend.GenerateChibi(r.Context(), retryhttp.File{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	}, r.FormValue("session_id"), r.FormValue("style"))
	if err != nil {
		writeUpstreamError(w, "generate chibi", err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Success:   true,
		ImageURL:  result.ImageURL,
		SessionID: result.SessionID,
		PreviewID: preview.ID,
	})
}
