package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pochi-app/pochi-web/internal/middleware"
)

// GetPreview serves a held upload back so the page can render a thumbnail
// without re-uploading. 404 after release or sweep.
func GetPreview(w http.ResponseWriter, r *http.Request) {
	p := previews.Get(chi.URLParam(r, "id"))
	if p == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Preview not found"})
		return
	}
	w.Header().Set("Content-Type", p.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(p.Data)
}

// ReleasePreview frees one preview by handle. Releasing twice is fine; the
// page teardown and the replace flow can both fire.
func ReleasePreview(w http.ResponseWriter, r *http.Request) {
	previews.Release(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ReleaseAvatarSlot clears whatever this visitor's avatar slot holds. Used
// when the upload page unmounts without a handle.
func ReleaseAvatarSlot(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r.Context())
	previews.ReleaseSlot(visitor + "/avatar")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
