package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pochi-app/pochi-web/internal/announce"
	"github.com/pochi-app/pochi-web/internal/audit"
	"github.com/pochi-app/pochi-web/internal/middleware"
	"github.com/pochi-app/pochi-web/internal/upload"
	"github.com/pochi-app/pochi-web/internal/upstream"
	"github.com/pochi-app/pochi-web/pkg/clientip"
	"github.com/pochi-app/pochi-web/pkg/retryhttp"
)

type AnnouncementsResponse struct {
	Success       bool                    `json:"success"`
	Announcements []upstream.Announcement `json:"announcements"`
}

// GetActiveAnnouncements returns what this visitor should currently see:
// the upstream active list minus their dismissed set.
func GetActiveAnnouncements(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.VisitorID(r.Context())

	all, err := backend.ActiveAnnouncements(r.Context())
	if err != nil {
		writeUpstreamError(w, "fetch announcements", err)
		return
	}

	visible, err := announcer.Visible(r.Context(), visitor, all)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Could not load announcements"})
		return
	}
	if visible == nil {
		visible = []upstream.Announcement{}
	}
	writeJSON(w, http.StatusOK, AnnouncementsResponse{Success: true, Announcements: visible})
}

type DismissRequest struct {
	IDs []int `json:"ids"`
}

// DismissAnnouncements records the given ids as closed for this visitor.
func DismissAnnouncements(w http.ResponseWriter, r *http.Request) {
	var req DismissRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "ids are required"})
		return
	}

	visitor := middleware.VisitorID(r.Context())
	if err := announcer.Dismiss(r.Context(), visitor, req.IDs...); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Could not save dismissal"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetAllAnnouncements lists every announcement for the admin console.
func GetAllAnnouncements(w http.ResponseWriter, r *http.Request) {
	token, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	all, err := backend.AllAnnouncements(r.Context(), token)
	if err != nil {
		writeAdminError(w, r, "list announcements", err)
		return
	}
	if all == nil {
		all = []upstream.Announcement{}
	}
	writeJSON(w, http.StatusOK, AnnouncementsResponse{Success: true, Announcements: all})
}

// maxLiveAnnouncements mirrors the creation-time cap the admin console
// enforces. The backend is not trusted to enforce it, so the gateway does,
// and announce.MaxVisible clamps the visitor-facing list as a backstop.
const maxLiveAnnouncements = announce.MaxVisible

// CreateAnnouncement uploads a new banner. Multipart: image (required),
// title, link_url, display_order.
func CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	token, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(upload.MaxFileSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Failed to parse form"})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Image is required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := upload.AvatarPolicy.Check(contentType, header.Size); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, upload.MaxFileSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Could not read image"})
		return
	}

	existing, err := backend.AllAnnouncements(r.Context(), token)
	if err == nil {
		live := 0
		for _, a := range existing {
			if a.IsActive {
				live++
			}
		}
		if live >= maxLiveAnnouncements {
			writeJSON(w, http.StatusConflict, errorResponse{Message: "At most 3 announcements can be active"})
			return
		}
	}

	order, _ := strconv.Atoi(r.FormValue("display_order"))
	created, err := backend.CreateAnnouncement(r.Context(), token, upstream.CreateAnnouncementParams{
		Title:        r.FormValue("title"),
		LinkURL:      r.FormValue("link_url"),
		DisplayOrder: order,
		Image: retryhttp.File{
			Name:        header.Filename,
			ContentType: contentType,
			Data:        data,
		},
	})
	if err != nil {
		writeAdminError(w, r, "create announcement", err)
		return
	}

	audit.Record(r.Context(), audit.ActionCreateAnnouncement, r.FormValue("title"), "", clientip.RealClientIP(r))
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "announcement": created})
}

// UpdateAnnouncement changes fields and/or the image of one announcement.
func UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	token, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid announcement id"})
		return
	}

	if err := r.ParseMultipartForm(upload.MaxFileSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Failed to parse form"})
		return
	}

	var params upstream.UpdateAnnouncementParams
	if v := r.FormValue("title"); r.Form.Has("title") {
		params.Title = &v
	}
	if v := r.FormValue("link_url"); r.Form.Has("link_url") {
		params.LinkURL = &v
	}
	if r.Form.Has("display_order") {
		if n, err := strconv.Atoi(r.FormValue("display_order")); err == nil {
			params.DisplayOrder = &n
		}
	}
	if r.Form.Has("is_active") {
		active := r.FormValue("is_active") == "true"
		params.IsActive = &active
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		contentType := header.Header.Get("Content-Type")
		if err := upload.AvatarPolicy.Check(contentType, header.Size); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, upload.MaxFileSize+1))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Could not read image"})
			return
		}
		params.Image = &retryhttp.File{
			Name:        header.Filename,
			ContentType: contentType,
			Data:        data,
		}
	}

	if err := backend.UpdateAnnouncement(r.Context(), token, id, params); err != nil {
		writeAdminError(w, r, "update announcement", err)
		return
	}

	audit.Record(r.Context(), audit.ActionUpdateAnnouncement, strconv.Itoa(id), "", clientip.RealClientIP(r))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteAnnouncement removes one announcement.
func DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	token, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid announcement id"})
		return
	}

	if err := backend.DeleteAnnouncement(r.Context(), token, id); err != nil {
		writeAdminError(w, r, "delete announcement", err)
		return
	}

	audit.Record(r.Context(), audit.ActionDeleteAnnouncement, strconv.Itoa(id), "", clientip.RealClientIP(r))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
