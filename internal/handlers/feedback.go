package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pochi-app/pochi-web/internal/feedback"
	"github.com/pochi-app/pochi-web/internal/upstream"
	"github.com/pochi-app/pochi-web/pkg/clientip"
)

// FeedbackEntry is one carousel item as the page renders it.
type FeedbackEntry struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
	IconIndex int    `json:"icon_index"`
}

type GetFeedbackResponse struct {
	Success  bool            `json:"success"`
	Feedback []FeedbackEntry `json:"feedback"`
	Marquee  []FeedbackEntry `json:"marquee"`
	Total    int             `json:"total"`
}

// GetFeedback serves the carousel from the poller's snapshot. No upstream
// round trip happens on this path.
func GetFeedback(w http.ResponseWriter, r *http.Request) {
	items := poller.Items()

	entries := make([]FeedbackEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, toEntry(it))
	}
	marqueeItems := feedback.MarqueeItems(items)
	marquee := make([]FeedbackEntry, 0, len(marqueeItems))
	for _, it := range marqueeItems {
		marquee = append(marquee, toEntry(it))
	}

	writeJSON(w, http.StatusOK, GetFeedbackResponse{
		Success:  true,
		Feedback: entries,
		Marquee:  marquee,
		Total:    len(entries),
	})
}

func toEntry(it upstream.FeedbackItem) FeedbackEntry {
	return FeedbackEntry{
		ID:        it.ID,
		Text:      it.Text,
		Name:      it.Name,
		Timestamp: it.Timestamp,
		IconIndex: feedback.IconIndex(it.Timestamp, feedback.IconCount),
	}
}

// SubmitFeedbackRequest is the public submission payload.
type SubmitFeedbackRequest struct {
	Name     string `json:"name"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Language string `json:"language"`
}

type SubmitFeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SubmitFeedback validates and forwards a feedback submission, then kicks
// the poller so the carousel picks the entry up without waiting a full
// interval.
func SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SubmitFeedbackResponse{Message: "Invalid request body"})
		return
	}

	req.Comment = strings.TrimSpace(req.Comment)
	req.Name = strings.TrimSpace(req.Name)
	if req.Comment == "" {
		writeJSON(w, http.StatusBadRequest, SubmitFeedbackResponse{Message: "Comment is required"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeJSON(w, http.StatusBadRequest, SubmitFeedbackResponse{Message: "Rating must be between 1 and 5"})
		return
	}
	if req.Name == "" {
		req.Name = "Anonymous"
	}

	_, err := backend.SubmitFeedback(r.Context(), upstream.SubmitFeedbackRequest{
		Name:     req.Name,
		Rating:   req.Rating,
		Comment:  req.Comment,
		Language: req.Language,
	}, clientip.RealClientIP(r))
	if err != nil {
		writeUpstreamError(w, "submit feedback", err)
		return
	}

	go poller.Refresh(context.Background())

	writeJSON(w, http.StatusCreated, SubmitFeedbackResponse{
		Success: true,
		Message: "Feedback submitted successfully. Thank you!",
	})
}
