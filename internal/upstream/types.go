package upstream

// FeedbackItem is one public feedback entry as served by the backend.
type FeedbackItem struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Name      string `json:"name"`
	IPAddress string `json:"ip_address,omitempty"`
	Timestamp string `json:"timestamp"` // ISO-8601
}

// Complete reports whether every field the carousel requires is present.
// Items failing this are discarded before display.
func (f FeedbackItem) Complete() bool {
	return f.ID != 0 && f.Text != "" && f.Name != "" && f.Timestamp != ""
}

type feedbackListResponse struct {
	Feedback []FeedbackItem `json:"feedback"`
	Total    int            `json:"total"`
}

// SubmitFeedbackRequest is the public feedback submission payload.
type SubmitFeedbackRequest struct {
	Name     string `json:"name"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Language string `json:"language"`
}

// Announcement is an admin-managed banner. At most 3 exist at a time; the
// create flow enforces that client-side as well.
type Announcement struct {
	ID           int    `json:"id"`
	Title        string `json:"title,omitempty"`
	ImageURL     string `json:"image_url"`
	LinkURL      string `json:"link_url,omitempty"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

type announcementListResponse struct {
	Announcements []Announcement `json:"announcements"`
}

type adminTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// GenerateResult is the answer from the chibi generation endpoint. ImageURL
// is a data URL carrying the rendered PNG.
type GenerateResult struct {
	ImageURL  string `json:"image_url"`
	SessionID string `json:"session_id"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
}

// ChatRequest is a single assistant turn.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Language  string `json:"language,omitempty"`
	Stream    bool   `json:"stream"`
	DeepThink bool   `json:"deep_think,omitempty"`
}

// ChatReply is the assistant's answer for a turn.
type ChatReply struct {
	Response    string `json:"response"`
	SessionID   string `json:"session_id"`
	IsEmergency bool   `json:"is_emergency"`
	Language    string `json:"language"`
	Cached      bool   `json:"cached"`
	AISource    string `json:"ai_source"`
}

// Health is the backend liveness report.
type Health struct {
	Status string `json:"status"`
}
