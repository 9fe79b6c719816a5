package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/pochi-app/pochi-web/internal/handlers"
	"github.com/pochi-app/pochi-web/internal/middleware"
)

func SetupRoutes(r *chi.Mux) {
	// Language / i18n routes
	r.Get("/api/language", handlers.GetLanguage)
	r.Post("/api/language", handlers.SetLanguage)
	r.Get("/api/i18n/{lang}", handlers.GetMessages)

	// Feedback routes
	r.Get("/api/feedback", handlers.GetFeedback)
	r.Post("/api/feedback", handlers.SubmitFeedback)

	// Announcement routes
	r.Get("/api/announcements", handlers.GetActiveAnnouncements)
	r.Post("/api/announcements/dismiss", handlers.DismissAnnouncements)

	// Avatar generation and preview routes (Redis-backed rate limit on the
	// expensive upload path)
	r.With(middleware.RateLimitMiddleware).Post("/api/generate/chibi", handlers.GenerateChibi)
	r.Get("/api/preview/{id}", handlers.GetPreview)
	r.Delete("/api/preview/{id}", handlers.ReleasePreview)
	r.Delete("/api/preview", handlers.ReleaseAvatarSlot)
	r.Post("/api/avatar/share", handlers.ShareAvatar)

	// Chat routes
	r.With(middleware.ChatHistoryRateLimit).Get("/api/chat/history", handlers.ChatHistory)
	r.Get("/api/chat/suggestions", handlers.ChatSuggestions)

	// WebSocket endpoint for the assistant conversation
	r.Get("/ws/chat", handlers.ChatWebSocket)

	// Admin routes
	r.Post("/api/admin/login", handlers.AdminLogin)
	r.Post("/api/admin/logout", handlers.AdminLogout)
	r.Get("/api/admin/session", handlers.AdminSession)
	r.Get("/api/admin/feedback", handlers.AdminFeedback)
	r.Delete("/api/admin/feedback/{id}", handlers.AdminDeleteFeedback)
	r.Get("/api/admin/announcements", handlers.GetAllAnnouncements)
	r.Post("/api/admin/announcements", handlers.CreateAnnouncement)
	r.Put("/api/admin/announcements/{id}", handlers.UpdateAnnouncement)
	r.Delete("/api/admin/announcements/{id}", handlers.DeleteAnnouncement)
	r.Get("/api/admin/audit", handlers.AdminAudit)
}
