// Package handlers implements the gateway's HTTP surface. Handlers stay
// thin: validate, call a service, translate errors into the response
// vocabulary the pages understand.
package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/pochi-app/pochi-web/internal/announce"
	"github.com/pochi-app/pochi-web/internal/avatar"
	"github.com/pochi-app/pochi-web/internal/config"
	"github.com/pochi-app/pochi-web/internal/database"
	"github.com/pochi-app/pochi-web/internal/feedback"
	"github.com/pochi-app/pochi-web/internal/i18n"
	"github.com/pochi-app/pochi-web/internal/prefs"
	"github.com/pochi-app/pochi-web/internal/scheduler"
	"github.com/pochi-app/pochi-web/internal/session"
	"github.com/pochi-app/pochi-web/internal/upload"
	"github.com/pochi-app/pochi-web/internal/upstream"
	"github.com/pochi-app/pochi-web/pkg/retryhttp"
	"github.com/pochi-app/pochi-web/pkg/utils"
)

// Shared services, wired once at startup.
var (
	appConfig    *config.Config
	backend      *upstream.Client
	visitorPrefs *prefs.Prefs
	sessions     *session.Manager
	announcer    *announce.Service
	poller       *feedback.Poller
	bundle       *i18n.Bundle
	previews     *upload.PreviewStore
	shareService *avatar.ShareService
	sched        *scheduler.Scheduler
)

// Init wires every handler dependency. Called once from main before the
// router is built.
func Init(cfg *config.Config, s *scheduler.Scheduler) error {
	appConfig = cfg
	sched = s

	retryCfg := retryhttp.DefaultConfig()
	retryCfg.MaxRetries = cfg.MaxRetries
	retryCfg.RetryDelay = cfg.RetryDelay
	backend = upstream.New(cfg.UpstreamURL, retryCfg)

	b, err := i18n.Load()
	if err != nil {
		return err
	}
	bundle = b

	key, err := sessionKey(cfg.TokenSecret)
	if err != nil {
		return err
	}

	visitorPrefs = prefs.New(prefs.NewRedisStore(database.RedisClient))
	sessions = session.NewManager(backend, visitorPrefs, key)
	announcer = announce.New(visitorPrefs, sched)
	previews = upload.NewPreviewStore()

	poller = feedback.NewPoller(backend.PublicFeedback)
	poller.Start(sched, cfg.FeedbackPollInterval)

	sched.Every("preview-sweep", 10*time.Minute, func(ctx context.Context) {
		if n := previews.Sweep(); n > 0 {
			log.Printf("🧹 swept %d stale previews", n)
		}
	})

	shareService, err = avatar.NewShareService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Printf("⚠️ Cloudinary init failed, avatar sharing disabled: %v", err)
		shareService, _ = avatar.NewShareService("", "", "")
	}
	if shareService.Enabled() {
		log.Println("✅ Avatar sharing enabled")
	}

	return nil
}

// sessionKey derives the admin-token encryption key. With no secret
// configured an ephemeral one is generated, so admin sessions still work;
// they just do not survive a restart.
func sessionKey(secret string) ([]byte, error) {
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		secret = base64.StdEncoding.EncodeToString(buf)
	}
	return utils.DeriveKey(secret)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorResponse is the common failure envelope.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeUpstreamError translates an upstream failure into the user-facing
// vocabulary: decode problems and connectivity problems read differently,
// and neither leaks upstream internals.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	var de *upstream.DecodeError
	if errors.As(err, &de) {
		log.Printf("❌ %s: %v", op, err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: "Could not read server response."})
		return
	}
	var se *upstream.StatusError
	if errors.As(err, &se) {
		log.Printf("❌ %s: upstream status %d", op, se.Code)
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: "The server could not handle the request. Please try again."})
		return
	}
	log.Printf("❌ %s: %v", op, err)
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "Connection problem. Please check your network."})
}
