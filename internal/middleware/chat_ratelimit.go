package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pochi-app/pochi-web/pkg/clientip"
	"golang.org/x/time/rate"
)

// Chat history rate limit: per-IP, 30 req/min with burst 20. Prevents 429
// storms from rapid session switching while still blocking scrapers.

const (
	chatHistoryRPS        = 0.5 // 30/min
	chatHistoryBurst      = 20
	chatHistoryCleanupMin = 5 * time.Minute
	chatHistoryLimiterTTL = 30 * time.Minute
)

type chatLimiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

var (
	chatHistoryEntries   = make(map[string]*chatLimiterEntry)
	chatHistoryEntriesMu sync.Mutex
	chatHistoryCleanup   bool
)

func getChatHistoryLimiter(ip string) *rate.Limiter {
	chatHistoryEntriesMu.Lock()
	defer chatHistoryEntriesMu.Unlock()
	startChatHistoryCleanupOnce()

	e, ok := chatHistoryEntries[ip]
	if !ok {
		e = &chatLimiterEntry{
			limiter: rate.NewLimiter(rate.Limit(chatHistoryRPS), chatHistoryBurst),
			lastUse: time.Now(),
		}
		chatHistoryEntries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startChatHistoryCleanupOnce() {
	if chatHistoryCleanup {
		return
	}
	chatHistoryCleanup = true
	go func() {
		ticker := time.NewTicker(chatHistoryCleanupMin)
		defer ticker.Stop()
		for range ticker.C {
			chatHistoryEntriesMu.Lock()
			now := time.Now()
			for k, e := range chatHistoryEntries {
				if now.Sub(e.lastUse) > chatHistoryLimiterTTL {
					delete(chatHistoryEntries, k)
				}
			}
			chatHistoryEntriesMu.Unlock()
		}
	}()
}

// ChatHistoryRateLimit applies rate limiting only to GET /api/chat/history.
// Returns 429 with rate-limit headers when exceeded.
func ChatHistoryRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !strings.HasPrefix(r.URL.Path, "/api/chat/history") {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientip.RealClientIP(r)
		if !getChatHistoryLimiter(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(chatHistoryBurst))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many chat history requests. Please slow down."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
