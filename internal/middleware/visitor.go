package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type visitorCtxKey struct{}

const (
	// VisitorCookie identifies a browser across requests. Everything the
	// old client kept in localStorage is keyed on this id server-side.
	VisitorCookie = "pochi_visitor"

	visitorCookieAge = 180 * 24 * time.Hour
)

// Visitor assigns a stable id cookie to every browser and puts the id on
// the request context.
func Visitor(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(VisitorCookie); err == nil && c.Value != "" {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(visitorCookieAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), visitorCtxKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// VisitorID returns the visitor id from the request context, "" if the
// Visitor middleware did not run.
func VisitorID(ctx context.Context) string {
	id, _ := ctx.Value(visitorCtxKey{}).(string)
	return id
}
