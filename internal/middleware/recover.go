package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

// Recover is the last-resort net under every handler. A panic logs the
// stack and answers a recovery payload telling the page to offer
// reset / reload / go-home, instead of dropping the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("💥 panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"success":false,"error":"internal","recovery":["reset","reload","home"]}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
