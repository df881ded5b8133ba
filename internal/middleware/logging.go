// internal/middleware/logging.go
package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware logs each request's method, path, and duration via Logrus.
// For the websocket endpoint the duration covers the whole connection
// lifetime, since the handler only returns when the socket closes. The
// response writer is deliberately not wrapped: the websocket upgrade needs
// the original http.Hijacker.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := logger.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			})
			start := time.Now()

			next.ServeHTTP(w, r)

			entry.WithField("duration", time.Since(start)).Info("http request")
		})
	}
}
