package agentd

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tailored-agentic-units/supportchat/observability"
)

// maxBodySize rejects declared oversize bodies and caps the rest.
func maxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger emits one EventRequest per completed request.
func requestLogger(o observability.Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				level := observability.LevelInfo
				if status >= 500 {
					level = observability.LevelError
				}
				observability.Emit(r.Context(), o, EventRequest, level, "agentd.http",
					map[string]any{
						"method":      r.Method,
						"path":        r.URL.Path,
						"status":      status,
						"duration_ms": time.Since(start).Milliseconds(),
						"request_id":  chimw.GetReqID(r.Context()),
						"remote_addr": r.RemoteAddr,
					})
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
