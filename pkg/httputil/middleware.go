package httputil

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/wrldbldr/pkg/observability"
)

// Instrument logs every request and reports it to the HTTP hooks.
// Responses with a 5xx status are also reported through OnError.
func Instrument(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			hooks := observability.HTTP()
			start := time.Now()
			hooks.OnRequest(ctx, r.Method, r.URL.Path)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			dur := time.Since(start)
			hooks.OnResponse(ctx, r.Method, r.URL.Path, status, dur)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", dur,
			}
			if id := middleware.GetReqID(ctx); id != "" {
				fields = append(fields, "request_id", id)
			}
			switch {
			case status >= 500:
				hooks.OnError(ctx, r.Method, r.URL.Path, statusError(status))
				logger.Error("request failed", fields...)
			default:
				logger.Debug("request", fields...)
			}
		})
	}
}

type statusError int

func (e statusError) Error() string { return http.StatusText(int(e)) }
