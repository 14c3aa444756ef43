// Package accesslog logs every HTTP request with its correlation id,
// status, size and duration.
package accesslog

import (
	"context"
	"net/http"
	"time"

	"atm-service/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type key int

// requestIDKey is the context key for the per-request correlation id.
var requestIDKey key

func init() {
	logger.RegisterContextFn(func(ctx context.Context) []interface{} {
		if id, ok := ctx.Value(requestIDKey).(string); ok {
			return []interface{}{"request_id", id}
		}
		return nil
	})
}

// RequestID returns the correlation id assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Handler returns a middleware that assigns each request a uuid
// correlation id and writes one access log entry per request.
func Handler(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := context.WithValue(r.Context(), requestIDKey, uuid.NewString())
			r = r.WithContext(ctx)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.With(ctx,
				"method", r.Method,
				"url", r.URL.String(),
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			).Infof("%s %s %d", r.Method, r.URL.Path, ww.Status())
		}

		return http.HandlerFunc(f)
	}
}
