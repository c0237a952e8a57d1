package httputil

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdkit/libmerge/pkg/observability"
)

// RequestLogger returns middleware that logs one line per request and
// feeds the server observability hooks. It pairs with chi's RequestID
// middleware: when a request ID is present it is included in the line.
func RequestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hooks := observability.Server()
			start := time.Now()
			hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", duration,
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
