package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// SetChain wraps a handler with middlewares, outermost first.
func SetChain(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	return handler
}

// SetRouteChain wraps a route handler with per-route middlewares, outermost
// first.
func SetRouteChain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	return handler
}

// HTTPResponseTraceInjection copies the active trace id onto the response so
// clients can reference it in support tickets.
func HTTPResponseTraceInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		if span.SpanContext().HasTraceID() {
			w.Header().Set("X-Trace-Id", span.SpanContext().TraceID().String())
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(statusCode int) {
	rec.statusCode = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}

type HTTPRequestLogger struct {
	logger         *logrus.Logger
	debug          bool
	errorThreshold int
}

func NewHTTPRequestLogger(logger *logrus.Logger, debug bool, errorThreshold int) *HTTPRequestLogger {
	return &HTTPRequestLogger{
		logger:         logger,
		debug:          debug,
		errorThreshold: errorThreshold,
	}
}

func (l *HTTPRequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		entry := l.logger.WithContext(r.Context()).WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.statusCode,
			"duration": time.Since(start).String(),
		})

		switch {
		case rec.statusCode >= l.errorThreshold:
			entry.Error()
		case l.debug:
			entry.Debug()
		default:
			entry.Info()
		}
	})
}
