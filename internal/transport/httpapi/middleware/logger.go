package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/chainerr/pkg/logger"
)

// quietPaths are logged at debug level when they succeed
var quietPaths = map[string]bool{
	"/health":      true,
	"/health/live": true,
	"/metrics":     true,
}

type requestLogKey struct{}

// requestLog collects fields set by inner handlers. Only the request
// goroutine touches it.
type requestLog struct {
	subject string
}

// annotateSubject records the authenticated subject for the request log line
func annotateSubject(ctx context.Context, subject string) {
	if rl, ok := ctx.Value(requestLogKey{}).(*requestLog); ok {
		rl.subject = subject
	}
}

// errCapture wraps chi's WrapResponseWriter to capture response body for error status codes.
type errCapture struct {
	chimiddleware.WrapResponseWriter
	buf        bytes.Buffer
	statusCode int
}

func (e *errCapture) WriteHeader(code int) {
	e.statusCode = code
	e.WrapResponseWriter.WriteHeader(code)
}

func (e *errCapture) Write(b []byte) (int, error) {
	if e.statusCode >= 400 {
		e.buf.Write(b)
	}
	return e.WrapResponseWriter.Write(b)
}

// errorBody is the shape of error responses: a message and, for
// application errors, their code
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func parseErrorBody(body []byte) errorBody {
	var out errorBody
	if json.Unmarshal(body, &out) != nil {
		return errorBody{}
	}
	return out
}

// Logger returns a request logging middleware. Each line carries the chi
// route pattern, the request id and, on admin routes, the token subject.
func Logger(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ec := &errCapture{WrapResponseWriter: ww}
			start := time.Now()

			rl := &requestLog{}
			ctx := context.WithValue(r.Context(), requestLogKey{}, rl)
			// Propagate chi's request ID into our typed context key
			if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
				ctx = context.WithValue(ctx, logger.RequestIDKey, reqID)
			}
			r = r.WithContext(ctx)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				attrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", clientIP(r),
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
				}
				if rctx := chi.RouteContext(ctx); rctx != nil {
					if pattern := rctx.RoutePattern(); pattern != "" {
						attrs = append(attrs, "route", pattern)
					}
				}
				if rl.subject != "" {
					attrs = append(attrs, "subject", rl.subject)
				}
				if status >= 400 {
					body := parseErrorBody(ec.buf.Bytes())
					if body.Error != "" {
						attrs = append(attrs, "error", body.Error)
					}
					if body.Code != "" {
						attrs = append(attrs, "code", body.Code)
					}
				}

				log.WithContext(ctx).Log(ctx, levelFor(r.URL.Path, status), "HTTP request", attrs...)
			}()

			next.ServeHTTP(ec, r)
		}
		return http.HandlerFunc(fn)
	}
}

func levelFor(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case quietPaths[path]:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
