package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the response for a request whose handler panicked
type PanicHandler func(w http.ResponseWriter, r *http.Request, recovered any)

// Recovery turns a handler panic into an error response
// The panic is logged with the session the route addressed, if any.
func Recovery(logger *slog.Logger, handler PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					// net/http aborts the connection quietly
					panic(recovered)
				}

				attrs := append(requestAttrs(r),
					slog.Any("panic", recovered),
					slog.String("stack", string(debug.Stack())),
				)
				logger.LogAttrs(r.Context(), slog.LevelError, "handler panicked", attrs...)

				handler(w, r, recovered)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
