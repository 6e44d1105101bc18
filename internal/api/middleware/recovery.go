package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

// Recovery turns a panic in a handler into a 500 error envelope.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				LoggerFromContext(r.Context()).Error("Panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				w.Header().Set("Connection", "close")
				response.Error(w, errors.InternalError("Internal server error"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
