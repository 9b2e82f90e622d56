package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/conduit-lang/contractabi/internal/web/response"
)

// Recovery turns a handler panic into a 500 JSON response and logs the
// panic value with its stack.
func Recovery(log *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				log.Error("panic recovered",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err),
					zap.ByteString("stack", debug.Stack()),
				)
				response.Error(w, http.StatusInternalServerError, "An unexpected error occurred")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
