package timeout

import (
	"context"
	"errors"
	"net/http"
	"parcelsync/internal/lib/api/response"
	apierrors "parcelsync/internal/lib/errors"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Timeout cancels the request context after the given number of seconds and
// answers 504 when the handler gave up without writing a response.
func Timeout(seconds int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if seconds <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), time.Duration(seconds)*time.Second)
			defer cancel()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) && ww.Status() == 0 {
				render.Status(r, http.StatusGatewayTimeout)
				render.JSON(w, r, response.ErrorFromAPIError(apierrors.NewTimeoutError(r.URL.Path)))
			}
		}
		return http.HandlerFunc(fn)
	}
}
