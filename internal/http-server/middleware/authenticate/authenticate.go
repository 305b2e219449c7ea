package authenticate

import (
	"errors"
	"log/slog"
	"net/http"
	"parcelsync/entity"
	"parcelsync/internal/lib/api/cont"
	"parcelsync/internal/lib/api/response"
	apierrors "parcelsync/internal/lib/errors"
	"parcelsync/internal/lib/sl"
	"parcelsync/internal/lib/util"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const bearerPrefix = "Bearer "

var (
	errNoHeader = errors.New("authorization header not found")
	errNoToken  = errors.New("bearer token not found")
	errNoAuth   = errors.New("authentication not enabled")
	errNoUser   = errors.New("token does not match an operator")
)

type Authenticate interface {
	AuthenticateByToken(token string) (*entity.UserAuth, error)
}

// New checks the bearer token of every request and logs the request once it is served.
func New(log *slog.Logger, auth Authenticate) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")
	log.With(mod).Info("authenticate middleware initialized")

	return func(next http.Handler) http.Handler {

		fn := func(w http.ResponseWriter, r *http.Request) {
			// CORS preflight carries no credentials
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			id := middleware.GetReqID(r.Context())
			logger := log.With(
				mod,
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", util.ExtractIPAddress(r.RemoteAddr, r.Header.Get("X-Forwarded-For"))),
				slog.String("request_id", id),
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			defer func() {
				logger.With(
					slog.Int("status", ww.Status()),
					slog.Int("size", ww.BytesWritten()),
					slog.Float64("duration", time.Since(start).Seconds()),
				).Info("incoming request")
			}()

			user, err := authorize(auth, r.Header.Get("Authorization"))
			if err != nil {
				logger = logger.With(sl.Err(err))
				apiErr := apierrors.NewUnauthorizedError("Unauthorized: " + err.Error())
				render.Status(r, apiErr.HTTPStatus)
				render.JSON(ww, r, response.ErrorFromAPIError(apiErr).WithRequestID(id))
				return
			}
			logger = logger.With(slog.String("user", user.Name))

			ww.Header().Set("X-Request-ID", id)
			ww.Header().Set("X-User", user.Name)
			next.ServeHTTP(ww, r.WithContext(cont.PutUser(r.Context(), user)))
		}

		return http.HandlerFunc(fn)
	}
}

func authorize(auth Authenticate, header string) (*entity.UserAuth, error) {
	if header == "" {
		return nil, errNoHeader
	}
	token, found := strings.CutPrefix(header, bearerPrefix)
	if !found || token == "" {
		return nil, errNoToken
	}
	if auth == nil {
		return nil, errNoAuth
	}
	user, err := auth.AuthenticateByToken(token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNoUser
	}
	return user, nil
}
