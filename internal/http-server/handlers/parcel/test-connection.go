package parcel

import (
	"errors"
	"log/slog"
	"net/http"
	"parcelsync/entity"
	"parcelsync/internal/lib/api/request"
	"parcelsync/internal/lib/api/response"
	apierrors "parcelsync/internal/lib/errors"
	"parcelsync/internal/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func TestConnection(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.parcel.TestConnection"

		log := logger.With(
			slog.String("op", op),
			slog.String("remote_addr", r.RemoteAddr),
		)

		req, err := request.Decode(r)
		if err != nil {
			apiErr := apierrors.NewBadRequestError("Invalid request format")
			if errors.Is(err, request.ErrEmptyBody) {
				apiErr = apierrors.NewBadRequestError("Empty request body")
			}
			log.With(sl.Err(err)).Warn("failed to decode request", slog.String("error_code", string(apiErr.Code)))
			render.Status(r, apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr).WithRequestID(middleware.GetReqID(r.Context())))
			return
		}

		var credentials entity.ConnectionTestRequest
		if err = request.DecodeAndValidateData(req, r, &credentials); err != nil {
			apiErr := apierrors.NewValidationError("Please provide both login and password.")
			log.With(sl.Err(err)).Warn("invalid credentials", slog.String("error_code", string(apiErr.Code)))
			render.Status(r, apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr).WithRequestID(middleware.GetReqID(r.Context())))
			return
		}

		result := core.TestConnection(r.Context(), credentials.Login, credentials.Password)
		log.Info("connection test",
			slog.String("login", credentials.Login),
			slog.Bool("success", result.Success))

		if !result.Success {
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.ErrorWithData(result, result.Message))
			return
		}
		render.JSON(w, r, response.OkWithMessage(result, result.Message))
	}
}
