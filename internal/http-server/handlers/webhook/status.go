package webhook

import (
	"context"
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

// StatusChange accepts the shop's order-status notification. Reconciler
// failures are never reported back; the shop only learns whether the event was valid.
func StatusChange(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.webhook.StatusChange"

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

		var event entity.StatusEvent
		if err = request.DecodeAndValidateData(req, r, &event); err != nil {
			apiErr := apierrors.NewValidationError("Invalid status event")
			log.With(sl.Err(err)).Warn("invalid status event", slog.String("error_code", string(apiErr.Code)))
			render.Status(r, apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr).WithRequestID(middleware.GetReqID(r.Context())))
			return
		}

		// the booking must finish even if the shop drops the connection
		ctx := context.WithoutCancel(r.Context())
		result, acted := core.HandleStatusChange(ctx, &event)
		if !acted {
			render.JSON(w, r, response.OkWithMessage(nil, "Status change ignored"))
			return
		}

		render.JSON(w, r, response.OkWithMessage(result, "Status change processed"))
	}
}
