package parcel

import (
	"log/slog"
	"net/http"
	"parcelsync/internal/lib/api/response"
	apierrors "parcelsync/internal/lib/errors"
	"parcelsync/internal/lib/sl"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func Info(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.parcel.Info"

		log := logger.With(
			slog.String("op", op),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
		)

		orderId, err := orderIdParam(r)
		if err != nil {
			apiErr := apierrors.NewBadRequestError("Invalid order ID format")
			log.With(sl.Err(err)).Warn("invalid order id", slog.String("error_code", string(apiErr.Code)))
			render.Status(r, apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr).WithRequestID(middleware.GetReqID(r.Context())))
			return
		}

		record, err := core.GetParcel(r.Context(), orderId)
		if err != nil {
			apiErr := apierrors.NewDatabaseError("GetParcel")
			log.With(sl.Err(err)).Error("get parcel", slog.Int64("order_id", orderId))
			render.Status(r, apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr).WithRequestID(middleware.GetReqID(r.Context())))
			return
		}
		if record == nil {
			apiErr := apierrors.NewNotFoundErrorWithID("Parcel", strconv.FormatInt(orderId, 10))
			render.Status(r, apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr).WithRequestID(middleware.GetReqID(r.Context())))
			return
		}

		render.JSON(w, r, response.Ok(record))
	}
}
