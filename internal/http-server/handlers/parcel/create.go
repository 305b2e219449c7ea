package parcel

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"parcelsync/entity"
	"parcelsync/internal/lib/api/response"
	apierrors "parcelsync/internal/lib/errors"
	"parcelsync/internal/lib/sl"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func Create(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.parcel.Create"

		log := logger.With(
			slog.String("op", op),
			slog.String("method", r.Method),
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

		log = log.With(slog.Int64("order_id", orderId))

		result, err := core.CreateParcelManually(r.Context(), orderId)
		if err != nil {
			var apiErr *apierrors.APIError
			switch {
			case errors.Is(err, entity.ErrOrderNotFound):
				apiErr = apierrors.NewNotFoundErrorWithID("Order", strconv.FormatInt(orderId, 10))
			case errors.Is(err, entity.ErrNoOrderStore):
				apiErr = apierrors.NewServiceUnavailableError("shop")
			case errors.Is(err, entity.ErrParcelNotCreated):
				apiErr = apierrors.NewUpstreamError("massar")
			default:
				apiErr = apierrors.NewUpstreamError("shop")
			}
			log.With(sl.Err(err)).Error("manual parcel creation",
				slog.String("error_code", string(apiErr.Code)))
			render.Status(r, apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr).WithRequestID(middleware.GetReqID(r.Context())))
			return
		}

		if result.Created() {
			render.JSON(w, r, response.OkWithMessage(result, "Parcel created successfully"))
			return
		}
		if result.Status == entity.ParcelUnrecorded {
			render.JSON(w, r, response.OkWithMessage(result, "Parcel created but not recorded locally; do not retry"))
			return
		}
		render.JSON(w, r, response.OkWithMessage(result, fmt.Sprintf("Parcel creation skipped: %s", result.Status)))
	}
}
