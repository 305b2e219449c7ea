package region

import (
	"log/slog"
	"net/http"
	"parcelsync/internal/lib/api/response"

	"github.com/go-chi/render"
)

func List(_ *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok(core.Regions()))
	}
}
