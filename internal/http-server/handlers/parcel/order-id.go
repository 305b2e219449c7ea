package parcel

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func orderIdParam(r *http.Request) (int64, error) {
	idParam := chi.URLParam(r, "id")
	if idParam == "" {
		return 0, fmt.Errorf("order id is empty")
	}
	orderId, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		return 0, err
	}
	if orderId <= 0 {
		return 0, fmt.Errorf("order id must be positive")
	}
	return orderId, nil
}
