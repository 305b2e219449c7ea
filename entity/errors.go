package entity

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrNoOrderStore     = errors.New("order store not configured")
	ErrParcelNotCreated = errors.New("parcel not created")
)
