package parcel

import (
	"context"
	"parcelsync/entity"
)

type Core interface {
	CreateParcelManually(ctx context.Context, orderId int64) (*entity.ParcelResult, error)
	GetParcel(ctx context.Context, orderId int64) (*entity.ParcelRecord, error)
	TestConnection(ctx context.Context, login, password string) *entity.ConnectionTest
}
