package webhook

import (
	"context"
	"parcelsync/entity"
)

type Core interface {
	HandleStatusChange(ctx context.Context, event *entity.StatusEvent) (*entity.ParcelResult, bool)
}
