package core

import (
	"context"
	"log/slog"
	"parcelsync/entity"
	"parcelsync/internal/lib/sl"
)

// HandleStatusChange runs the reconciler when an order moves into pending.
// The bool reports whether the event was acted upon.
func (c *Core) HandleStatusChange(ctx context.Context, event *entity.StatusEvent) (*entity.ParcelResult, bool) {
	log := c.log.With(
		slog.Int64("order_id", event.OrderId),
		slog.String("old_status", event.OldStatus),
		slog.String("new_status", event.NewStatus),
	)

	if !event.MovedToPending() {
		log.Debug("status change ignored")
		return nil, false
	}

	var order Order
	if event.Order != nil {
		order = WrapOrder(event.Order, c.noteWriter())
	} else {
		var err error
		order, err = c.resolveOrder(ctx, event.OrderId)
		if err != nil {
			log.With(sl.Err(err)).Error("resolve order")
			return &entity.ParcelResult{
				OrderId: event.OrderId,
				Status:  entity.ParcelFailed,
			}, true
		}
	}

	log.Debug("order moved to pending")
	return c.CreateParcelForOrder(ctx, order), true
}
