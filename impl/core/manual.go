package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"parcelsync/entity"
	"parcelsync/internal/lib/region"
)

// CreateParcelManually runs the guarded reconciler for an operator request.
// Skipped results are returned without error.
func (c *Core) CreateParcelManually(ctx context.Context, orderId int64) (*entity.ParcelResult, error) {
	order, err := c.resolveOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}

	c.log.Info("manual parcel creation", slog.Int64("order_id", orderId))

	result := c.CreateParcelForOrder(ctx, order)
	if result.Status == entity.ParcelFailed {
		return result, entity.ErrParcelNotCreated
	}
	return result, nil
}

// TestConnection checks credentials against the delivery API.
func (c *Core) TestConnection(ctx context.Context, login, password string) *entity.ConnectionTest {
	return c.delivery.TestConnection(ctx, login, password)
}

// GetParcel returns nil when the order has no parcel.
func (c *Core) GetParcel(ctx context.Context, orderId int64) (*entity.ParcelRecord, error) {
	return c.repo.GetParcel(ctx, orderId)
}

// ParcelAttempts lists booking attempts, newest first; empty when the audit log is off.
func (c *Core) ParcelAttempts(orderId int64) ([]*entity.ParcelAttempt, error) {
	if c.attempts == nil {
		return nil, nil
	}
	return c.attempts.Attempts(orderId)
}

func (c *Core) Regions() []entity.Region {
	return region.All()
}

func (c *Core) resolveOrder(ctx context.Context, orderId int64) (Order, error) {
	if c.store == nil {
		return nil, entity.ErrNoOrderStore
	}
	order, err := c.store.GetOrder(ctx, orderId)
	if err != nil {
		if errors.Is(err, entity.ErrOrderNotFound) {
			return nil, entity.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, entity.ErrOrderNotFound
	}
	return WrapOrder(order, c.store), nil
}

func (c *Core) noteWriter() NoteWriter {
	if c.store == nil {
		return nil
	}
	return c.store
}
