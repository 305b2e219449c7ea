package core

import (
	"context"
	"fmt"
	"parcelsync/entity"

	"github.com/shopspring/decimal"
)

// Order is what the reconciler needs to know about a shop order.
type Order interface {
	ID() int64
	Billing() entity.BillingAddress
	Total() decimal.Decimal
	Items() []entity.OrderItem
	AddNote(ctx context.Context, note string) error
}

// NoteWriter appends a note to a shop order.
type NoteWriter interface {
	AddOrderNote(ctx context.Context, orderId int64, note string) error
}

type shopOrder struct {
	order *entity.ShopOrder
	notes NoteWriter
}

// WrapOrder adapts a shop order; notes go to w, or nowhere when w is nil.
func WrapOrder(order *entity.ShopOrder, w NoteWriter) Order {
	return &shopOrder{order: order, notes: w}
}

func (o *shopOrder) ID() int64 {
	return o.order.Id
}

func (o *shopOrder) Billing() entity.BillingAddress {
	return o.order.Billing
}

func (o *shopOrder) Total() decimal.Decimal {
	return o.order.Total
}

func (o *shopOrder) Items() []entity.OrderItem {
	return o.order.LineItems
}

func (o *shopOrder) AddNote(ctx context.Context, note string) error {
	if o.notes == nil {
		return fmt.Errorf("no order store to add note")
	}
	return o.notes.AddOrderNote(ctx, o.order.Id, note)
}
