package entity

import (
	"fmt"
	"net/http"
	"parcelsync/internal/lib/validate"
	"strings"

	"github.com/biter777/countries"
	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending = "pending"
	statusPrefix       = "wc-"
)

// ShopOrder is the order as the shop reports it; read-only for this service.
type ShopOrder struct {
	Id        int64           `json:"id" validate:"required,gt=0"`
	Status    string          `json:"status"`
	Currency  string          `json:"currency"`
	Total     decimal.Decimal `json:"total"`
	Billing   BillingAddress  `json:"billing"`
	LineItems []OrderItem     `json:"line_items" validate:"dive"`
}

type OrderItem struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type BillingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

func (b *BillingAddress) FullName() string {
	return b.FirstName + " " + b.LastName
}

// CountryCode returns the ISO alpha-2 code of the billing country, or "" when unknown.
func (b *BillingAddress) CountryCode() string {
	country := strings.TrimSpace(b.Country)
	if country == "" {
		return ""
	}
	if len(country) == 2 {
		return strings.ToUpper(country)
	}
	code := countries.ByName(country).Alpha2()
	if len(code) == 2 {
		return code
	}
	return ""
}

// NormalizeStatus drops the "wc-" prefix some shop hooks keep on status slugs.
func NormalizeStatus(status string) string {
	return strings.TrimPrefix(strings.TrimSpace(status), statusPrefix)
}

// StatusEvent is the order-status-change notification sent by the shop.
type StatusEvent struct {
	OrderId   int64      `json:"order_id" validate:"required,gt=0"`
	OldStatus string     `json:"old_status"`
	NewStatus string     `json:"new_status" validate:"required"`
	Order     *ShopOrder `json:"order,omitempty"`
}

func (e *StatusEvent) Bind(_ *http.Request) error {
	if err := validate.Struct(e); err != nil {
		return err
	}
	if e.Order != nil && e.Order.Id != e.OrderId {
		return fmt.Errorf("order id mismatch: event %d, order %d", e.OrderId, e.Order.Id)
	}
	return nil
}

// MovedToPending reports a transition from any other status into pending.
func (e *StatusEvent) MovedToPending() bool {
	return NormalizeStatus(e.NewStatus) == OrderStatusPending &&
		NormalizeStatus(e.OldStatus) != OrderStatusPending
}
