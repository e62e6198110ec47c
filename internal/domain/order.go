package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderCreated   OrderStatus = "created"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderCreated: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderShipped, OrderCancelled},
	OrderShipped: {OrderDelivered, OrderCancelled},
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderCreated, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseOrderStatus(v string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(v)))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown order status %q", v)
	}
	return s, nil
}

type Order struct {
	ID                string          `db:"id" json:"id"`
	UserID            string          `db:"user_id" json:"user_id"`
	TotalAmount       Money           `db:"total_amount" json:"total_amount"`
	Status            OrderStatus     `db:"status" json:"status"`
	ShippingAddressID *string         `db:"shipping_address_id" json:"shipping_address_id,omitempty"`
	CreatedAt         string          `db:"created_at" json:"created_at"`
	PaidAt            *string         `db:"paid_at" json:"paid_at,omitempty"`
	TrackingNumber    *string         `db:"tracking_number" json:"tracking_number,omitempty"`
	UpdatedAt         string          `db:"updated_at" json:"updated_at"`
	Items             []OrderItem     `db:"-" json:"items,omitempty"`
}

// OrderItem is a priced snapshot of a cart line at checkout. None of its
// fields change after the order is written.
type OrderItem struct {
	ID              string          `db:"id" json:"id"`
	OrderID         string          `db:"order_id" json:"-"`
	AlbumVersionID  string          `db:"album_version_id" json:"album_version_id"`
	AlbumTitle      string          `db:"album_title" json:"album_title"`
	VersionName     string          `db:"version_name" json:"version_name"`
	Quantity        int             `db:"quantity" json:"quantity"`
	PricePerUnit    Money           `db:"price_per_unit" json:"price_per_unit"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
}
