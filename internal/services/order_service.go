package services

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"albumshop/internal/apperr"
	"albumshop/internal/domain"
	"albumshop/internal/metrics"
	"albumshop/internal/repos"
)

type OrderService struct {
	DB        *sqlx.DB
	Carts     *repos.CartRepo
	Inv       *repos.InventoryRepo
	Orders    *repos.OrderRepo
	Discounts *repos.DiscountRepo
	Addresses *repos.AddressRepo
	Metrics   *metrics.ShopMetrics
	Now       Clock
}

func NewOrderService(db *sqlx.DB, m *metrics.ShopMetrics) *OrderService {
	return &OrderService{
		DB:        db,
		Carts:     repos.NewCartRepo(db),
		Inv:       repos.NewInventoryRepo(db),
		Orders:    repos.NewOrderRepo(db),
		Discounts: repos.NewDiscountRepo(db),
		Addresses: repos.NewAddressRepo(db),
		Metrics:   m,
	}
}

func errCartEmpty() error { return apperr.InvalidState("cart is empty") }

// Checkout turns the user's cart into an order. Pricing, stock reservation,
// order insertion and cart clearing happen in one transaction; any failure
// leaves the database as it was.
func (s *OrderService) Checkout(ctx context.Context, userID, shippingAddressID string) (domain.Order, error) {
	start := time.Now()
	var order domain.Order

	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		carts := s.Carts.WithTx(tx)
		inv := s.Inv.WithTx(tx)
		orders := s.Orders.WithTx(tx)

		cartID, err := carts.CartID(ctx, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return errCartEmpty()
		}
		if err != nil {
			return err
		}
		if err := carts.Lock(ctx, cartID); err != nil {
			if errors.Is(err, repos.ErrCartChanged) {
				return errCartEmpty()
			}
			return err
		}
		lines, err := carts.Lines(ctx, cartID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return errCartEmpty()
		}

		var shipTo *string
		if id := strings.TrimSpace(shippingAddressID); id != "" {
			if _, err := s.Addresses.WithTx(tx).GetOwned(ctx, userID, id); err != nil {
				return storageErr(err, "address not found", "load address")
			}
			shipTo = &id
		}

		priced, sum, err := priceCartLines(ctx, s.Discounts.WithTx(tx), lines, s.Now.now())
		if err != nil {
			return err
		}

		// Decrement in version order so concurrent checkouts sharing
		// versions take row locks in the same sequence.
		byVersion := slices.Clone(priced)
		slices.SortFunc(byVersion, func(a, b PricedLine) int { return strings.Compare(a.VersionID, b.VersionID) })
		for _, l := range byVersion {
			if err := inv.Decrement(ctx, l.VersionID, l.Quantity); err != nil {
				if errors.Is(err, repos.ErrInsufficientStock) {
					return apperr.New(apperr.KindOutOfStock, "insufficient stock for "+l.AlbumTitle+" ("+l.VersionName+")").
						WithDetails(map[string]any{
							"version_id": l.VersionID,
							"requested":  l.Quantity,
							"available":  l.stockQuantity,
						})
				}
				return err
			}
		}

		ts := s.Now.now().Format(time.RFC3339)
		order = domain.Order{
			ID:                uuid.NewString(),
			UserID:            userID,
			TotalAmount:       sum.Total,
			Status:            domain.OrderCreated,
			ShippingAddressID: shipTo,
			CreatedAt:         ts,
			UpdatedAt:         ts,
		}
		if err := orders.Create(ctx, &order); err != nil {
			return err
		}
		order.Items = make([]domain.OrderItem, 0, len(priced))
		for _, l := range priced {
			item := domain.OrderItem{
				ID:              uuid.NewString(),
				OrderID:         order.ID,
				AlbumVersionID:  l.VersionID,
				AlbumTitle:      l.AlbumTitle,
				VersionName:     l.VersionName,
				Quantity:        l.Quantity,
				PricePerUnit:    l.FinalPrice,
				DiscountPercent: l.DiscountPercent,
			}
			if err := orders.InsertItem(ctx, &item); err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}
		if err := carts.RemoveLines(ctx, cartID, lines); err != nil {
			if errors.Is(err, repos.ErrCartChanged) {
				return apperr.New(apperr.KindConflict, "cart changed during checkout, please retry")
			}
			return err
		}
		return nil
	})

	s.Metrics.ObserveCheckout(checkoutResult(err), time.Since(start))
	if err != nil {
		return domain.Order{}, storageErr(err, "", "checkout")
	}
	return order, nil
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case apperr.Is(err, apperr.KindOutOfStock):
		return metrics.ResultOutOfStock
	case apperr.Is(err, apperr.KindInvalidState):
		return metrics.ResultEmpty
	}
	return metrics.ResultError
}

// UpdateStatus applies an admin status change. Moving to paid stamps
// paid_at, moving to shipped stores the tracking number and cancelling puts
// the reserved units back in stock.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, next domain.OrderStatus, trackingNumber string) (domain.Order, error) {
	if !next.IsValid() {
		return domain.Order{}, apperr.InvalidInput("unknown order status")
	}
	var updated domain.Order
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := s.Orders.WithTx(tx)
		o, err := orders.Get(ctx, orderID)
		if err != nil {
			return storageErr(err, "order not found", "load order")
		}
		from := o.Status
		if !from.CanTransitionTo(next) {
			return apperr.InvalidState("illegal status transition").WithDetails(map[string]any{
				"from": string(from),
				"to":   string(next),
			})
		}

		ts := s.Now.now().Format(time.RFC3339)
		o.Status = next
		o.UpdatedAt = ts
		switch next {
		case domain.OrderPaid:
			o.PaidAt = &ts
		case domain.OrderShipped:
			if tn := strings.TrimSpace(trackingNumber); tn != "" {
				o.TrackingNumber = &tn
			}
		case domain.OrderCancelled:
			inv := s.Inv.WithTx(tx)
			for _, it := range o.Items {
				if err := inv.Restock(ctx, it.AlbumVersionID, it.Quantity); err != nil {
					return err
				}
			}
		}

		ok, err := orders.UpdateStatus(ctx, &o, from)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.KindConflict, "order was modified concurrently")
		}
		updated = o
		return nil
	})
	if err != nil {
		return domain.Order{}, storageErr(err, "", "update order status")
	}
	s.Metrics.IncTransition(string(next))
	return updated, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	out, err := s.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Transient(err, "list orders")
	}
	return out, nil
}

// GetOrder returns one of the user's orders. Orders of other users are
// reported as missing.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, storageErr(err, "order not found", "load order")
	}
	if o.UserID != userID {
		return domain.Order{}, apperr.NotFound("order not found")
	}
	return o, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	out, err := s.Orders.ListLatest(ctx, limit)
	if err != nil {
		return nil, apperr.Transient(err, "list orders")
	}
	return out, nil
}
