package services

import (
	"context"
	"database/sql"
	"errors"

	"albumshop/internal/apperr"
	"albumshop/internal/metrics"
	"albumshop/internal/pricing"
	"albumshop/internal/repos"
	"albumshop/internal/validate"
)

type CartService struct {
	Carts     *repos.CartRepo
	Albums    *repos.AlbumRepo
	Discounts *repos.DiscountRepo
	Metrics   *metrics.ShopMetrics
	Now       Clock
}

func NewCartService(carts *repos.CartRepo, albums *repos.AlbumRepo, discounts *repos.DiscountRepo, m *metrics.ShopMetrics) *CartService {
	return &CartService{Carts: carts, Albums: albums, Discounts: discounts, Metrics: m}
}

// CartView is the priced content of a cart. Prices are computed at read
// time and are not stored on the cart.
type CartView struct {
	CartID string       `json:"cart_id"`
	Items  []PricedLine `json:"items"`
	pricing.Summary
}

func emptyCart(cartID string) CartView {
	return CartView{CartID: cartID, Items: []PricedLine{}, Summary: pricing.Totals(nil)}
}

// GetCart returns the user's cart. A user without a cart gets an empty view.
func (s *CartService) GetCart(ctx context.Context, userID string) (CartView, error) {
	cartID, err := s.Carts.CartID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return emptyCart(""), nil
	}
	if err != nil {
		return CartView{}, apperr.Transient(err, "load cart")
	}
	lines, err := s.Carts.Lines(ctx, cartID)
	if err != nil {
		return CartView{}, apperr.Transient(err, "load cart lines")
	}
	if len(lines) == 0 {
		return emptyCart(cartID), nil
	}
	items, sum, err := priceCartLines(ctx, s.Discounts, lines, s.Now.now())
	if err != nil {
		return CartView{}, apperr.Transient(err, "price cart")
	}
	return CartView{CartID: cartID, Items: items, Summary: sum}, nil
}

// AddItem adds quantity units of a version, merging with an existing line.
func (s *CartService) AddItem(ctx context.Context, userID, versionID string, quantity int) error {
	if !validate.Quantity(quantity) {
		return apperr.InvalidInput("quantity must be between 1 and 99").
			WithDetails(map[string]string{"quantity": "must be between 1 and 99"})
	}
	if _, err := s.Albums.PricedVersion(ctx, versionID); err != nil {
		return storageErr(err, "album version not found", "load album version")
	}
	cartID, err := s.Carts.EnsureCart(ctx, userID)
	if err != nil {
		return apperr.Transient(err, "ensure cart")
	}
	if err := s.Carts.UpsertItem(ctx, cartID, versionID, quantity); err != nil {
		return apperr.Transient(err, "add cart item")
	}
	s.Metrics.AddCartItems(quantity)
	return nil
}

// RemoveItem deletes a line from the caller's cart. Items in other carts are
// reported exactly like missing ones.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	cartID, err := s.Carts.CartID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return errCartItemNotFound()
	}
	if err != nil {
		return apperr.Transient(err, "load cart")
	}
	removed, err := s.Carts.RemoveItem(ctx, cartID, itemID)
	if err != nil {
		return apperr.Transient(err, "remove cart item")
	}
	if !removed {
		return errCartItemNotFound()
	}
	return nil
}

func errCartItemNotFound() error { return apperr.NotFound("cart item not found") }
