package services

import (
	"context"

	"albumshop/internal/apperr"
	"albumshop/internal/domain"
	"albumshop/internal/repos"
)

// lowStockThreshold is the quantity below which a version reports LOW_STOCK.
const lowStockThreshold = 5

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

// CheckAvailability converts qty to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(ctx context.Context, versionID string) (domain.Availability, error) {
	qty, err := s.Inv.Qty(ctx, versionID)
	if err != nil {
		return domain.Availability{}, storageErr(err, "album version not found", "load stock")
	}

	status := "OUT_OF_STOCK"
	switch {
	case qty >= lowStockThreshold:
		status = "IN_STOCK"
	case qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: qty}, nil
}

func (s *InventoryService) SetStock(ctx context.Context, versionID string, qty int) error {
	if qty < 0 {
		return apperr.InvalidInput("stock_quantity must not be negative")
	}
	ok, err := s.Inv.SetQty(ctx, versionID, qty)
	if err != nil {
		return apperr.Transient(err, "set stock")
	}
	if !ok {
		return apperr.NotFound("album version not found")
	}
	return nil
}

func (s *InventoryService) ListAll(ctx context.Context) ([]repos.InventoryRow, error) {
	rows, err := s.Inv.ListAll(ctx)
	if err != nil {
		return nil, apperr.Transient(err, "list stock")
	}
	return rows, nil
}
