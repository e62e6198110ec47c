package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"albumshop/internal/apperr"
	"albumshop/internal/domain"
	"albumshop/internal/pricing"
	"albumshop/internal/repos"
)

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// toPricing converts a stored discount. Rows with unreadable dates never
// apply.
func toPricing(d domain.Discount) (pricing.Discount, bool) {
	start, err := pricing.ParseDate(d.StartDate)
	if err != nil {
		return pricing.Discount{}, false
	}
	end, err := pricing.ParseDate(d.EndDate)
	if err != nil {
		return pricing.Discount{}, false
	}
	return pricing.Discount{
		ID:        d.ID,
		Name:      d.Name,
		Percent:   d.Percent,
		StartDate: start,
		EndDate:   end,
		Active:    d.IsActive,
	}, true
}

// discountsByAlbum loads the discounts linked to each album in one query.
func discountsByAlbum(ctx context.Context, repo *repos.DiscountRepo, albumIDs []string) (map[string][]pricing.Discount, error) {
	rows, err := repo.ForAlbums(ctx, uniq(albumIDs))
	if err != nil {
		return nil, err
	}
	out := make(map[string][]pricing.Discount, len(albumIDs))
	for _, r := range rows {
		if d, ok := toPricing(r.Discount); ok {
			out[r.AlbumID] = append(out[r.AlbumID], d)
		}
	}
	return out, nil
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// PricedLine is a cart line with its unit quote and line total.
type PricedLine struct {
	ItemID       string `json:"item_id"`
	VersionID    string `json:"version_id"`
	AlbumID      string `json:"album_id"`
	AlbumTitle   string `json:"album_title"`
	VersionName  string `json:"version_name"`
	MainImageURL string `json:"main_image_url,omitempty"`
	Quantity     int    `json:"quantity"`
	pricing.Quote
	LineTotal     domain.Money `json:"line_total"`
	stockQuantity int
}

// priceCartLines quotes every line at now.
func priceCartLines(ctx context.Context, discounts *repos.DiscountRepo, lines []repos.CartLine, now time.Time) ([]PricedLine, pricing.Summary, error) {
	albumIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		albumIDs = append(albumIDs, l.AlbumID)
	}
	byAlbum, err := discountsByAlbum(ctx, discounts, albumIDs)
	if err != nil {
		return nil, pricing.Summary{}, err
	}

	out := make([]PricedLine, 0, len(lines))
	sums := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		q := pricing.Price(l.BasePrice, l.PriceDiff, byAlbum[l.AlbumID], now)
		out = append(out, PricedLine{
			ItemID:        l.ItemID,
			VersionID:     l.VersionID,
			AlbumID:       l.AlbumID,
			AlbumTitle:    l.AlbumTitle,
			VersionName:   l.VersionName,
			MainImageURL:  l.MainImageURL,
			Quantity:      l.Quantity,
			Quote:         q,
			LineTotal:     domain.NewMoney(q.FinalPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))),
			stockQuantity: l.StockQuantity,
		})
		sums = append(sums, pricing.Line{Quote: q, Quantity: l.Quantity})
	}
	return out, pricing.Totals(sums), nil
}

// storageErr classifies a repository error: missing rows become NotFound
// with msg, anything else is Transient. Typed errors pass through.
func storageErr(err error, notFoundMsg, op string) error {
	if err == nil {
		return nil
	}
	if apperr.As(err) != nil {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) && notFoundMsg != "" {
		return apperr.NotFound(notFoundMsg)
	}
	return apperr.Transient(err, op)
}
