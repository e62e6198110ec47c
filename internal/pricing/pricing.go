// Package pricing computes what a customer pays for an album version.
//
// Everything here is a pure function of its inputs. Callers pass the clock
// value explicitly so a quote is reproducible in tests and inside a checkout
// transaction.
package pricing

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"albumshop/internal/domain"
)

// DateLayout is the storage format of discount start and end dates.
const DateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// Discount is the pricing view of a discount linked to an album.
type Discount struct {
	ID        string
	Name      string
	Percent   decimal.Decimal
	StartDate time.Time
	EndDate   time.Time
	Active    bool
}

// ParseDate reads a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AppliesOn reports whether the discount is active and now falls inside
// [StartDate, EndDate], both ends inclusive, compared as UTC calendar days.
func (d Discount) AppliesOn(now time.Time) bool {
	if !d.Active {
		return false
	}
	if d.Percent.IsNegative() || d.Percent.GreaterThan(hundred) {
		return false
	}
	today := Day(now)
	return !today.Before(Day(d.StartDate)) && !today.After(Day(d.EndDate))
}

// Best picks the applicable discount with the highest percent. Equal
// percents resolve to the smallest id so the choice never depends on
// query order.
func Best(discounts []Discount, now time.Time) (Discount, bool) {
	candidates := make([]Discount, 0, len(discounts))
	for _, d := range discounts {
		if d.AppliesOn(now) {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return Discount{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if c := candidates[i].Percent.Cmp(candidates[j].Percent); c != 0 {
			return c > 0
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0], true
}

// Quote is the price of one unit of an album version at a point in time.
type Quote struct {
	BasePrice       domain.Money    `json:"base_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	FinalPrice      domain.Money    `json:"final_price"`
	DiscountID      string          `json:"discount_id,omitempty"`
}

// Apply reduces base by percent and rounds half away from zero to cents.
func Apply(base, percent decimal.Decimal) decimal.Decimal {
	return base.Mul(hundred.Sub(percent)).Div(hundred).Round(2)
}

// Price quotes albumBase+priceDiff with the best discount applicable at now.
func Price(albumBase, priceDiff decimal.Decimal, discounts []Discount, now time.Time) Quote {
	base := albumBase.Add(priceDiff).Round(2)
	q := Quote{BasePrice: domain.NewMoney(base), DiscountPercent: decimal.Zero, FinalPrice: domain.NewMoney(base)}
	if d, ok := Best(discounts, now); ok {
		q.DiscountPercent = d.Percent
		q.DiscountID = d.ID
		q.FinalPrice = domain.NewMoney(Apply(base, d.Percent))
	}
	return q
}

// Line is a quoted unit price multiplied by a quantity.
type Line struct {
	Quote
	Quantity int
}

type Summary struct {
	Subtotal      domain.Money `json:"subtotal"`
	DiscountTotal domain.Money `json:"discount_total"`
	Total         domain.Money `json:"total"`
}

// Totals sums base and final prices over lines. DiscountTotal is the
// difference between the two sums.
func Totals(lines []Line) Summary {
	subtotal := decimal.Zero
	total := decimal.Zero
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		subtotal = subtotal.Add(l.BasePrice.Mul(qty))
		total = total.Add(l.FinalPrice.Mul(qty))
	}
	return Summary{
		Subtotal:      domain.NewMoney(subtotal),
		DiscountTotal: domain.NewMoney(subtotal.Sub(total)),
		Total:         domain.NewMoney(total),
	}
}
