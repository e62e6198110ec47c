package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout results used as the result label.
const (
	ResultOK         = "ok"
	ResultEmpty      = "empty"
	ResultOutOfStock = "out_of_stock"
	ResultError      = "error"
)

// ShopMetrics records cart and order activity. A nil *ShopMetrics, or one
// built with a nil registerer, records nothing.
type ShopMetrics struct {
	checkouts        *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
	cartItemsAdded   prometheus.Counter
	transitions      *prometheus.CounterVec
}

// New registers the shop collectors on the provided registerer.
func New(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		return &ShopMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "albumshop_checkout_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "albumshop_checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	added := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "albumshop_cart_items_added_total",
		Help: "Units added to carts.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "albumshop_order_transitions_total",
		Help: "Order status transitions by target status.",
	}, []string{"to"})
	reg.MustRegister(checkouts, duration, added, transitions)
	return &ShopMetrics{
		checkouts:        checkouts,
		checkoutDuration: duration,
		cartItemsAdded:   added,
		transitions:      transitions,
	}
}

func (m *ShopMetrics) ObserveCheckout(result string, d time.Duration) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
	m.checkoutDuration.Observe(d.Seconds())
}

func (m *ShopMetrics) AddCartItems(qty int) {
	if m == nil || m.cartItemsAdded == nil || qty <= 0 {
		return
	}
	m.cartItemsAdded.Add(float64(qty))
}

func (m *ShopMetrics) IncTransition(to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
