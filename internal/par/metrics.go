package par

import (
	"sort"
	"time"

	"github.com/storeops/reporting-backend/internal/domain"
)

// RateBasis selects the divisor for the daily usage rate.
type RateBasis string

const (
	// RateBasisWindow divides total quantity by the requested window
	// length. This is the canonical behavior.
	RateBasisWindow RateBasis = "window"

	// RateBasisSpan divides by the observed first-to-last transaction span
	// instead, floored at one day. Kept for comparison with older reports
	// that used this divisor.
	RateBasisSpan RateBasis = "span"
)

type metricKey struct {
	storeID string
	itemID  string
}

// CalculateUsageMetrics aggregates transactions inside the half-open
// window [start, end) per (store, item): quantity totals, transaction
// count, first/last dates and the daily usage rate. Transactions are
// sorted by effective date before grouping so the "last seen" item name
// and category are deterministic regardless of upstream row order. An
// empty window yields an empty slice.
func CalculateUsageMetrics(txs []domain.Transaction, start, end time.Time, windowDays int, basis RateBasis) []domain.UsageMetric {
	start = Midnight(start)
	end = Midnight(end)

	inWindow := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.EffectiveDate.Before(start) || !tx.EffectiveDate.Before(end) {
			continue
		}
		inWindow = append(inWindow, tx)
	}
	if len(inWindow) == 0 {
		return []domain.UsageMetric{}
	}

	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].EffectiveDate.Before(inWindow[j].EffectiveDate)
	})

	groups := make(map[metricKey]*domain.UsageMetric)
	order := make([]metricKey, 0)
	for _, tx := range inWindow {
		key := metricKey{storeID: tx.StoreID, itemID: tx.ItemID}
		m, ok := groups[key]
		if !ok {
			m = &domain.UsageMetric{
				StoreID:    tx.StoreID,
				ItemID:     tx.ItemID,
				FirstDate:  tx.EffectiveDate,
				LastDate:   tx.EffectiveDate,
				WindowDays: windowDays,
			}
			groups[key] = m
			order = append(order, key)
		}

		m.TotalQty += tx.EffectiveQty
		m.NumTransactions++
		if tx.EffectiveDate.Before(m.FirstDate) {
			m.FirstDate = tx.EffectiveDate
		}
		if tx.EffectiveDate.After(m.LastDate) {
			m.LastDate = tx.EffectiveDate
		}
		if tx.ItemName != "" {
			m.ItemName = tx.ItemName
		}
		if tx.Category != "" {
			m.Category = tx.Category
		}
	}

	metrics := make([]domain.UsageMetric, 0, len(order))
	for _, key := range order {
		m := groups[key]
		m.AvgQty = m.TotalQty / float64(m.NumTransactions)
		m.DailyUsageRate = usageRate(m, windowDays, basis)
		metrics = append(metrics, *m)
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].StoreID != metrics[j].StoreID {
			return metrics[i].StoreID < metrics[j].StoreID
		}
		return metrics[i].ItemID < metrics[j].ItemID
	})
	return metrics
}

func usageRate(m *domain.UsageMetric, windowDays int, basis RateBasis) float64 {
	switch basis {
	case RateBasisSpan:
		span := daysBetween(m.FirstDate, m.LastDate)
		if span < 1 {
			span = 1
		}
		return m.TotalQty / float64(span)
	default:
		if windowDays < 1 {
			windowDays = 1
		}
		return m.TotalQty / float64(windowDays)
	}
}
