package par

import (
	"math"
	"sort"
	"time"

	"github.com/storeops/reporting-backend/internal/domain"
)

// Method selects the par calculation formula.
type Method string

const (
	// MethodDailyUsage covers the next delivery cycle from the daily usage
	// rate. Default, and the only method driven by the order cadence.
	MethodDailyUsage Method = "DAILY_USAGE"

	// MethodOrderFreq pars at the average order quantity plus safety.
	MethodOrderFreq Method = "ORDER_FREQ"

	// MethodReorderPoint pars at lead-time demand plus safety stock.
	MethodReorderPoint Method = "REORDER_POINT"
)

// reorderLeadTimeDays is the assumed supplier lead time for the
// REORDER_POINT method.
const reorderLeadTimeDays = 7

// Methods lists the selectable par calculation methods.
func Methods() []domain.ParMethod {
	return []domain.ParMethod{
		{
			Key:         string(MethodDailyUsage),
			Name:        "Daily Usage Method",
			Description: "Par = Daily Usage Rate x Cycle Days x (1 + Safety %)",
		},
		{
			Key:         string(MethodOrderFreq),
			Name:        "Order Frequency Method",
			Description: "Par = Average Order Qty x (1 + Safety %)",
		},
		{
			Key:         string(MethodReorderPoint),
			Name:        "Reorder Point Method",
			Description: "Par = (Daily Usage x Lead Time) + Safety Stock",
		},
	}
}

// Params configures one par calculation run.
type Params struct {
	Today         time.Time
	WindowDays    int
	SafetyPercent float64
	StoreID       string // optional filter
	Method        Method
	RateBasis     RateBasis
}

// Calculate produces the item-level par table and the per-store order
// context for the next order. The current window is [today-window, today);
// the comparison window is the same span exactly one calendar year
// earlier (calendar subtraction, so leap years stay aligned). Items seen
// in only one of the two windows still appear, with the missing side's
// numeric fields at zero. Empty input yields empty, non-nil slices.
func Calculate(txs []domain.Transaction, p Params) ([]domain.ParResult, []domain.OrderContext) {
	today := Midnight(p.Today)
	windowStart := today.AddDate(0, 0, -p.WindowDays)
	lyEnd := today.AddDate(-1, 0, 0)
	lyStart := lyEnd.AddDate(0, 0, -p.WindowDays)

	if p.StoreID != "" {
		filtered := make([]domain.Transaction, 0, len(txs))
		for _, tx := range txs {
			if tx.StoreID == p.StoreID {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}

	current := CalculateUsageMetrics(txs, windowStart, today, p.WindowDays, p.RateBasis)
	lastYear := CalculateUsageMetrics(txs, lyStart, lyEnd, p.WindowDays, p.RateBasis)
	context := NextOrderContext(today)

	merged := outerJoin(current, lastYear)
	calculatedAt := time.Now().UTC()

	results := make([]domain.ParResult, 0, len(merged))
	stores := make(map[string]struct{})
	for _, pair := range merged {
		row := domain.ParResult{
			CycleDays:     context.CycleDays,
			SafetyPercent: p.SafetyPercent,
			WindowDays:    p.WindowDays,
			WindowStart:   windowStart,
			WindowEnd:     today,
			CalculatedAt:  calculatedAt,
		}

		if pair.current != nil {
			row.StoreID = pair.current.StoreID
			row.ItemID = pair.current.ItemID
			row.ItemName = pair.current.ItemName
			row.Category = pair.current.Category
			row.DailyUsageRate = pair.current.DailyUsageRate
			row.ParQuantity = parQuantity(p.Method, *pair.current, context.CycleDays, p.SafetyPercent)
		}
		if pair.lastYear != nil {
			if pair.current == nil {
				row.StoreID = pair.lastYear.StoreID
				row.ItemID = pair.lastYear.ItemID
				row.ItemName = pair.lastYear.ItemName
				row.Category = pair.lastYear.Category
			}
			row.LYDailyUsageRate = pair.lastYear.DailyUsageRate
			row.LYParQuantity = parQuantity(p.Method, *pair.lastYear, context.CycleDays, p.SafetyPercent)
		}

		stores[row.StoreID] = struct{}{}
		results = append(results, row)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].StoreID != results[j].StoreID {
			return results[i].StoreID < results[j].StoreID
		}
		return results[i].ItemID < results[j].ItemID
	})

	contexts := make([]domain.OrderContext, 0, len(stores))
	for storeID := range stores {
		sc := context
		sc.StoreID = storeID
		contexts = append(contexts, sc)
	}
	sort.Slice(contexts, func(i, j int) bool { return contexts[i].StoreID < contexts[j].StoreID })

	return results, contexts
}

// Summarize computes the headline totals for a par table.
func Summarize(results []domain.ParResult) domain.ParSummary {
	s := domain.ParSummary{TotalItems: len(results)}
	for _, r := range results {
		s.TotalParUnits += r.ParQuantity
	}
	if s.TotalItems > 0 {
		s.AvgParPerItem = float64(s.TotalParUnits) / float64(s.TotalItems)
	}
	return s
}

// parQuantity applies the selected formula to one metric row, rounds up
// and clamps at zero.
func parQuantity(m Method, metric domain.UsageMetric, cycleDays int, safetyPercent float64) int {
	var qty float64
	switch m {
	case MethodOrderFreq:
		qty = metric.AvgQty * (1 + safetyPercent/100)
	case MethodReorderPoint:
		safetyStock := metric.DailyUsageRate * float64(cycleDays) * safetyPercent / 100
		qty = metric.DailyUsageRate*reorderLeadTimeDays + safetyStock
	default:
		qty = metric.DailyUsageRate * float64(cycleDays) * (1 + safetyPercent/100)
	}
	return int(math.Ceil(math.Max(0, qty)))
}

type metricPair struct {
	current  *domain.UsageMetric
	lastYear *domain.UsageMetric
}

// outerJoin pairs current and year-ago metrics on (store, item) so items
// present in only one period are kept.
func outerJoin(current, lastYear []domain.UsageMetric) []metricPair {
	pairs := make(map[metricKey]*metricPair, len(current))
	order := make([]metricKey, 0, len(current))

	for i := range current {
		key := metricKey{storeID: current[i].StoreID, itemID: current[i].ItemID}
		pairs[key] = &metricPair{current: &current[i]}
		order = append(order, key)
	}
	for i := range lastYear {
		key := metricKey{storeID: lastYear[i].StoreID, itemID: lastYear[i].ItemID}
		if p, ok := pairs[key]; ok {
			p.lastYear = &lastYear[i]
			continue
		}
		pairs[key] = &metricPair{lastYear: &lastYear[i]}
		order = append(order, key)
	}

	out := make([]metricPair, 0, len(order))
	for _, key := range order {
		out = append(out, *pairs[key])
	}
	return out
}
