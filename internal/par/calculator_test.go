package par

import (
	"testing"
	"time"

	"github.com/storeops/reporting-backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestCalculateDailyUsagePar(t *testing.T) {
	// One unit per day for the whole 90-day window ending on a Thursday:
	// rate 1.0, cycle 3 (Sat order, Mon delivery, Thu next), safety 20%
	// gives ceil(1.0 * 3 * 1.2) = 4.
	today := date(2024, time.March, 7)
	var txs []domain.Transaction
	for i := 1; i <= 90; i++ {
		txs = append(txs, tx("357993", "10023", today.AddDate(0, 0, -i), 1))
	}

	results, contexts := Calculate(txs, Params{
		Today:         today,
		WindowDays:    90,
		SafetyPercent: 20,
		Method:        MethodDailyUsage,
		RateBasis:     RateBasisWindow,
	})

	require.Len(t, results, 1)
	r := results[0]
	require.Equal(t, "357993", r.StoreID)
	require.Equal(t, "10023", r.ItemID)
	require.InDelta(t, 1.0, r.DailyUsageRate, 1e-9)
	require.Equal(t, 3, r.CycleDays)
	require.Equal(t, 4, r.ParQuantity)
	require.Equal(t, today.AddDate(0, 0, -90), r.WindowStart)
	require.Equal(t, today, r.WindowEnd)

	require.Len(t, contexts, 1)
	require.Equal(t, "357993", contexts[0].StoreID)
	require.Equal(t, date(2024, time.March, 9), contexts[0].NextOrderDate)
}

func TestCalculateYearAgoWindowAcrossLeapDay(t *testing.T) {
	// 2024-03-01 minus one calendar year is 2023-03-01 even though 2024
	// had a February 29th. The comparison window is [2023-01-30, 2023-03-01).
	today := date(2024, time.March, 1)
	txs := []domain.Transaction{
		tx("1", "A", date(2023, time.February, 15), 30), // inside last-year window
		tx("1", "A", date(2023, time.March, 1), 100),    // on the exclusive boundary
	}

	results, _ := Calculate(txs, Params{
		Today:         today,
		WindowDays:    30,
		SafetyPercent: 20,
		Method:        MethodDailyUsage,
		RateBasis:     RateBasisWindow,
	})

	require.Len(t, results, 1)
	r := results[0]
	require.Equal(t, 0.0, r.DailyUsageRate)
	require.Equal(t, 0, r.ParQuantity)
	require.InDelta(t, 1.0, r.LYDailyUsageRate, 1e-9) // 30 units over 30 days
	require.Equal(t, 4, r.LYParQuantity)              // Friday today, cycle 3
}

func TestCalculateKeepsItemsFromBothPeriods(t *testing.T) {
	today := date(2024, time.March, 7)
	txs := []domain.Transaction{
		tx("1", "CURRENT_ONLY", today.AddDate(0, 0, -5), 30),
		tx("1", "LY_ONLY", today.AddDate(-1, 0, -5), 30),
	}

	results, _ := Calculate(txs, Params{
		Today:         today,
		WindowDays:    30,
		SafetyPercent: 0,
		Method:        MethodDailyUsage,
		RateBasis:     RateBasisWindow,
	})

	require.Len(t, results, 2)
	require.Equal(t, "CURRENT_ONLY", results[0].ItemID)
	require.Positive(t, results[0].ParQuantity)
	require.Equal(t, 0, results[0].LYParQuantity)

	require.Equal(t, "LY_ONLY", results[1].ItemID)
	require.Equal(t, 0, results[1].ParQuantity)
	require.Positive(t, results[1].LYParQuantity)
}

func TestCalculateMethods(t *testing.T) {
	// 30 units in one transaction over a 30-day window ending Thursday:
	// rate 1.0, avg qty 30, cycle 3.
	today := date(2024, time.March, 7)
	txs := []domain.Transaction{tx("1", "A", today.AddDate(0, 0, -10), 30)}

	base := Params{Today: today, WindowDays: 30, SafetyPercent: 20, RateBasis: RateBasisWindow}

	daily := base
	daily.Method = MethodDailyUsage
	results, _ := Calculate(txs, daily)
	require.Equal(t, 4, results[0].ParQuantity) // ceil(1 * 3 * 1.2)

	freq := base
	freq.Method = MethodOrderFreq
	results, _ = Calculate(txs, freq)
	require.Equal(t, 36, results[0].ParQuantity) // ceil(30 * 1.2)

	reorder := base
	reorder.Method = MethodReorderPoint
	results, _ = Calculate(txs, reorder)
	require.Equal(t, 8, results[0].ParQuantity) // ceil(1*7 + 1*3*0.2)
}

func TestCalculateStoreFilter(t *testing.T) {
	today := date(2024, time.March, 7)
	txs := []domain.Transaction{
		tx("1", "A", today.AddDate(0, 0, -5), 10),
		tx("2", "A", today.AddDate(0, 0, -5), 10),
	}

	results, contexts := Calculate(txs, Params{
		Today:      today,
		WindowDays: 30,
		StoreID:    "2",
		Method:     MethodDailyUsage,
		RateBasis:  RateBasisWindow,
	})

	require.Len(t, results, 1)
	require.Equal(t, "2", results[0].StoreID)
	require.Len(t, contexts, 1)
	require.Equal(t, "2", contexts[0].StoreID)
}

func TestCalculateEmptyInput(t *testing.T) {
	results, contexts := Calculate(nil, Params{
		Today:      date(2024, time.March, 7),
		WindowDays: 90,
		Method:     MethodDailyUsage,
		RateBasis:  RateBasisWindow,
	})

	require.NotNil(t, results)
	require.Empty(t, results)
	require.NotNil(t, contexts)
	require.Empty(t, contexts)
}

func TestSummarize(t *testing.T) {
	results := []domain.ParResult{
		{ParQuantity: 4},
		{ParQuantity: 10},
	}

	s := Summarize(results)
	require.Equal(t, 2, s.TotalItems)
	require.Equal(t, 14, s.TotalParUnits)
	require.Equal(t, 7.0, s.AvgParPerItem)

	require.Equal(t, domain.ParSummary{}, Summarize(nil))
}

func TestMethodsCatalog(t *testing.T) {
	methods := Methods()
	require.Len(t, methods, 3)

	keys := make([]string, 0, len(methods))
	for _, m := range methods {
		require.NotEmpty(t, m.Name)
		require.NotEmpty(t, m.Description)
		keys = append(keys, m.Key)
	}
	require.Equal(t, []string{"DAILY_USAGE", "ORDER_FREQ", "REORDER_POINT"}, keys)
}
