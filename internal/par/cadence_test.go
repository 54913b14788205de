package par

import (
	"testing"
	"time"

	"github.com/storeops/reporting-backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOrderContextFromMonday(t *testing.T) {
	// Monday orders Tuesday, receives Thursday, and that delivery must
	// last until the following Monday.
	ctx := NextOrderContext(date(2024, time.March, 4))

	require.Equal(t, date(2024, time.March, 5), ctx.NextOrderDate)
	require.Equal(t, time.Tuesday, ctx.OrderWeekday)
	require.Equal(t, date(2024, time.March, 7), ctx.NextDeliveryDate)
	require.Equal(t, time.Thursday, ctx.DeliveryWeekday)
	require.Equal(t, date(2024, time.March, 11), ctx.NextDeliveryAfterThat)
	require.Equal(t, 4, ctx.CycleDays)
	require.Equal(t, domain.CadenceTwiceWeekly, ctx.CadenceType)
}

func TestNextOrderContextFromThursday(t *testing.T) {
	// Thursday orders Saturday, receives Monday, next delivery Thursday.
	ctx := NextOrderContext(date(2024, time.March, 7))

	require.Equal(t, date(2024, time.March, 9), ctx.NextOrderDate)
	require.Equal(t, time.Saturday, ctx.OrderWeekday)
	require.Equal(t, date(2024, time.March, 11), ctx.NextDeliveryDate)
	require.Equal(t, time.Monday, ctx.DeliveryWeekday)
	require.Equal(t, date(2024, time.March, 14), ctx.NextDeliveryAfterThat)
	require.Equal(t, 3, ctx.CycleDays)
}

func TestOrderDayCountsAsUpcoming(t *testing.T) {
	tue := NextOrderContext(date(2024, time.March, 5))
	require.Equal(t, date(2024, time.March, 5), tue.NextOrderDate)

	sat := NextOrderContext(date(2024, time.March, 9))
	require.Equal(t, date(2024, time.March, 9), sat.NextOrderDate)
}

func TestNextOrderContextInvariants(t *testing.T) {
	// Two full weeks plus a leap-day crossing; every day of the week must
	// yield an ordered chain and a cycle of 3 or 4 days.
	start := date(2024, time.February, 26)
	for i := 0; i < 21; i++ {
		today := start.AddDate(0, 0, i)
		ctx := NextOrderContext(today)

		require.Contains(t, []int{3, 4}, ctx.CycleDays, "day %s", today)
		require.False(t, ctx.NextOrderDate.Before(today))
		require.True(t, ctx.NextDeliveryDate.After(ctx.NextOrderDate))
		require.True(t, ctx.NextDeliveryAfterThat.After(ctx.NextDeliveryDate))
		require.Contains(t, []time.Weekday{time.Tuesday, time.Saturday}, ctx.NextOrderDate.Weekday())
		require.Contains(t, []time.Weekday{time.Monday, time.Thursday}, ctx.NextDeliveryDate.Weekday())
	}
}

func TestNextOrderContextNormalizesTime(t *testing.T) {
	// A timestamp mid-afternoon behaves like its calendar day.
	noon := time.Date(2024, time.March, 4, 15, 30, 0, 0, time.UTC)
	require.Equal(t, NextOrderContext(date(2024, time.March, 4)), NextOrderContext(noon))
}
