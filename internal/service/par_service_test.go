package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storeops/reporting-backend/internal/cache"
	"github.com/storeops/reporting-backend/internal/config"
	"github.com/storeops/reporting-backend/internal/domain"
	"github.com/storeops/reporting-backend/internal/par"
	"github.com/stretchr/testify/require"
)

// fakeReader serves pages out of an in-memory record slice and counts
// fetches, standing in for the postgres repository.
type fakeReader struct {
	records []domain.RawRecord
	calls   int
	err     error
}

func (f *fakeReader) FetchPage(ctx context.Context, table string, offset, limit int) ([]domain.RawRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.records) {
		return []domain.RawRecord{}, nil
	}
	end := offset + limit
	if end > len(f.records) {
		end = len(f.records)
	}
	return f.records[offset:end], nil
}

func invoiceRecord(store, item string, day string, qty string) domain.RawRecord {
	return domain.RawRecord{
		"pc_number":    store,
		"item_number":  item,
		"item_name":    "ITEM " + item,
		"qty_shipped":  qty,
		"invoice_date": day,
	}
}

func newTestService(reader *fakeReader, c cache.TransactionCache) *ParService {
	svc := NewParService(reader, c, config.ParConfig{
		InvoiceTable: "ndcp_invoices",
		PageSize:     2,
	})
	svc.now = func() time.Time {
		return time.Date(2024, time.March, 7, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestGetParForNextOrder(t *testing.T) {
	reader := &fakeReader{records: []domain.RawRecord{
		invoiceRecord("357993", "10023", "20240301", "30"),
		invoiceRecord("357993", "10023", "20240225", "30"),
		invoiceRecord("357993", "10023", "20240220", "30"),
	}}
	svc := newTestService(reader, cache.NewNoopCache())

	report, err := svc.GetParForNextOrder(context.Background(), ParParams{
		WindowDays:    90,
		SafetyPercent: 20,
	})
	require.NoError(t, err)

	// 90 units over 90 days ending on a Thursday: rate 1.0, cycle 3,
	// par = ceil(3.6) = 4.
	require.Len(t, report.Results, 1)
	require.Equal(t, 4, report.Results[0].ParQuantity)
	require.Equal(t, 3, report.Results[0].CycleDays)
	require.Len(t, report.OrderContext, 1)
	require.Equal(t, "357993", report.OrderContext[0].StoreID)
	require.Equal(t, 1, report.Summary.TotalItems)
	require.Equal(t, 4, report.Summary.TotalParUnits)
}

func TestGetParForNextOrderPaginates(t *testing.T) {
	// Five records with a page size of 2: pages of 2, 2 and 1, where the
	// short final page terminates the loop.
	reader := &fakeReader{records: []domain.RawRecord{
		invoiceRecord("1", "A", "20240301", "1"),
		invoiceRecord("1", "B", "20240301", "1"),
		invoiceRecord("1", "C", "20240301", "1"),
		invoiceRecord("1", "D", "20240301", "1"),
		invoiceRecord("1", "E", "20240301", "1"),
	}}
	svc := newTestService(reader, cache.NewNoopCache())

	report, err := svc.GetParForNextOrder(context.Background(), ParParams{WindowDays: 90})
	require.NoError(t, err)
	require.Len(t, report.Results, 5)
	require.Equal(t, 3, reader.calls)
}

func TestGetParForNextOrderUsesCache(t *testing.T) {
	reader := &fakeReader{records: []domain.RawRecord{
		invoiceRecord("1", "A", "20240301", "1"),
	}}
	svc := newTestService(reader, cache.NewMemoryCache(time.Hour, nil))

	_, err := svc.GetParForNextOrder(context.Background(), ParParams{WindowDays: 90})
	require.NoError(t, err)
	fetches := reader.calls

	// Different parameters still reuse the cached transaction set.
	_, err = svc.GetParForNextOrder(context.Background(), ParParams{WindowDays: 30, SafetyPercent: 50})
	require.NoError(t, err)
	require.Equal(t, fetches, reader.calls)

	// Clearing the cache forces a re-fetch.
	require.NoError(t, svc.ClearCache(context.Background()))
	_, err = svc.GetParForNextOrder(context.Background(), ParParams{WindowDays: 90})
	require.NoError(t, err)
	require.Greater(t, reader.calls, fetches)
}

func TestGetParForNextOrderValidation(t *testing.T) {
	reader := &fakeReader{}
	svc := newTestService(reader, cache.NewNoopCache())
	ctx := context.Background()

	cases := []ParParams{
		{WindowDays: 0},
		{WindowDays: 367},
		{WindowDays: 90, SafetyPercent: -1},
		{WindowDays: 90, SafetyPercent: 101},
		{WindowDays: 90, Method: "GUESSWORK"},
		{WindowDays: 90, RateBasis: "weekly"},
	}
	for _, params := range cases {
		_, err := svc.GetParForNextOrder(ctx, params)
		require.ErrorIs(t, err, domain.ErrInvalidParams, "params %+v", params)
	}

	// Invalid parameters are rejected before any fetch happens.
	require.Zero(t, reader.calls)
}

func TestGetParForNextOrderDefaults(t *testing.T) {
	params := ParParams{WindowDays: 90}
	require.NoError(t, validateParams(&params))
	require.Equal(t, par.MethodDailyUsage, params.Method)
	require.Equal(t, par.RateBasisWindow, params.RateBasis)
}

func TestGetParForNextOrderUpstreamError(t *testing.T) {
	reader := &fakeReader{err: errors.New("connection refused")}
	svc := newTestService(reader, cache.NewNoopCache())

	_, err := svc.GetParForNextOrder(context.Background(), ParParams{WindowDays: 90})
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestGetUsageMetricsFilters(t *testing.T) {
	reader := &fakeReader{records: []domain.RawRecord{
		invoiceRecord("1", "A", "20240301", "10"),
		invoiceRecord("1", "B", "20240301", "10"),
		invoiceRecord("2", "A", "20240301", "10"),
	}}
	svc := newTestService(reader, cache.NewNoopCache())
	ctx := context.Background()

	all, err := svc.GetUsageMetrics(ctx, "", "", 90)
	require.NoError(t, err)
	require.Len(t, all, 3)

	byStore, err := svc.GetUsageMetrics(ctx, "1", "", 90)
	require.NoError(t, err)
	require.Len(t, byStore, 2)

	byItem, err := svc.GetUsageMetrics(ctx, "1", "B", 90)
	require.NoError(t, err)
	require.Len(t, byItem, 1)
	require.Equal(t, "B", byItem[0].ItemID)

	_, err = svc.GetUsageMetrics(ctx, "", "", 9999)
	require.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestListStores(t *testing.T) {
	reader := &fakeReader{records: []domain.RawRecord{
		invoiceRecord("20", "A", "20240301", "1"),
		invoiceRecord("3", "A", "20240301", "1"),
		invoiceRecord("20", "B", "20240301", "1"),
	}}
	svc := newTestService(reader, cache.NewNoopCache())

	stores, err := svc.ListStores(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"20", "3"}, stores)
}

func TestGetOrderContext(t *testing.T) {
	svc := newTestService(&fakeReader{}, cache.NewNoopCache())

	// Zero time falls back to the service clock (a Thursday).
	ctx := svc.GetOrderContext(time.Time{})
	require.Equal(t, time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC), ctx.NextOrderDate)
	require.Equal(t, 3, ctx.CycleDays)

	monday := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 4, svc.GetOrderContext(monday).CycleDays)
}

func TestGetParMethods(t *testing.T) {
	svc := newTestService(&fakeReader{}, cache.NewNoopCache())
	require.Len(t, svc.GetParMethods(), 3)
}
