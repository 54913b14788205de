package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/storeops/reporting-backend/internal/cache"
	"github.com/storeops/reporting-backend/internal/config"
	"github.com/storeops/reporting-backend/internal/domain"
	"github.com/storeops/reporting-backend/internal/par"
	"github.com/storeops/reporting-backend/internal/repository"
)

// Window bounds accepted at the API boundary. The UI offers 30-180 days;
// anything positive up to a year is allowed for ad hoc queries.
const (
	minWindowDays    = 1
	maxWindowDays    = 366
	maxSafetyPercent = 100
)

// ParParams are the user-facing knobs of the par report.
type ParParams struct {
	StoreID       string
	Today         time.Time // zero value means "now"
	WindowDays    int
	SafetyPercent float64
	Method        par.Method
	RateBasis     par.RateBasis
}

// ParService runs the par-level report: pull the invoice table (through
// the transaction cache), normalize, and hand the result to the par
// engine.
type ParService struct {
	reader   repository.TableReader
	cache    cache.TransactionCache
	table    string
	pageSize int
	now      func() time.Time
}

func NewParService(reader repository.TableReader, cacheImpl cache.TransactionCache, cfg config.ParConfig) *ParService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopCache()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &ParService{
		reader:   reader,
		cache:    cacheImpl,
		table:    cfg.InvoiceTable,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// GetOrderContext returns the store-agnostic order/delivery cycle for a
// given day.
func (s *ParService) GetOrderContext(today time.Time) domain.OrderContext {
	if today.IsZero() {
		today = s.now()
	}
	return par.NextOrderContext(today)
}

// GetParMethods lists the selectable par calculation methods.
func (s *ParService) GetParMethods() []domain.ParMethod {
	return par.Methods()
}

// GetParForNextOrder is the primary report entry point.
func (s *ParService) GetParForNextOrder(ctx context.Context, params ParParams) (*domain.ParReport, error) {
	if err := validateParams(&params); err != nil {
		return nil, err
	}

	txs, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	today := params.Today
	if today.IsZero() {
		today = s.now()
	}

	results, contexts := par.Calculate(txs, par.Params{
		Today:         today,
		WindowDays:    params.WindowDays,
		SafetyPercent: params.SafetyPercent,
		StoreID:       params.StoreID,
		Method:        params.Method,
		RateBasis:     params.RateBasis,
	})

	return &domain.ParReport{
		Results:      results,
		OrderContext: contexts,
		Summary:      par.Summarize(results),
	}, nil
}

// GetUsageMetrics returns the trailing-window usage metrics, optionally
// filtered to one store and/or item.
func (s *ParService) GetUsageMetrics(ctx context.Context, storeID, itemID string, windowDays int) ([]domain.UsageMetric, error) {
	if windowDays == 0 {
		windowDays = 90
	}
	if windowDays < minWindowDays || windowDays > maxWindowDays {
		return nil, fmt.Errorf("%w: window_days must be between %d and %d", domain.ErrInvalidParams, minWindowDays, maxWindowDays)
	}

	txs, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	today := par.Midnight(s.now())
	metrics := par.CalculateUsageMetrics(txs, today.AddDate(0, 0, -windowDays), today, windowDays, par.RateBasisWindow)

	filtered := metrics[:0]
	for _, m := range metrics {
		if storeID != "" && m.StoreID != storeID {
			continue
		}
		if itemID != "" && m.ItemID != itemID {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered, nil
}

// ListStores returns the distinct store ids present in the invoice table.
func (s *ParService) ListStores(ctx context.Context) ([]string, error) {
	txs, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	stores := make([]string, 0)
	for _, tx := range txs {
		if _, ok := seen[tx.StoreID]; ok {
			continue
		}
		seen[tx.StoreID] = struct{}{}
		stores = append(stores, tx.StoreID)
	}
	sort.Strings(stores)
	return stores, nil
}

// ClearCache drops the memoized transaction set so the next report render
// re-fetches the upstream table.
func (s *ParService) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx, s.table)
}

// loadTransactions is the read-through path: cached normalized rows when
// fresh, otherwise one full paginated pull followed by normalization.
func (s *ParService) loadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	if txs, ok, err := s.cache.Get(ctx, s.table); err == nil && ok {
		return txs, nil
	} else if err != nil {
		log.Warn().Err(err).Str("table", s.table).Msg("par: cache get failed")
	}

	records := make([]domain.RawRecord, 0, s.pageSize)
	for offset := 0; ; offset += s.pageSize {
		page, err := s.reader.FetchPage(ctx, s.table, offset, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		records = append(records, page...)
		if len(page) < s.pageSize {
			break
		}
	}

	txs := par.Normalize(records)
	if err := s.cache.Set(ctx, s.table, txs); err != nil {
		log.Warn().Err(err).Str("table", s.table).Msg("par: cache set failed")
	}
	return txs, nil
}

func validateParams(p *ParParams) error {
	if p.WindowDays < minWindowDays || p.WindowDays > maxWindowDays {
		return fmt.Errorf("%w: window_days must be between %d and %d", domain.ErrInvalidParams, minWindowDays, maxWindowDays)
	}
	if p.SafetyPercent < 0 || p.SafetyPercent > maxSafetyPercent {
		return fmt.Errorf("%w: safety_percent must be between 0 and %d", domain.ErrInvalidParams, maxSafetyPercent)
	}

	if p.Method == "" {
		p.Method = par.MethodDailyUsage
	}
	switch p.Method {
	case par.MethodDailyUsage, par.MethodOrderFreq, par.MethodReorderPoint:
	default:
		return fmt.Errorf("%w: unknown method %q", domain.ErrInvalidParams, p.Method)
	}

	if p.RateBasis == "" {
		p.RateBasis = par.RateBasisWindow
	}
	switch p.RateBasis {
	case par.RateBasisWindow, par.RateBasisSpan:
	default:
		return fmt.Errorf("%w: unknown rate_basis %q", domain.ErrInvalidParams, p.RateBasis)
	}

	return nil
}
