// internal/domain/models.go
package domain

import "time"

// RawRecord is a single row as it comes back from the upstream invoice
// table: heterogeneous column names, dates encoded as YYYYMMDD integers,
// numerics that may arrive as strings. The normalizer turns these into
// Transactions.
type RawRecord map[string]any

// Transaction is a normalized shipment/usage record derived from the
// invoice table. EffectiveDate and EffectiveQty are always populated;
// rows that cannot produce them are dropped during normalization.
type Transaction struct {
	StoreID      string     `json:"store_id"`
	ItemID       string     `json:"item_id"`
	ItemName     string     `json:"item_name"`
	Category     string     `json:"category,omitempty"`
	QtyOrdered   *float64   `json:"qty_ordered,omitempty"`
	QtyShipped   *float64   `json:"qty_shipped,omitempty"`
	OrderDate    *time.Time `json:"order_date,omitempty"`
	InvoiceDate  *time.Time `json:"invoice_date,omitempty"`
	EffectiveDate time.Time  `json:"effective_date"`
	EffectiveQty  float64    `json:"effective_quantity"`
}

// UsageMetric aggregates transactions for one (store, item) pair inside a
// report window.
type UsageMetric struct {
	StoreID         string    `json:"store_id"`
	ItemID          string    `json:"item_id"`
	ItemName        string    `json:"item_name"`
	Category        string    `json:"category,omitempty"`
	TotalQty        float64   `json:"total_qty"`
	AvgQty          float64   `json:"avg_qty"`
	NumTransactions int       `json:"num_transactions"`
	FirstDate       time.Time `json:"first_date"`
	LastDate        time.Time `json:"last_date"`
	WindowDays      int       `json:"window_days"`
	DailyUsageRate  float64   `json:"daily_usage_rate"`
}

// CadenceType identifies the ordering schedule in effect.
type CadenceType string

// CadenceTwiceWeekly is the Tuesday/Saturday order schedule with Thursday
// and Monday deliveries.
const CadenceTwiceWeekly CadenceType = "TWICE_WEEKLY"

// OrderContext describes the next order/delivery cycle as seen from a
// given day. One context is shared by every store today, but StoreID is
// carried so per-store cadences can diverge later.
type OrderContext struct {
	StoreID               string       `json:"store_id,omitempty"`
	Today                 time.Time    `json:"today"`
	NextOrderDate         time.Time    `json:"next_order_date"`
	NextDeliveryDate      time.Time    `json:"next_delivery_date"`
	NextDeliveryAfterThat time.Time    `json:"next_delivery_after_that"`
	CycleDays             int          `json:"cycle_days"`
	CadenceType           CadenceType  `json:"cadence_type"`
	OrderWeekday          time.Weekday `json:"order_weekday"`
	DeliveryWeekday       time.Weekday `json:"delivery_weekday"`
}

// ParResult is one row of the par report: the stocking quantity a store
// needs for one item to cover the next delivery cycle. Request-scoped,
// never persisted.
type ParResult struct {
	StoreID          string    `json:"store_id"`
	ItemID           string    `json:"item_id"`
	ItemName         string    `json:"item_name"`
	Category         string    `json:"category,omitempty"`
	CycleDays        int       `json:"cycle_days"`
	DailyUsageRate   float64   `json:"daily_usage_rate"`
	ParQuantity      int       `json:"par_quantity"`
	LYDailyUsageRate float64   `json:"ly_daily_usage_rate"`
	LYParQuantity    int       `json:"ly_par_quantity"`
	SafetyPercent    float64   `json:"safety_percent"`
	WindowDays       int       `json:"window_days"`
	WindowStart      time.Time `json:"window_start"`
	WindowEnd        time.Time `json:"window_end"`
	CalculatedAt     time.Time `json:"calculated_at"`
}

// ParMethod describes one selectable par calculation method.
type ParMethod struct {
	Key         string `json:"method_key"`
	Name        string `json:"method_name"`
	Description string `json:"description"`
}

// ParSummary holds the headline numbers shown above the par table.
type ParSummary struct {
	TotalItems    int     `json:"total_items"`
	TotalParUnits int     `json:"total_par_units"`
	AvgParPerItem float64 `json:"avg_par_per_item"`
}

// ParReport is the full payload for the par-level report page.
type ParReport struct {
	Results      []ParResult    `json:"results"`
	OrderContext []OrderContext `json:"order_context"`
	Summary      ParSummary     `json:"summary"`
}
