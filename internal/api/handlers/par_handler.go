package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storeops/reporting-backend/internal/config"
	"github.com/storeops/reporting-backend/internal/domain"
	"github.com/storeops/reporting-backend/internal/par"
	"github.com/storeops/reporting-backend/internal/service"
)

type ParHandler struct {
	service  *service.ParService
	defaults config.ParConfig
}

func NewParHandler(service *service.ParService, defaults config.ParConfig) *ParHandler {
	if defaults.WindowDays <= 0 {
		defaults.WindowDays = 90
	}
	if defaults.SafetyPercent < 0 {
		defaults.SafetyPercent = 20
	}
	return &ParHandler{service: service, defaults: defaults}
}

// parseParams reads the report knobs off the query string. Unparseable
// numbers fall back to defaults; out-of-range values are left for the
// service to reject so the error message is consistent across entry
// points.
func (h *ParHandler) parseParams(c *gin.Context) (service.ParParams, error) {
	params := service.ParParams{
		WindowDays:    h.defaults.WindowDays,
		SafetyPercent: h.defaults.SafetyPercent,
	}

	if storeID := strings.TrimSpace(c.Query("store_id")); storeID != "" {
		params.StoreID = storeID
	}

	if raw := strings.TrimSpace(c.Query("today")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return params, fmt.Errorf("%w: today must be YYYY-MM-DD", domain.ErrInvalidParams)
		}
		params.Today = t
	}

	if raw := strings.TrimSpace(c.Query("window_days")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("%w: window_days must be an integer", domain.ErrInvalidParams)
		}
		params.WindowDays = v
	}

	if raw := strings.TrimSpace(c.Query("safety_percent")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, fmt.Errorf("%w: safety_percent must be numeric", domain.ErrInvalidParams)
		}
		params.SafetyPercent = v
	}

	if method := strings.TrimSpace(c.Query("method")); method != "" {
		params.Method = par.Method(strings.ToUpper(method))
	}
	if basis := strings.TrimSpace(c.Query("rate_basis")); basis != "" {
		params.RateBasis = par.RateBasis(strings.ToLower(basis))
	}

	return params, nil
}

func (h *ParHandler) GetOrderContext(c *gin.Context) {
	var today time.Time
	if raw := strings.TrimSpace(c.Query("today")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, fmt.Errorf("%w: today must be YYYY-MM-DD", domain.ErrInvalidParams))
			return
		}
		today = t
	}

	c.JSON(http.StatusOK, h.service.GetOrderContext(today))
}

func (h *ParHandler) GetMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": h.service.GetParMethods()})
}

func (h *ParHandler) GetParForNextOrder(c *gin.Context) {
	params, err := h.parseParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.service.GetParForNextOrder(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportParCSV streams the par table as a CSV download.
func (h *ParHandler) ExportParCSV(c *gin.Context) {
	params, err := h.parseParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.service.GetParForNextOrder(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("par_levels_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	header := []string{"store_id", "item_id", "item_name", "category", "cycle_days",
		"daily_usage_rate", "par_quantity", "ly_daily_usage_rate", "ly_par_quantity",
		"safety_percent", "window_days"}
	if err := w.Write(header); err != nil {
		return
	}
	for _, r := range report.Results {
		record := []string{
			r.StoreID,
			r.ItemID,
			r.ItemName,
			r.Category,
			strconv.Itoa(r.CycleDays),
			strconv.FormatFloat(r.DailyUsageRate, 'f', 4, 64),
			strconv.Itoa(r.ParQuantity),
			strconv.FormatFloat(r.LYDailyUsageRate, 'f', 4, 64),
			strconv.Itoa(r.LYParQuantity),
			strconv.FormatFloat(r.SafetyPercent, 'f', 1, 64),
			strconv.Itoa(r.WindowDays),
		}
		if err := w.Write(record); err != nil {
			return
		}
	}
}

func (h *ParHandler) GetMetrics(c *gin.Context) {
	storeID := strings.TrimSpace(c.Query("store_id"))
	itemID := strings.TrimSpace(c.Query("item_id"))

	windowDays := 0
	if raw := strings.TrimSpace(c.Query("window_days")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, fmt.Errorf("%w: window_days must be an integer", domain.ErrInvalidParams))
			return
		}
		windowDays = v
	}

	metrics, err := h.service.GetUsageMetrics(c.Request.Context(), storeID, itemID, windowDays)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": metrics, "total": len(metrics)})
}

func (h *ParHandler) GetStores(c *gin.Context) {
	stores, err := h.service.ListStores(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stores": stores})
}

func (h *ParHandler) ClearCache(c *gin.Context) {
	if err := h.service.ClearCache(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cache", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// respondError maps error categories onto status codes: bad parameters
// are the caller's fault, upstream store failures are a bad gateway, and
// everything else is internal.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidParams):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}
