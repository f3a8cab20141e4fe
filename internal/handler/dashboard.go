package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"crypto-analytics/internal/derive"
	"crypto-analytics/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

func unavailable(c *gin.Context, loading bool, errMsg string) {
	body := gin.H{"loading": loading}
	if errMsg != "" {
		body["error"] = errMsg
	}
	c.JSON(http.StatusServiceUnavailable, body)
}

// parseWindow accepts only the offered history windows, writing a 400
// otherwise. Every distinct window is cached and fetched upstream.
func parseWindow(c *gin.Context, raw string) (int, bool) {
	days, err := strconv.Atoi(raw)
	if err != nil || !domain.IsHistoryWindow(days) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "days must be one of the supported windows",
			"supported_windows": domain.HistoryWindows,
		})
		return 0, false
	}
	return days, true
}

// GetSummary godoc
// @Summary      Market summary cards
// @Description  Highest market cap, top gain, top loss and total volume in the selected currency
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/summary [get]
func (h *Handler) GetSummary(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-summary")
	defer span.End()

	v := h.dashboard.Snapshot(ctx, 0, domain.DefaultTableSort())
	if v.Summary == nil {
		unavailable(c, v.MarketsLoading, v.MarketsError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"preference": v.Preference,
		"title":      v.Labels.Title,
		"summary":    v.Summary,
		"cards":      v.Summary.Cards(),
	})
}

// GetCoins godoc
// @Summary      Sorted coin table
// @Description  Returns the tracked coins as formatted table rows
// @Tags         dashboard
// @Produce      json
// @Param        sort   query  string  false  "Sort key (market_cap, current_price, price_change_percentage_24h, total_volume, name)"  default(market_cap)
// @Param        order  query  string  false  "Sort order (asc, desc)"  default(desc)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/coins [get]
func (h *Handler) GetCoins(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-coins")
	defer span.End()

	sel := domain.DefaultTableSort()
	if s := c.Query("sort"); s != "" {
		key, err := domain.ParseSortKey(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "supported_sort_keys": domain.SortKeys})
			return
		}
		sel.Key = key
	}
	if o := c.Query("order"); o != "" {
		order, err := domain.ParseSortOrder(o)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sel.Order = order
	}
	span.SetAttributes(attribute.String("sort", string(sel.Key)), attribute.String("order", string(sel.Order)))

	v := h.dashboard.Snapshot(ctx, 0, sel)
	if !v.HasMarkets() {
		unavailable(c, v.MarketsLoading, v.MarketsError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sort":         v.Sort,
		"sort_label":   v.Labels.SortBy,
		"sort_options": derive.SortOptions(v.Preference.Language),
		"rows":         v.Table,
	})
}

// ExportCoins godoc
// @Summary      Export coins as CSV
// @Description  Raw USD market data of the tracked coins, one row per coin
// @Tags         dashboard
// @Produce      text/csv
// @Success      200  {string}  string
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/coins/export.csv [get]
func (h *Handler) ExportCoins(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.export-coins")
	defer span.End()

	var buf bytes.Buffer
	if err := h.dashboard.Export(ctx, &buf); err != nil {
		if errors.Is(err, derive.ErrNothingToExport) {
			v := h.dashboard.Snapshot(ctx, 0, domain.DefaultTableSort())
			unavailable(c, v.MarketsLoading, err.Error())
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+derive.ExportFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GetHistory godoc
// @Summary      Tracked asset price history
// @Description  Labelled price series in the selected currency for a day window
// @Tags         dashboard
// @Produce      json
// @Param        days  path  int  true  "Window length in days (7, 30, 60 or 90)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/history/{days} [get]
func (h *Handler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	days, ok := parseWindow(c, c.Param("days"))
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("days", days))

	v := h.dashboard.Snapshot(ctx, days, domain.DefaultTableSort())
	if len(v.Chart) == 0 {
		unavailable(c, v.HistoryLoading, v.HistoryError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":        v.ChartTitle,
		"days":         v.Days,
		"window_label": v.WindowLabel,
		"points":       v.Chart,
		"axis_ticks":   v.AxisTicks,
	})
}

// GetBreakdown godoc
// @Summary      Market cap breakdown
// @Description  Converted market cap and share of the five largest coins
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/breakdown [get]
func (h *Handler) GetBreakdown(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-breakdown")
	defer span.End()

	v := h.dashboard.Snapshot(ctx, 0, domain.DefaultTableSort())
	if len(v.Breakdown) == 0 {
		unavailable(c, v.MarketsLoading, v.MarketsError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":  v.Labels.TopFive,
		"slices": v.Breakdown,
	})
}

// GetOverview godoc
// @Summary      Highest market cap coin overview
// @Description  Market cap, volume, supply, ATH and ATL of the largest coin
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  derive.Overview
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/overview [get]
func (h *Handler) GetOverview(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-overview")
	defer span.End()

	v := h.dashboard.Snapshot(ctx, 0, domain.DefaultTableSort())
	if v.Overview == nil {
		unavailable(c, v.MarketsLoading, v.MarketsError)
		return
	}

	c.JSON(http.StatusOK, v.Overview)
}

// Retry godoc
// @Summary      Reload market data
// @Description  Refetches the markets batch and a history window after a failed load. Cached data is kept.
// @Tags         dashboard
// @Produce      json
// @Param        days       query   int     false  "History window to reload (7, 30, 60 or 90)"
// @Param        X-API-Key  header  string  false  "API key when the server requires one"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/retry [post]
func (h *Handler) Retry(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.retry")
	defer span.End()

	days := h.dashboard.DefaultDays()
	if raw := c.Query("days"); raw != "" {
		var ok bool
		if days, ok = parseWindow(c, raw); !ok {
			return
		}
	}
	span.SetAttributes(attribute.Int("days", days))

	if err := h.dashboard.Retry(ctx, days); err != nil {
		span.RecordError(err)
		unavailable(c, false, err.Error())
		return
	}

	v := h.dashboard.Snapshot(ctx, days, domain.DefaultTableSort())
	c.JSON(http.StatusOK, gin.H{
		"days":    days,
		"markets": len(v.Assets),
		"points":  len(v.Chart),
	})
}
