package handler

import (
	"net/http"

	"crypto-analytics/internal/domain"

	"github.com/gin-gonic/gin"
)

func marketsState(loading bool, errMsg string, ready bool) string {
	switch {
	case ready:
		return "ready"
	case loading:
		return "loading"
	case errMsg != "":
		return "unavailable"
	default:
		return "empty"
	}
}

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the service and the state of the market data
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.health")
	defer span.End()

	v := h.dashboard.Snapshot(ctx, 0, domain.DefaultTableSort())
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"markets":  marketsState(v.MarketsLoading, v.MarketsError, v.HasMarkets()),
		"language": string(v.Preference.Language),
		"currency": string(v.Preference.Currency),
	})
}
