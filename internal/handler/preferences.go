package handler

import (
	"net/http"

	"crypto-analytics/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

var toggleTargets = []string{"both", "language", "currency"}

// GetPreferences godoc
// @Summary      Display preferences
// @Description  Current language, currency and exchange rate
// @Tags         preferences
// @Produce      json
// @Success      200  {object}  domain.Preference
// @Router       /api/preferences [get]
func (h *Handler) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Preferences())
}

// TogglePreferences godoc
// @Summary      Toggle display preferences
// @Description  Flips language, currency or both. Currency changes refresh the exchange rate in the background.
// @Tags         preferences
// @Produce      json
// @Param        target     query   string  false  "What to toggle (both, language, currency)"  default(both)
// @Param        X-API-Key  header  string  false  "API key when the server requires one"
// @Success      200  {object}  domain.Preference
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/preferences/toggle [post]
func (h *Handler) TogglePreferences(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.toggle-preferences")
	defer span.End()

	target := c.DefaultQuery("target", "both")
	span.SetAttributes(attribute.String("target", target))

	var pref domain.Preference
	switch target {
	case "both":
		pref = h.dashboard.ToggleBoth(ctx)
	case "language":
		pref = h.dashboard.ToggleLanguage(ctx)
	case "currency":
		pref = h.dashboard.ToggleCurrency(ctx)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported toggle target: " + target,
			"supported_targets": toggleTargets,
		})
		return
	}

	c.JSON(http.StatusOK, pref)
}
