package handler

import (
	"context"
	"io"

	"crypto-analytics/internal/domain"
	"crypto-analytics/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// Dashboard is the session the HTTP API renders and mutates.
type Dashboard interface {
	Snapshot(ctx context.Context, days int, sort domain.TableSort) service.View
	Preferences() domain.Preference
	ToggleBoth(ctx context.Context) domain.Preference
	ToggleLanguage(ctx context.Context) domain.Preference
	ToggleCurrency(ctx context.Context) domain.Preference
	Export(ctx context.Context, w io.Writer) error
	Retry(ctx context.Context, days int) error
	DefaultDays() int
}

type Handler struct {
	tracer    trace.Tracer
	dashboard Dashboard
	apiKey    string
}

func New(tracer trace.Tracer, dashboard Dashboard, apiKey string) *Handler {
	return &Handler{
		tracer:    tracer,
		dashboard: dashboard,
		apiKey:    apiKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/summary", h.GetSummary)
	api.GET("/coins", h.GetCoins)
	api.GET("/coins/export.csv", h.ExportCoins)
	api.GET("/history/:days", h.GetHistory)
	api.GET("/breakdown", h.GetBreakdown)
	api.GET("/overview", h.GetOverview)
	api.GET("/preferences", h.GetPreferences)
	api.POST("/preferences/toggle", RequireAPIKey(h.apiKey), h.TogglePreferences)
	api.POST("/retry", RequireAPIKey(h.apiKey), h.Retry)
}
