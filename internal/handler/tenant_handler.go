package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"note-service/internal/middleware"
	"note-service/internal/store"
	"note-service/pkg/logger"
	"note-service/prometheus"
)

// TenantHandler serves tenant plan management
type TenantHandler struct {
	tenants TenantDirectory
}

// NewTenantHandler creates the tenant handler
func NewTenantHandler(tenants TenantDirectory) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// Upgrade flips the target tenant's plan to pro. The route runs behind
// Auth and RequireRole(admin); this handler still has to check that the
// admin is upgrading their own tenant and no one else's.
func (h *TenantHandler) Upgrade(c echo.Context) error {
	log := logger.FromEcho(c)
	claims := middleware.ClaimsFromContext(c)
	slug := c.Param("slug")

	defer prometheus.TrackDBOperation("query")(time.Now())
	tenant, err := h.tenants.FindBySlug(c.Request().Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to resolve tenant", zap.String("slug", slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upgrade failed"})
	}

	if tenant.ID != claims.TenantID {
		log.Warn("Cross-tenant upgrade attempt",
			zap.Uint("requester_tenant", claims.TenantID),
			zap.Uint("target_tenant", tenant.ID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot upgrade another tenant"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	upgraded, err := h.tenants.Upgrade(c.Request().Context(), tenant.ID)
	if err != nil {
		log.Error("Failed to upgrade tenant", zap.Uint("tenant_id", tenant.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upgrade failed"})
	}
	tenant = upgraded

	prometheus.TenantUpgradeCounter.Inc()
	log.Info("Tenant upgraded",
		zap.String("slug", tenant.Slug),
		zap.Uint("tenant_id", tenant.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"tenant": echo.Map{
			"slug": tenant.Slug,
			"plan": tenant.Plan,
		},
	})
}
