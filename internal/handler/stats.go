package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mapacultural/eventos-sync/internal/cache"
	"github.com/mapacultural/eventos-sync/internal/metrics"
	"github.com/mapacultural/eventos-sync/internal/repository"
)

const statsTTL = 30 * time.Minute

// StatsHandler serves the aggregate dashboard view.
type StatsHandler struct {
	Stats *repository.StatsRepo
	Logs  *repository.SyncLogRepo
	Cache *cache.Cache
}

// GetStats returns the headline counters, the per-language and per-municipio
// distributions and the latest sync log, cached for 30 minutes under the
// stats: namespace.
func (h *StatsHandler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	const key = "stats:geral"
	var cached echo.Map
	if h.Cache.Get(ctx, key, &cached) {
		metrics.CacheHits.Inc()
		return c.JSON(http.StatusOK, cached)
	}
	metrics.CacheMisses.Inc()

	overview, err := h.Stats.Overview(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "database error"})
	}
	byLanguage, err := h.Stats.ByLanguage(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "database error"})
	}
	byMunicipio, err := h.Stats.ByMunicipio(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "database error"})
	}
	lastSync, err := h.Logs.Latest(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "database error"})
	}

	resp := echo.Map{
		"success":    true,
		"geral":      overview,
		"linguagens": byLanguage,
		"municipios": byMunicipio,
		"last_sync":  lastSync,
	}
	h.Cache.Set(ctx, key, resp, statsTTL)
	return c.JSON(http.StatusOK, resp)
}
