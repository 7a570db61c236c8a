package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mapacultural/eventos-sync/internal/cache"
	"github.com/mapacultural/eventos-sync/internal/metrics"
	"github.com/mapacultural/eventos-sync/internal/repository"
)

const selosTTL = 24 * time.Hour

// SealHandler serves the public seal listing.
type SealHandler struct {
	Seals *repository.SealRepo
	Cache *cache.Cache
}

// publicSeal mirrors the remote API's field naming: the external id is
// exposed as "id" so dashboard filters can be passed straight back to the
// remote service.
type publicSeal struct {
	ID               *int64  `json:"id"`
	Name             string  `json:"name"`
	ShortDescription *string `json:"shortDescription"`
}

// GetSelos lists all known seals ordered by name, cached for 24 hours.
func (h *SealHandler) GetSelos(c echo.Context) error {
	ctx := c.Request().Context()

	const key = "selos:lista"
	var cached echo.Map
	if h.Cache.Get(ctx, key, &cached) {
		metrics.CacheHits.Inc()
		return c.JSON(http.StatusOK, cached)
	}
	metrics.CacheMisses.Inc()

	seals, err := h.Seals.ListOrdered(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "database error"})
	}

	out := make([]publicSeal, 0, len(seals))
	for _, s := range seals {
		out = append(out, publicSeal{
			ID:               s.ExternalID,
			Name:             s.Nome,
			ShortDescription: s.Descricao,
		})
	}
	resp := echo.Map{
		"success":   true,
		"data":      out,
		"total":     len(out),
		"timestamp": time.Now().UTC().Format("2006-01-02 15:04:05"),
	}
	h.Cache.Set(ctx, key, resp, selosTTL)
	return c.JSON(http.StatusOK, resp)
}
