// Package handler exposes the HTTP read API over the mirrored catalog plus
// the sync trigger. The read handlers are deliberately thin: query the
// repository, wrap the rows in a response envelope, cache the envelope in
// Redis. All reconciliation logic lives in the sync package.
package handler

import (
	"crypto/sha1"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mapacultural/eventos-sync/internal/cache"
	"github.com/mapacultural/eventos-sync/internal/metrics"
	"github.com/mapacultural/eventos-sync/internal/model"
	"github.com/mapacultural/eventos-sync/internal/repository"
)

const (
	eventosTTL    = time.Hour
	linguagensTTL = 24 * time.Hour
)

// EventHandler serves the public event and language listings.
type EventHandler struct {
	Events    *repository.EventRepo
	Languages *repository.LanguageRepo
	Cache     *cache.Cache
}

// Pagination is the paging block attached to list responses.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type eventListResponse struct {
	Success    bool                  `json:"success"`
	Data       []repository.EventRow `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

// GetEventos lists mirrored events with optional municipio, linguagem and
// periodo (futuros|passados|todos) filters. Responses are cached per filter
// combination for one hour; the sync invalidates the whole eventos:*
// namespace on completion.
func (h *EventHandler) GetEventos(c echo.Context) error {
	ctx := c.Request().Context()

	f := repository.EventFilter{
		Municipio: c.QueryParam("municipio"),
		Linguagem: c.QueryParam("linguagem"),
		Periodo:   c.QueryParam("periodo"),
		Page:      1,
		Limit:     50,
	}
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 1 {
		f.Page = p
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		switch {
		case l < 10:
			f.Limit = 10
		case l > 100:
			f.Limit = 100
		default:
			f.Limit = l
		}
	}

	key := eventosCacheKey(f)
	var cached eventListResponse
	if h.Cache.Get(ctx, key, &cached) {
		metrics.CacheHits.Inc()
		return c.JSON(http.StatusOK, cached)
	}
	metrics.CacheMisses.Inc()

	rows, total, err := h.Events.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "database error"})
	}

	pages := total / int64(f.Limit)
	if total%int64(f.Limit) != 0 {
		pages++
	}
	resp := eventListResponse{
		Success: true,
		Data:    rows,
		Pagination: Pagination{
			Page:  f.Page,
			Limit: f.Limit,
			Total: total,
			Pages: pages,
		},
	}
	h.Cache.Set(ctx, key, resp, eventosTTL)
	return c.JSON(http.StatusOK, resp)
}

// GetLinguagens lists every known language name, for the dashboard filter.
func (h *EventHandler) GetLinguagens(c echo.Context) error {
	ctx := c.Request().Context()

	const key = "linguagens:lista"
	var cached echo.Map
	if h.Cache.Get(ctx, key, &cached) {
		metrics.CacheHits.Inc()
		return c.JSON(http.StatusOK, cached)
	}
	metrics.CacheMisses.Inc()

	languages, err := h.Languages.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "database error"})
	}
	if languages == nil {
		languages = []model.Language{}
	}
	resp := echo.Map{"success": true, "data": languages, "total": len(languages)}
	h.Cache.Set(ctx, key, resp, linguagensTTL)
	return c.JSON(http.StatusOK, resp)
}

// eventosCacheKey derives a stable cache key from the filter set, keeping
// every combination in the eventos: namespace so invalidation can drop them
// all with one pattern.
func eventosCacheKey(f repository.EventFilter) string {
	raw := fmt.Sprintf("%s|%s|%s|%d|%d", f.Municipio, f.Linguagem, f.Periodo, f.Page, f.Limit)
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("eventos:%x", sum[:])
}
