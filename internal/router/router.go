package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mapacultural/eventos-sync/internal/handler"
)

// Handlers groups every handler the server mounts. The fields are wired in
// cmd/server.
type Handlers struct {
	Events *handler.EventHandler
	Seals  *handler.SealHandler
	Stats  *handler.StatsHandler
	Sync   *handler.SyncHandler
	Logs   *handler.LogsHandler
}

// Register mounts all routes on the provided Echo instance. The read
// endpoints live under /v1; /healthz and /metrics sit at the root for load
// balancers and Prometheus scrapers.
func Register(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	g := e.Group("/v1")
	// Catalog reads, cached in Redis per endpoint.
	g.GET("/eventos", h.Events.GetEventos)
	g.GET("/linguagens", h.Events.GetLinguagens)
	g.GET("/selos", h.Seals.GetSelos)
	g.GET("/stats", h.Stats.GetStats)
	// Sync trigger and observability.
	g.POST("/sync", h.Sync.PostSync)
	g.GET("/sync/status", h.Sync.GetSyncStatus)
	g.GET("/logs", h.Logs.GetLogs)
}
