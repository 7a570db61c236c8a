package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mapacultural/eventos-sync/internal/repository"
	engine "github.com/mapacultural/eventos-sync/internal/sync"
)

// SyncHandler exposes the synchronous "run now" trigger and the run status
// view over the sync engine.
type SyncHandler struct {
	Svc  *engine.Service
	Logs *repository.SyncLogRepo
}

// PostSync runs a full synchronization and blocks until it finishes. It
// answers 409 when the latest ledger row says a run is already active and
// 500 with the run's failure message when the engine aborts; on success it
// returns the final counters.
func (h *SyncHandler) PostSync(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.Svc.Run(ctx)
	if err != nil {
		if errors.Is(err, engine.ErrSyncInProgress) {
			last, _ := h.Logs.Latest(ctx)
			return c.JSON(http.StatusConflict, echo.Map{
				"success": false,
				"message": "Sincronização já em andamento",
				"sync":    last,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Sincronização concluída com sucesso",
		"stats":   stats,
	})
}

// GetSyncStatus returns the most recent ledger row, or a null sync when no
// run was ever recorded.
func (h *SyncHandler) GetSyncStatus(c echo.Context) error {
	last, err := h.Logs.Latest(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "sync": last})
}
