package controllers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"devevent/internal/delivery/http/helpers"
)

const healthCheckTimeout = 3 * time.Second

// StoreChecker hands out the shared database handle, connecting on first use.
type StoreChecker interface {
	Ensure(ctx context.Context) (*sql.DB, error)
}

// HealthStatus is the response body for GET /healthz.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type HealthController struct {
	Logger *slog.Logger
	Store  StoreChecker
}

func NewHealthController(logger *slog.Logger, store StoreChecker) *HealthController {
	return &HealthController{Logger: logger, Store: store}
}

// Health godoc
// @Summary Liveness and store reachability
// @Tags health
// @Produce json
// @Success 200 {object} controllers.HealthStatus
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /healthz [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	db, err := c.Store.Ensure(ctx)
	if err == nil {
		err = db.PingContext(ctx)
	}
	if err != nil {
		c.Logger.WarnContext(r.Context(), "health check failed", "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, "database unreachable")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthStatus{Status: "ok", Database: "up"})
}
