package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/footyedge/reconciler/internal/audit"
	"github.com/footyedge/reconciler/internal/store"
)

type HealthHandler struct {
	store     *store.Store
	auditDB   *audit.Store
	startedAt time.Time
}

func NewHealthHandler(st *store.Store, auditDB *audit.Store) *HealthHandler {
	return &HealthHandler{store: st, auditDB: auditDB, startedAt: time.Now().UTC()}
}

// GetHealth is the liveness probe. It always answers 200 while the
// process is up, with basic system metrics attached.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	metrics := gin.H{
		"status":  "ok",
		"service": "afl-reconciler",
		"uptime":  time.Since(h.startedAt).String(),
		"time":    time.Now().UTC(),
	}

	if records, err := h.store.Load(); err == nil {
		metrics["record_count"] = len(records)
	}
	if h.auditDB != nil {
		if run, err := h.auditDB.LastRun(); err == nil && run != nil {
			metrics["last_run_at"] = run.FinishedAt
			metrics["last_run_id"] = run.ID
		}
	}

	c.JSON(http.StatusOK, metrics)
}
