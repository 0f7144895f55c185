package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/footyedge/reconciler/internal/audit"
	"github.com/footyedge/reconciler/internal/services"
	"github.com/footyedge/reconciler/internal/store"
	"github.com/footyedge/reconciler/pkg/utils"
)

type ReconcileHandler struct {
	scheduler *services.Scheduler
	auditDB   *audit.Store
	logger    *logrus.Logger
}

func NewReconcileHandler(scheduler *services.Scheduler, auditDB *audit.Store, logger *logrus.Logger) *ReconcileHandler {
	return &ReconcileHandler{scheduler: scheduler, auditDB: auditDB, logger: logger}
}

// TriggerRun starts an on-demand reconciliation pass and returns its
// summary. A pass already holding the store lock yields a conflict.
func (h *ReconcileHandler) TriggerRun(c *gin.Context) {
	run, err := h.scheduler.RunNow(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrLocked) {
			utils.SendError(c, http.StatusConflict,
				utils.NewAppError(utils.ErrCodeLocked, "a reconciliation run is already in progress"))
			return
		}
		h.logger.WithError(err).Error("on-demand run failed")
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, run)
}

// GetStatus reports scheduler state and the last run summary.
func (h *ReconcileHandler) GetStatus(c *gin.Context) {
	utils.SendSuccess(c, h.scheduler.Status())
}

// GetRun returns the audit detail for one run.
func (h *ReconcileHandler) GetRun(c *gin.Context) {
	if h.auditDB == nil {
		utils.SendNotFound(c, "audit trail not configured")
		return
	}
	run, corrections, removals, err := h.auditDB.GetRun(c.Param("id"))
	if err != nil {
		utils.SendNotFound(c, "run not found")
		return
	}
	utils.SendSuccess(c, gin.H{
		"run":         run,
		"corrections": corrections,
		"removals":    removals,
	})
}
