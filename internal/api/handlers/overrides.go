package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/footyedge/reconciler/internal/audit"
	"github.com/footyedge/reconciler/internal/reconcile"
	"github.com/footyedge/reconciler/pkg/utils"
)

type OverrideHandler struct {
	auditDB *audit.Store
	logger  *logrus.Logger
}

func NewOverrideHandler(auditDB *audit.Store, logger *logrus.Logger) *OverrideHandler {
	return &OverrideHandler{auditDB: auditDB, logger: logger}
}

// ListOverrides returns the full versioned override history, newest
// first.
func (h *OverrideHandler) ListOverrides(c *gin.Context) {
	rows, err := h.auditDB.ListOverrides()
	if err != nil {
		h.logger.WithError(err).Error("failed to list overrides")
		utils.SendInternalError(c, "failed to list overrides")
		return
	}
	utils.SendSuccess(c, rows)
}

type addOverrideRequest struct {
	RecordID string `json:"record_id" binding:"required"`
	Field    string `json:"field" binding:"required"`
	Value    string `json:"value" binding:"required"`
	Note     string `json:"note"`
}

// AddOverride appends a new version of a manual correction. It takes
// effect on the next reconciliation run.
func (h *OverrideHandler) AddOverride(c *gin.Context) {
	var req addOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid override payload", err.Error())
		return
	}
	switch req.Field {
	case reconcile.FieldTeam, reconcile.FieldPosition, reconcile.FieldPrice,
		reconcile.FieldBreakEven, reconcile.FieldName:
	default:
		utils.SendValidationError(c, "unknown override field", req.Field)
		return
	}

	row, err := h.auditDB.AddOverride(req.RecordID, req.Field, req.Value, req.Note)
	if err != nil {
		h.logger.WithError(err).Error("failed to add override")
		utils.SendInternalError(c, "failed to add override")
		return
	}
	utils.SendCreated(c, row)
}
