package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/footyedge/reconciler/internal/api/handlers"
	"github.com/footyedge/reconciler/internal/audit"
	"github.com/footyedge/reconciler/internal/services"
	"github.com/footyedge/reconciler/internal/store"
)

// SetupRoutes configures all API routes on the given router group.
func SetupRoutes(group *gin.RouterGroup, st *store.Store, cache *services.CacheService, scheduler *services.Scheduler, auditDB *audit.Store, logger *logrus.Logger) {
	playerHandler := handlers.NewPlayerHandler(st, cache, logger)
	reconcileHandler := handlers.NewReconcileHandler(scheduler, auditDB, logger)
	overrideHandler := handlers.NewOverrideHandler(auditDB, logger)

	// Player endpoints
	group.GET("/players", playerHandler.ListPlayers)
	group.GET("/players/:id", playerHandler.GetPlayer)

	// Reconciliation endpoints
	group.POST("/reconcile", reconcileHandler.TriggerRun)
	group.GET("/reconcile/status", reconcileHandler.GetStatus)
	group.GET("/runs/:id", reconcileHandler.GetRun)

	// Manual override endpoints
	group.GET("/overrides", overrideHandler.ListOverrides)
	group.POST("/overrides", overrideHandler.AddOverride)
}
