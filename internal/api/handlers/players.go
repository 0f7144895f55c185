package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/footyedge/reconciler/internal/models"
	"github.com/footyedge/reconciler/internal/services"
	"github.com/footyedge/reconciler/internal/store"
	"github.com/footyedge/reconciler/pkg/utils"
)

type PlayerHandler struct {
	store  *store.Store
	cache  *services.CacheService
	logger *logrus.Logger
}

func NewPlayerHandler(st *store.Store, cache *services.CacheService, logger *logrus.Logger) *PlayerHandler {
	return &PlayerHandler{store: st, cache: cache, logger: logger}
}

// ListPlayers returns the canonical set, optionally filtered by team
// (full name or abbreviation) and position code.
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	records, err := h.loadAll(c)
	if err != nil {
		utils.SendInternalError(c, "failed to load canonical store")
		return
	}

	teamQuery := strings.TrimSpace(c.Query("team"))
	team := models.ResolveTeam(teamQuery)
	// A filter value that resolves to nothing in the 18-team set is a
	// miss, not a request for the Unknown placeholder.
	if teamQuery != "" && team == models.TeamUnknown && !strings.EqualFold(teamQuery, models.TeamUnknown) {
		utils.SendSuccess(c, []models.PlayerRecord{})
		return
	}
	position := strings.ToUpper(strings.TrimSpace(c.Query("position")))

	filtered := records[:0:0]
	for _, rec := range records {
		if teamQuery != "" && rec.Team != team {
			continue
		}
		if position != "" && !strings.Contains(rec.Position, position) {
			continue
		}
		filtered = append(filtered, rec)
	}
	utils.SendSuccess(c, filtered)
}

// GetPlayer returns a single record by stable ID.
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	records, err := h.loadAll(c)
	if err != nil {
		utils.SendInternalError(c, "failed to load canonical store")
		return
	}

	id := c.Param("id")
	for _, rec := range records {
		if rec.ID == id {
			utils.SendSuccess(c, rec)
			return
		}
	}
	utils.SendNotFound(c, "player not found")
}

// loadAll serves the record set from cache when possible, falling back
// to a direct store read.
func (h *PlayerHandler) loadAll(c *gin.Context) ([]models.PlayerRecord, error) {
	var records []models.PlayerRecord
	if err := h.cache.Get(c.Request.Context(), services.CacheKeyPlayers, &records); err == nil {
		return records, nil
	}

	records, err := h.store.Load()
	if err != nil {
		h.logger.WithError(err).Error("canonical store read failed")
		return nil, err
	}
	if err := h.cache.Set(c.Request.Context(), services.CacheKeyPlayers, records, 5*time.Minute); err != nil {
		h.logger.WithError(err).Warn("failed to cache player list")
	}
	return records, nil
}
