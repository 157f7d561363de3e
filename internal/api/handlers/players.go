package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-data-service/internal/fpl"
	"github.com/stitts-dev/fpl-data-service/internal/search"
	"github.com/stitts-dev/fpl-data-service/internal/services"
	"github.com/stitts-dev/fpl-data-service/internal/utils"
	"github.com/stitts-dev/fpl-data-service/internal/views"
)

// PlayerHandler serves player query tools over the cached snapshot
type PlayerHandler struct {
	coordinator *services.SnapshotCoordinator
	logger      *logrus.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(coordinator *services.SnapshotCoordinator, logger *logrus.Logger) *PlayerHandler {
	return &PlayerHandler{
		coordinator: coordinator,
		logger:      logger,
	}
}

// PlayerView is a player record decorated with display labels
type PlayerView struct {
	fpl.Element
	Price    string `json:"price"`
	TeamName string `json:"team_name"`
	Position string `json:"position"`
}

func (h *PlayerHandler) decorate(boot *fpl.Bootstrap, players []fpl.Element) []PlayerView {
	decorated := make([]PlayerView, len(players))
	for i, p := range players {
		decorated[i] = PlayerView{
			Element:  p,
			Price:    views.PriceLabel(p.NowCost),
			TeamName: views.TeamShortLabel(boot, p.Team),
			Position: views.PositionShortLabel(p.ElementType),
		}
	}
	return decorated
}

// getBootstrap loads the bootstrap snapshot, translating total unavailability
// into a 503 for the caller
func (h *PlayerHandler) getBootstrap(c *gin.Context) (*fpl.Bootstrap, bool) {
	raw, err := h.coordinator.Get(c.Request.Context(), services.DatasetBootstrap, true)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load bootstrap snapshot")
		utils.SendServiceUnavailable(c, "player data is currently unavailable")
		return nil, false
	}

	boot, err := fpl.ParseBootstrap(raw)
	if err != nil {
		h.logger.WithError(err).Error("Failed to decode bootstrap snapshot")
		utils.SendInternalError(c, "failed to decode player data")
		return nil, false
	}

	return boot, true
}

// SearchPlayers ranks players against a free-text query with optional filters
func (h *PlayerHandler) SearchPlayers(c *gin.Context) {
	query := c.Query("q")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.SendBadRequest(c, "limit must be an integer")
			return
		}
		limit = parsed
	}

	position := c.Query("position")
	if position != "" {
		if _, ok := search.ParsePosition(position); !ok {
			utils.SendBadRequest(c, "position must be 1-4 or one of GKP, DEF, MID, FWD")
			return
		}
	}

	boot, ok := h.getBootstrap(c)
	if !ok {
		return
	}

	team := c.Query("team")
	if team != "" {
		if _, ok := search.ResolveTeam(boot, team); !ok {
			utils.SendBadRequest(c, "unknown team")
			return
		}
	}

	results := search.Search(boot, query, search.Filters{
		Position: position,
		Team:     team,
		Limit:    limit,
	})

	utils.SendSuccess(c, h.decorate(boot, results))
}

// ResolvePlayer returns the single best match for a player name
func (h *PlayerHandler) ResolvePlayer(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		utils.SendBadRequest(c, "name is required")
		return
	}

	boot, ok := h.getBootstrap(c)
	if !ok {
		return
	}

	player := search.ResolveOne(boot, name)
	if player == nil {
		utils.SendNotFound(c, "no player matched the given name")
		return
	}

	utils.SendSuccess(c, h.decorate(boot, []fpl.Element{*player})[0])
}

// GetPlayer returns a player by exact id
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "player id must be an integer")
		return
	}

	boot, ok := h.getBootstrap(c)
	if !ok {
		return
	}

	player := search.FindByID(boot, id)
	if player == nil {
		utils.SendNotFound(c, "no player with that id")
		return
	}

	utils.SendSuccess(c, h.decorate(boot, []fpl.Element{*player})[0])
}

// TopPlayersByPrice lists the most expensive players, optionally per position
func (h *PlayerHandler) TopPlayersByPrice(c *gin.Context) {
	elementType := 0
	if position := c.Query("position"); position != "" {
		code, ok := search.ParsePosition(position)
		if !ok {
			utils.SendBadRequest(c, "position must be 1-4 or one of GKP, DEF, MID, FWD")
			return
		}
		elementType = code
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		utils.SendBadRequest(c, "limit must be a positive integer")
		return
	}
	if limit > 100 {
		limit = 100
	}

	boot, ok := h.getBootstrap(c)
	if !ok {
		return
	}

	utils.SendSuccess(c, h.decorate(boot, views.TopByPrice(boot, elementType, limit)))
}

// UnavailablePlayers lists players that are out or at risk for the next round
func (h *PlayerHandler) UnavailablePlayers(c *gin.Context) {
	includeDoubtful := c.DefaultQuery("include_doubtful", "true") == "true"

	boot, ok := h.getBootstrap(c)
	if !ok {
		return
	}

	report := views.UnavailablePlayers(boot, includeDoubtful)

	utils.SendSuccess(c, gin.H{
		"total":            report.Total(),
		"injured_doubtful": h.decorate(boot, report.InjuredDoubtful),
		"suspended":        h.decorate(boot, report.Suspended),
		"other":            h.decorate(boot, report.Other),
	})
}
