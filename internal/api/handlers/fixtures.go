package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-data-service/internal/fpl"
	"github.com/stitts-dev/fpl-data-service/internal/search"
	"github.com/stitts-dev/fpl-data-service/internal/services"
	"github.com/stitts-dev/fpl-data-service/internal/utils"
	"github.com/stitts-dev/fpl-data-service/internal/views"
)

// FixtureHandler serves fixture and gameweek query tools
type FixtureHandler struct {
	coordinator *services.SnapshotCoordinator
	logger      *logrus.Logger
}

// NewFixtureHandler creates a new fixture handler
func NewFixtureHandler(coordinator *services.SnapshotCoordinator, logger *logrus.Logger) *FixtureHandler {
	return &FixtureHandler{
		coordinator: coordinator,
		logger:      logger,
	}
}

func (h *FixtureHandler) getSnapshots(c *gin.Context) (*fpl.Bootstrap, []fpl.Fixture, bool) {
	rawBoot, err := h.coordinator.Get(c.Request.Context(), services.DatasetBootstrap, true)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load bootstrap snapshot")
		utils.SendServiceUnavailable(c, "fixture data is currently unavailable")
		return nil, nil, false
	}
	boot, err := fpl.ParseBootstrap(rawBoot)
	if err != nil {
		h.logger.WithError(err).Error("Failed to decode bootstrap snapshot")
		utils.SendInternalError(c, "failed to decode fixture data")
		return nil, nil, false
	}

	rawFixtures, err := h.coordinator.Get(c.Request.Context(), services.DatasetFixtures, true)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load fixtures snapshot")
		utils.SendServiceUnavailable(c, "fixture data is currently unavailable")
		return nil, nil, false
	}
	fixtures, err := fpl.ParseFixtures(rawFixtures)
	if err != nil {
		h.logger.WithError(err).Error("Failed to decode fixtures snapshot")
		utils.SendInternalError(c, "failed to decode fixture data")
		return nil, nil, false
	}

	return boot, fixtures, true
}

// GetFixtureDifficulty aggregates upcoming fixture difficulty per team
func (h *FixtureHandler) GetFixtureDifficulty(c *gin.Context) {
	window := views.DefaultGameweekWindow
	if raw := c.Query("gameweeks"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.SendBadRequest(c, "gameweeks must be a positive integer")
			return
		}
		window = parsed
	}

	boot, fixtures, ok := h.getSnapshots(c)
	if !ok {
		return
	}

	var teamIDs []int
	if raw := c.Query("teams"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, ok := search.ResolveTeam(boot, part)
			if !ok {
				utils.SendBadRequest(c, "unknown team: "+strings.TrimSpace(part))
				return
			}
			teamIDs = append(teamIDs, id)
		}
	}

	utils.SendSuccess(c, views.FixtureDifficulty(boot, fixtures, teamIDs, window))
}

// GetCurrentGameweek returns the active or upcoming gameweek
func (h *FixtureHandler) GetCurrentGameweek(c *gin.Context) {
	rawBoot, err := h.coordinator.Get(c.Request.Context(), services.DatasetBootstrap, true)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load bootstrap snapshot")
		utils.SendServiceUnavailable(c, "gameweek data is currently unavailable")
		return
	}
	boot, err := fpl.ParseBootstrap(rawBoot)
	if err != nil {
		h.logger.WithError(err).Error("Failed to decode bootstrap snapshot")
		utils.SendInternalError(c, "failed to decode gameweek data")
		return
	}

	gameweek := views.CurrentGameweek(boot)
	if gameweek == nil {
		utils.SendNotFound(c, "no active or upcoming gameweek")
		return
	}

	utils.SendSuccess(c, gameweek)
}
