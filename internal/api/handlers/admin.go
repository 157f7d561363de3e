package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-data-service/internal/services"
	"github.com/stitts-dev/fpl-data-service/internal/utils"
)

// AdminHandler exposes maintenance operations
type AdminHandler struct {
	coordinator *services.SnapshotCoordinator
	scheduler   *services.RefreshScheduler
	logger      *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(coordinator *services.SnapshotCoordinator, scheduler *services.RefreshScheduler, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		coordinator: coordinator,
		scheduler:   scheduler,
		logger:      logger,
	}
}

// ForceRefresh bypasses freshness checks and refetches every dataset.
// With async=true the refresh runs as a scheduler job and the call returns
// immediately without waiting on the upstream.
func (h *AdminHandler) ForceRefresh(c *gin.Context) {
	if c.Query("async") == "true" {
		h.scheduler.TriggerRefresh()
		h.logger.Info("Forced refresh accepted for background execution")
		c.JSON(http.StatusAccepted, utils.SuccessResponse{
			Message: "snapshot refresh started",
		})
		return
	}

	result, err := h.coordinator.ForceRefresh(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Forced refresh failed")
		utils.SendServiceUnavailable(c, "upstream refresh failed")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"fetched_at":  result.FetchedAt,
		"collections": result.Collections,
	}).Info("Forced refresh completed")

	utils.SendSuccessWithMessage(c, result, "snapshot refreshed")
}
