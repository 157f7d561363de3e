package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-data-service/internal/services"
)

// HealthStatus is the health endpoint payload
type HealthStatus struct {
	Status    string                            `json:"status"`
	Service   string                            `json:"service"`
	Timestamp time.Time                         `json:"timestamp"`
	Checks    map[string]string                 `json:"checks,omitempty"`
	Datasets  map[string]services.DatasetStatus `json:"datasets,omitempty"`
	Jobs      map[string]services.JobInfo       `json:"jobs,omitempty"`
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	redis       *redis.Client
	coordinator *services.SnapshotCoordinator
	scheduler   *services.RefreshScheduler
	breaker     *services.CircuitBreakerService
	logger      *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(
	redis *redis.Client,
	coordinator *services.SnapshotCoordinator,
	scheduler *services.RefreshScheduler,
	breaker *services.CircuitBreakerService,
	logger *logrus.Logger,
) *HealthHandler {
	return &HealthHandler{
		redis:       redis,
		coordinator: coordinator,
		scheduler:   scheduler,
		breaker:     breaker,
		logger:      logger,
	}
}

// GetHealth returns the basic health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := HealthStatus{
		Status:    "ok",
		Service:   "fpl-data-service",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	// Check Redis connection
	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		response.Status = "unhealthy"
		response.Checks["redis"] = "failed: " + err.Error()
	} else {
		response.Checks["redis"] = "ok"
	}

	statusCode := http.StatusOK
	if response.Status != "ok" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetReady reports readiness including snapshot freshness and job status
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := HealthStatus{
		Status:    "ready",
		Service:   "fpl-data-service",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
		Datasets:  h.coordinator.Status(c.Request.Context()),
		Jobs:      h.scheduler.GetJobs(),
	}

	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		response.Status = "not_ready"
		response.Checks["redis"] = "failed: " + err.Error()
	} else {
		response.Checks["redis"] = "ok"
	}

	if h.scheduler.IsRunning() {
		response.Checks["scheduler"] = "running"
	} else {
		response.Checks["scheduler"] = "stopped"
	}

	if h.breaker != nil {
		response.Checks["circuit_breaker"] = h.breaker.State().String()
	}

	statusCode := http.StatusOK
	if response.Status != "ready" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
