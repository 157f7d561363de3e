package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RefreshScheduler periodically forces a snapshot refresh so readers rarely
// hit the stale path at all
type RefreshScheduler struct {
	coordinator *SnapshotCoordinator
	logger      *logrus.Logger
	cron        *cron.Cron

	mu        sync.RWMutex
	jobs      map[string]JobInfo
	isRunning bool
}

// JobInfo represents information about a scheduled job
type JobInfo struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Schedule   string        `json:"schedule"`
	LastRun    time.Time     `json:"last_run"`
	Status     string        `json:"status"`
	RunCount   int           `json:"run_count"`
	ErrorCount int           `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// NewRefreshScheduler creates a scheduler around the coordinator
func NewRefreshScheduler(coordinator *SnapshotCoordinator, logger *logrus.Logger) *RefreshScheduler {
	cronLogger := cron.VerbosePrintfLogger(logger)
	return &RefreshScheduler{
		coordinator: coordinator,
		logger:      logger,
		cron:        cron.New(cron.WithLogger(cronLogger)),
		jobs:        make(map[string]JobInfo),
	}
}

// Start schedules the refresh job and starts the cron scheduler
func (s *RefreshScheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("refresh scheduler is already running")
	}

	if err := s.addJob("snapshot_refresh", schedule, "Snapshot refresh", s.refreshSnapshots); err != nil {
		return fmt.Errorf("failed to schedule snapshot refresh job: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	s.logger.WithFields(logrus.Fields{
		"component": "refresh_scheduler",
		"schedule":  schedule,
	}).Info("Refresh scheduler started")

	return nil
}

// addJob adds a new scheduled job
func (s *RefreshScheduler) addJob(id, schedule, name string, jobFunc func()) error {
	if _, err := s.cron.AddFunc(schedule, func() {
		s.runJob(id, name, jobFunc)
	}); err != nil {
		return fmt.Errorf("failed to add job %s: %w", id, err)
	}

	s.jobs[id] = JobInfo{
		ID:       id,
		Name:     name,
		Schedule: schedule,
		Status:   "scheduled",
	}

	s.logger.WithFields(logrus.Fields{
		"component": "refresh_scheduler",
		"job_id":    id,
		"job_name":  name,
		"schedule":  schedule,
	}).Info("Scheduled job added")

	return nil
}

// runJob executes a job with error handling and bookkeeping
func (s *RefreshScheduler) runJob(id, name string, jobFunc func()) {
	s.mu.Lock()
	job, exists := s.jobs[id]
	if !exists {
		s.mu.Unlock()
		return
	}
	job.Status = "running"
	job.LastRun = time.Now()
	job.RunCount++
	s.jobs[id] = job
	s.mu.Unlock()

	logger := s.logger.WithFields(logrus.Fields{
		"component": "refresh_scheduler",
		"job_id":    id,
		"job_name":  name,
		"run_count": job.RunCount,
	})

	logger.Info("Starting scheduled job")
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Job panicked")
			s.updateJobStatus(id, "failed", fmt.Sprintf("panic: %v", r), time.Since(startTime))
		}
	}()

	jobFunc()

	duration := time.Since(startTime)
	logger.WithField("duration", duration).Info("Job completed")
	s.updateJobStatus(id, "completed", "", duration)
}

// updateJobStatus updates the bookkeeping of a job
func (s *RefreshScheduler) updateJobStatus(id, status, errorMsg string, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return
	}

	job.Status = status
	job.Duration = duration
	if errorMsg != "" {
		job.ErrorCount++
		job.LastError = errorMsg
	}
	s.jobs[id] = job
}

// refreshSnapshots forces a refresh of every registered dataset
func (s *RefreshScheduler) refreshSnapshots() {
	logger := s.logger.WithFields(logrus.Fields{
		"component": "refresh_scheduler",
		"job":       "snapshot_refresh",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*backgroundRefreshTimeout)
	defer cancel()

	result, err := s.coordinator.ForceRefresh(ctx)
	if err != nil {
		logger.WithError(err).Error("Scheduled snapshot refresh failed")
		s.updateJobStatus("snapshot_refresh", "failed", err.Error(), 0)
		return
	}

	logger.WithFields(logrus.Fields{
		"fetched_at":  result.FetchedAt,
		"collections": result.Collections,
	}).Info("Scheduled snapshot refresh completed")
}

// TriggerRefresh manually triggers the refresh job asynchronously. It works
// whether or not the cron scheduler was started.
func (s *RefreshScheduler) TriggerRefresh() {
	s.mu.Lock()
	if _, exists := s.jobs["snapshot_refresh"]; !exists {
		s.jobs["snapshot_refresh"] = JobInfo{
			ID:     "snapshot_refresh",
			Name:   "Snapshot refresh",
			Status: "manual",
		}
	}
	s.mu.Unlock()

	go s.runJob("snapshot_refresh", "Snapshot refresh", s.refreshSnapshots)
}

// GetJobs returns information about all scheduled jobs
func (s *RefreshScheduler) GetJobs() map[string]JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make(map[string]JobInfo, len(s.jobs))
	for k, v := range s.jobs {
		jobs[k] = v
	}
	return jobs
}

// IsRunning reports whether the scheduler has been started
func (s *RefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Stop stops the cron scheduler, waiting briefly for running jobs
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		s.logger.WithField("component", "refresh_scheduler").Info("Cron scheduler stopped gracefully")
	case <-time.After(5 * time.Second):
		s.logger.WithField("component", "refresh_scheduler").Warn("Cron scheduler stop timed out")
	}

	s.isRunning = false
}
