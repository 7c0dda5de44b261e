package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/applytrack/internal/cleanup"
	"github.com/applytrack/internal/system"
)

// SystemStatusResponse is shown on the settings page
type SystemStatusResponse struct {
	System  *system.SystemStats `json:"system"`
	Cleanup CleanupStatus       `json:"cleanup"`
}

// CleanupStatus reports the schedule and the last housekeeping run
type CleanupStatus struct {
	Schedule string                  `json:"schedule"`
	LastRun  *time.Time              `json:"last_run,omitempty"`
	Results  []cleanup.CleanupResult `json:"results"`
}

func (s *Server) getSystemStatus(c *gin.Context) {
	results, lastRun := s.cleanup.GetResults()

	status := CleanupStatus{
		Schedule: s.config.CleanupSchedule,
		Results:  results,
	}
	if !lastRun.IsZero() {
		status.LastRun = &lastRun
	}
	if status.Results == nil {
		status.Results = []cleanup.CleanupResult{}
	}

	c.JSON(http.StatusOK, SystemStatusResponse{
		System:  s.stats.GetSystemStats(),
		Cleanup: status,
	})
}
