package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/applytrack/internal/db"
	"github.com/applytrack/internal/domain"
	"github.com/applytrack/internal/httputil"
	"github.com/applytrack/internal/validation"
)

// JobRequest is the body of create and update job requests
type JobRequest struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
	Notes    string `json:"notes"`
}

func (r *JobRequest) validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Company = strings.TrimSpace(r.Company)
	r.URL = strings.TrimSpace(r.URL)

	if err := validation.ValidateRequiredText("title", r.Title); err != nil {
		return domain.WrapValidationError("title", err)
	}
	if err := validation.ValidateRequiredText("company", r.Company); err != nil {
		return domain.WrapValidationError("company", err)
	}
	if err := validation.ValidateURL(r.URL); err != nil {
		return domain.WrapValidationError("url", err)
	}
	if err := validation.ValidateNotes(r.Notes); err != nil {
		return domain.WrapValidationError("notes", err)
	}
	return nil
}

func (s *Server) listJobs(c *gin.Context) {
	sess, _ := s.currentSession(c)

	jobs, err := s.database.ListJobs(sess.UserID)
	if err != nil {
		respondError(c, err, "Failed to list jobs")
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (s *Server) createJob(c *gin.Context) {
	sess, _ := s.currentSession(c)

	var req JobRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, err, "Invalid job")
		return
	}

	job := db.NewJob(sess.UserID, req.Title, req.Company)
	job.Location = req.Location
	job.URL = req.URL
	job.Notes = req.Notes

	if err := s.database.CreateJob(job); err != nil {
		respondError(c, err, "Failed to create job")
		return
	}

	slog.InfoContext(c.Request.Context(), "job created", "job_id", job.ID, "user_id", sess.UserID)
	c.JSON(http.StatusCreated, job)
}

func (s *Server) getJob(c *gin.Context) {
	sess, _ := s.currentSession(c)

	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid job ID"})
		return
	}

	job, err := s.database.GetJob(sess.UserID, id)
	if err != nil {
		respondError(c, err, "Job not available")
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) updateJob(c *gin.Context) {
	sess, _ := s.currentSession(c)

	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid job ID"})
		return
	}

	var req JobRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, err, "Invalid job")
		return
	}

	job, err := s.database.GetJob(sess.UserID, id)
	if err != nil {
		respondError(c, err, "Job not available")
		return
	}
	job.Title = req.Title
	job.Company = req.Company
	job.Location = req.Location
	job.URL = req.URL
	job.Notes = req.Notes

	if err := s.database.UpdateJob(job); err != nil {
		respondError(c, err, "Failed to update job")
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) deleteJob(c *gin.Context) {
	sess, _ := s.currentSession(c)

	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid job ID"})
		return
	}

	if err := s.database.DeleteJob(sess.UserID, id); err != nil {
		respondError(c, err, "Failed to delete job")
		return
	}

	slog.InfoContext(c.Request.Context(), "job deleted", "job_id", id, "user_id", sess.UserID)
	c.Status(http.StatusNoContent)
}
