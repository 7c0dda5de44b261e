package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/applytrack/internal/db"
	"github.com/applytrack/internal/domain"
	"github.com/applytrack/internal/httputil"
	"github.com/applytrack/internal/validation"
)

// CreateApplicationRequest represents a create application request
type CreateApplicationRequest struct {
	JobID    string  `json:"job_id"`
	ResumeID *string `json:"resume_id"`
	Status   string  `json:"status"`
	Notes    string  `json:"notes"`
}

// UpdateApplicationRequest changes only the fields that are present
type UpdateApplicationRequest struct {
	ResumeID *string `json:"resume_id"`
	Status   *string `json:"status"`
	Notes    *string `json:"notes"`
}

func (s *Server) listApplications(c *gin.Context) {
	sess, _ := s.currentSession(c)

	status := httputil.QueryLower(c, "status")
	if status != "" {
		if err := validation.ValidateApplicationStatus(status); err != nil {
			respondError(c, domain.WrapValidationError("status", err), "Invalid status filter")
			return
		}
	}

	apps, err := s.database.ListApplications(sess.UserID, status)
	if err != nil {
		respondError(c, err, "Failed to list applications")
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (s *Server) createApplication(c *gin.Context) {
	sess, _ := s.currentSession(c)

	var req CreateApplicationRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.JobID == "" {
		respondError(c, domain.ErrRequiredFieldMissing, "job_id is required")
		return
	}
	if req.Status == "" {
		req.Status = validation.StatusSaved
	}
	if err := validation.ValidateApplicationStatus(req.Status); err != nil {
		respondError(c, domain.WrapValidationError("status", err), "Invalid application")
		return
	}
	if err := validation.ValidateNotes(req.Notes); err != nil {
		respondError(c, domain.WrapValidationError("notes", err), "Invalid application")
		return
	}

	app := db.NewApplication(sess.UserID, req.JobID, req.Status)
	app.ResumeID = emptyToNil(req.ResumeID)
	app.Notes = req.Notes
	markApplied(app)

	if err := s.database.CreateApplication(app); err != nil {
		respondError(c, err, "Failed to create application")
		return
	}

	slog.InfoContext(c.Request.Context(), "application created", "application_id", app.ID, "job_id", app.JobID, "status", app.Status)
	c.JSON(http.StatusCreated, app)
}

func (s *Server) getApplication(c *gin.Context) {
	sess, _ := s.currentSession(c)

	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid application ID"})
		return
	}

	app, err := s.database.GetApplication(sess.UserID, id)
	if err != nil {
		respondError(c, err, "Application not available")
		return
	}
	c.JSON(http.StatusOK, app)
}

func (s *Server) updateApplication(c *gin.Context) {
	sess, _ := s.currentSession(c)

	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid application ID"})
		return
	}

	var req UpdateApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := s.database.GetApplication(sess.UserID, id)
	if err != nil {
		respondError(c, err, "Application not available")
		return
	}

	if req.Status != nil {
		if err := validation.ValidateApplicationStatus(*req.Status); err != nil {
			respondError(c, domain.WrapValidationError("status", err), "Invalid application")
			return
		}
		app.Status = *req.Status
	}
	if req.Notes != nil {
		if err := validation.ValidateNotes(*req.Notes); err != nil {
			respondError(c, domain.WrapValidationError("notes", err), "Invalid application")
			return
		}
		app.Notes = *req.Notes
	}
	if req.ResumeID != nil {
		app.ResumeID = emptyToNil(req.ResumeID)
	}
	markApplied(app)

	if err := s.database.UpdateApplication(app); err != nil {
		respondError(c, err, "Failed to update application")
		return
	}
	c.JSON(http.StatusOK, app)
}

func (s *Server) deleteApplication(c *gin.Context) {
	sess, _ := s.currentSession(c)

	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid application ID"})
		return
	}

	if err := s.database.DeleteApplication(sess.UserID, id); err != nil {
		respondError(c, err, "Failed to delete application")
		return
	}
	c.Status(http.StatusNoContent)
}

// markApplied stamps AppliedAt the first time an application leaves "saved"
func markApplied(app *db.Application) {
	if app.AppliedAt == nil && app.Status != validation.StatusSaved {
		now := time.Now()
		app.AppliedAt = &now
	}
}

// emptyToNil treats "" as "no resume" so clients can detach with {"resume_id": ""}
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
