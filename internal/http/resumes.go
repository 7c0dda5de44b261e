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

// ResumeRequest represents a create resume request
type ResumeRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (s *Server) listResumes(c *gin.Context) {
	sess, _ := s.currentSession(c)

	resumes, err := s.database.ListResumes(sess.UserID)
	if err != nil {
		respondError(c, err, "Failed to list resumes")
		return
	}
	c.JSON(http.StatusOK, resumes)
}

func (s *Server) createResume(c *gin.Context) {
	sess, _ := s.currentSession(c)

	var req ResumeRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateRequiredText("name", req.Name); err != nil {
		respondError(c, domain.WrapValidationError("name", err), "Invalid resume")
		return
	}
	if err := validation.ValidateResumeContent(req.Content); err != nil {
		respondError(c, domain.WrapValidationError("content", err), "Invalid resume")
		return
	}

	resume := db.NewResume(sess.UserID, req.Name, req.Content)
	if err := s.database.CreateResume(resume); err != nil {
		respondError(c, err, "Failed to create resume")
		return
	}

	slog.InfoContext(c.Request.Context(), "resume created", "resume_id", resume.ID, "user_id", sess.UserID)
	c.JSON(http.StatusCreated, resume)
}

func (s *Server) getResume(c *gin.Context) {
	sess, _ := s.currentSession(c)

	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid resume ID"})
		return
	}

	resume, err := s.database.GetResume(sess.UserID, id)
	if err != nil {
		respondError(c, err, "Resume not available")
		return
	}
	c.JSON(http.StatusOK, resume)
}

// deleteResume detaches the resume from any applications that used it
func (s *Server) deleteResume(c *gin.Context) {
	sess, _ := s.currentSession(c)

	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid resume ID"})
		return
	}

	if err := s.database.DeleteResume(sess.UserID, id); err != nil {
		respondError(c, err, "Failed to delete resume")
		return
	}
	c.Status(http.StatusNoContent)
}
