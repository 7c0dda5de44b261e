package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/applytrack/internal/db"
	"github.com/applytrack/internal/domain"
	"github.com/applytrack/internal/validation"
)

// ProfileRequest replaces the user's profile
type ProfileRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Headline    string `json:"headline"`
	Location    string `json:"location"`
}

func (r *ProfileRequest) validate() error {
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.Email = strings.TrimSpace(r.Email)
	r.Headline = strings.TrimSpace(r.Headline)
	r.Location = strings.TrimSpace(r.Location)

	if err := validation.ValidateRequiredText("display_name", r.DisplayName); err != nil {
		return domain.WrapValidationError("display_name", err)
	}
	if err := validation.ValidateEmail(r.Email); err != nil {
		return domain.WrapValidationError("email", err)
	}
	if err := validation.ValidateNotes(r.Headline); err != nil {
		return domain.WrapValidationError("headline", err)
	}
	return nil
}

// getProfile returns the stored profile, or one seeded from the session
// when the user has never saved theirs
func (s *Server) getProfile(c *gin.Context) {
	sess, _ := s.currentSession(c)

	profile, err := s.database.GetProfile(sess.UserID)
	if domain.IsNotFoundError(err) {
		c.JSON(http.StatusOK, &db.Profile{UserID: sess.UserID, DisplayName: sess.Name})
		return
	}
	if err != nil {
		respondError(c, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) updateProfile(c *gin.Context) {
	sess, _ := s.currentSession(c)

	var req ProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, err, "Invalid profile")
		return
	}

	profile := &db.Profile{
		UserID:      sess.UserID,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Headline:    req.Headline,
		Location:    req.Location,
	}
	if err := s.database.UpsertProfile(profile); err != nil {
		respondError(c, err, "Failed to save profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}
