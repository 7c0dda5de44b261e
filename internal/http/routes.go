package http

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/applytrack/internal/apipaths"
	"github.com/applytrack/internal/domain"
)

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.engine.SetHTMLTemplate(authTemplates)

	// /auth/signin and /auth/error are served here, everything else under
	// /auth belongs to go-pkgz/auth (provider login, callback, logout)
	authHandler, _ := s.AuthHandlers()
	s.engine.Any(apipaths.AuthPrefix+"/*path", s.authRoutes(authHandler))

	// Health check endpoint (no auth required)
	s.engine.GET(apipaths.Health, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "applytrack",
		})
	})
	s.engine.GET(apipaths.Metrics, gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	// User info endpoint, answers 401 instead of redirecting
	s.engine.GET(apipaths.Me, s.getCurrentUser)

	api := s.engine.Group("/api")
	api.Use(s.requireSession())
	{
		s.setupJobRoutes(api)
		s.setupApplicationRoutes(api)
		s.setupResumeRoutes(api)
		s.setupProfileRoutes(api)
		api.GET("/system", s.getSystemStatus)
	}

	// Frontend: static assets plus the SPA shell for every page route
	s.engine.Static("/assets", filepath.Join(s.config.WebDistDir, "assets"))
	s.engine.NoRoute(s.serveApp)
}

func (s *Server) setupJobRoutes(api *gin.RouterGroup) {
	jobs := api.Group("/jobs")
	{
		jobs.GET("", s.listJobs)
		jobs.POST("", s.createJob)
		jobs.GET("/:id", s.getJob)
		jobs.PUT("/:id", s.updateJob)
		jobs.DELETE("/:id", s.deleteJob)
	}
}

func (s *Server) setupApplicationRoutes(api *gin.RouterGroup) {
	applications := api.Group("/applications")
	{
		applications.GET("", s.listApplications)
		applications.POST("", s.createApplication)
		applications.GET("/:id", s.getApplication)
		applications.PATCH("/:id", s.updateApplication)
		applications.DELETE("/:id", s.deleteApplication)
	}
}

func (s *Server) setupResumeRoutes(api *gin.RouterGroup) {
	resumes := api.Group("/resumes")
	{
		resumes.GET("", s.listResumes)
		resumes.POST("", s.createResume)
		resumes.GET("/:id", s.getResume)
		resumes.DELETE("/:id", s.deleteResume)
	}
}

func (s *Server) setupProfileRoutes(api *gin.RouterGroup) {
	api.GET("/profile", s.getProfile)
	api.PUT("/profile", s.updateProfile)
}

// getCurrentUser returns the authenticated user info
func (s *Server) getCurrentUser(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, sess)
}

// serveApp serves the SPA shell. Unknown API paths get a JSON 404 instead.
func (s *Server) serveApp(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	}
	c.File(filepath.Join(s.config.WebDistDir, "index.html"))
}
