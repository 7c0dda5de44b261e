package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/applytrack/internal/apipaths"
	"github.com/applytrack/internal/config"
	"github.com/applytrack/internal/db"
	"github.com/applytrack/internal/session"
)

const testSecret = "test-secret"

func jwtConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Auth: config.AuthConfig{
			Enabled:   true,
			Mode:      config.AuthModeJWT,
			JWTSecret: testSecret,
		},
	}
}

func setupTestServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.Init(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("db.Init() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	dist := t.TempDir()
	if err := os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html>app</html>"), 0644); err != nil {
		t.Fatalf("failed to write index.html: %v", err)
	}
	cfg.WebDistDir = dist

	return NewServer(cfg, database).Handler()
}

func createTestToken(t *testing.T, userID, name string) string {
	t.Helper()
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": map[string]interface{}{"id": userID, "name": name},
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tkn.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// do sends a request, authenticating with token when it is not empty
func do(t *testing.T, h http.Handler, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_RouteProtection(t *testing.T) {
	h := setupTestServer(t, jwtConfig())
	token := createTestToken(t, "github_1", "alice")

	tests := []struct {
		name         string
		path         string
		token        string
		wantStatus   int
		wantLocation string
	}{
		{"dashboard without token", "/dashboard", "", http.StatusTemporaryRedirect, "/auth/signin?callbackUrl=%2Fdashboard"},
		{"nested page without token", "/jobs/123?tab=notes", "", http.StatusTemporaryRedirect, "/auth/signin?callbackUrl=" + url.QueryEscape("/jobs/123?tab=notes")},
		{"settings without token", "/settings", "", http.StatusTemporaryRedirect, "/auth/signin?callbackUrl=%2Fsettings"},
		{"api without token", "/api/jobs", "", http.StatusTemporaryRedirect, "/auth/signin?callbackUrl=%2Fapi%2Fjobs"},
		{"profile api without token", "/api/profile", "", http.StatusTemporaryRedirect, "/auth/signin?callbackUrl=%2Fapi%2Fprofile"},
		{"garbage token", "/dashboard", "not-a-jwt", http.StatusTemporaryRedirect, "/auth/signin?callbackUrl=%2Fdashboard"},

		{"dashboard with token", "/dashboard", token, http.StatusOK, ""},
		{"api with token", "/api/jobs", token, http.StatusOK, ""},
		{"public landing page", "/", "", http.StatusOK, ""},
		{"lookalike prefix", "/dashboardx", "", http.StatusOK, ""},
		{"health", "/api/health", "", http.StatusOK, ""},
		{"sign-in page", "/auth/signin", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, tt.token, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("GET %s status = %d, want %d (body %s)", tt.path, rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("GET %s Location = %q, want %q", tt.path, got, tt.wantLocation)
			}
		})
	}
}

func TestServer_BearerToken(t *testing.T) {
	h := setupTestServer(t, jwtConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+createTestToken(t, "github_1", "alice"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestServer_Me(t *testing.T) {
	h := setupTestServer(t, jwtConfig())

	rec := do(t, h, http.MethodGet, "/api/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous /api/me status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = do(t, h, http.MethodGet, "/api/me", createTestToken(t, "github_1", "alice"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/api/me status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got session.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode /api/me: %v", err)
	}
	if got.UserID != "github_1" || got.Name != "alice" {
		t.Errorf("/api/me = %+v, want github_1/alice", got)
	}
}

func TestServer_JobLifecycle(t *testing.T) {
	h := setupTestServer(t, jwtConfig())
	alice := createTestToken(t, "github_1", "alice")
	bob := createTestToken(t, "github_2", "bob")

	rec := do(t, h, http.MethodPost, "/api/jobs", alice, JobRequest{Title: "Backend Engineer", Company: "Acme"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var job db.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("failed to decode job: %v", err)
	}

	rec = do(t, h, http.MethodGet, apipaths.JobByID(job.ID), alice, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Another user cannot see it
	rec = do(t, h, http.MethodGet, apipaths.JobByID(job.ID), bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get as other user status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = do(t, h, http.MethodPut, apipaths.JobByID(job.ID), alice, JobRequest{Title: "Staff Engineer", Company: "Acme"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Staff Engineer") {
		t.Errorf("update body = %s, want new title", rec.Body.String())
	}

	rec = do(t, h, http.MethodDelete, apipaths.JobByID(job.ID), alice, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	rec = do(t, h, http.MethodGet, apipaths.JobByID(job.ID), alice, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServer_JobValidation(t *testing.T) {
	h := setupTestServer(t, jwtConfig())
	token := createTestToken(t, "github_1", "alice")

	tests := []struct {
		name string
		req  JobRequest
	}{
		{"missing title", JobRequest{Company: "Acme"}},
		{"missing company", JobRequest{Title: "Engineer"}},
		{"bad url", JobRequest{Title: "Engineer", Company: "Acme", URL: "ftp://example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/jobs", token, tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}

	rec := do(t, h, http.MethodGet, "/api/jobs/not-a-uuid", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServer_Applications(t *testing.T) {
	h := setupTestServer(t, jwtConfig())
	token := createTestToken(t, "github_1", "alice")

	rec := do(t, h, http.MethodPost, "/api/jobs", token, JobRequest{Title: "Engineer", Company: "Acme"})
	var job db.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("failed to decode job: %v", err)
	}

	rec = do(t, h, http.MethodPost, "/api/applications", token, CreateApplicationRequest{JobID: job.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var app db.Application
	if err := json.Unmarshal(rec.Body.Bytes(), &app); err != nil {
		t.Fatalf("failed to decode application: %v", err)
	}
	if app.Status != "saved" || app.AppliedAt != nil {
		t.Errorf("new application = %+v, want saved with no applied_at", app)
	}

	status := "applied"
	rec = do(t, h, http.MethodPatch, apipaths.ApplicationByID(app.ID), token, UpdateApplicationRequest{Status: &status})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, want %d", rec.Code, http.StatusOK)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &app); err != nil {
		t.Fatalf("failed to decode application: %v", err)
	}
	if app.AppliedAt == nil {
		t.Error("applied_at should be set once the application is applied")
	}

	rec = do(t, h, http.MethodGet, "/api/applications?status=applied", token, nil)
	var apps []db.Application
	if err := json.Unmarshal(rec.Body.Bytes(), &apps); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(apps) != 1 {
		t.Errorf("filtered list has %d applications, want 1", len(apps))
	}

	rec = do(t, h, http.MethodGet, "/api/applications?status=ghosted", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status filter = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = do(t, h, http.MethodPost, "/api/applications", token, CreateApplicationRequest{JobID: "00000000-0000-0000-0000-000000000000"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("application for unknown job = %d, want %d", rec.Code, http.StatusNotFound)
	}

	missing := "00000000-0000-0000-0000-000000000000"
	rec = do(t, h, http.MethodPatch, apipaths.ApplicationByID(app.ID), token, UpdateApplicationRequest{ResumeID: &missing})
	if rec.Code != http.StatusNotFound {
		t.Errorf("patch with unknown resume = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = do(t, h, http.MethodPost, "/api/resumes", createTestToken(t, "github_2", "bob"), ResumeRequest{Name: "Bob", Content: "Bob, designer"})
	var foreign db.Resume
	if err := json.Unmarshal(rec.Body.Bytes(), &foreign); err != nil {
		t.Fatalf("failed to decode resume: %v", err)
	}
	rec = do(t, h, http.MethodPatch, apipaths.ApplicationByID(app.ID), token, UpdateApplicationRequest{ResumeID: &foreign.ID})
	if rec.Code != http.StatusNotFound {
		t.Errorf("patch with another user's resume = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServer_ResumesAndProfile(t *testing.T) {
	h := setupTestServer(t, jwtConfig())
	token := createTestToken(t, "github_1", "alice")

	rec := do(t, h, http.MethodPost, "/api/resumes", token, ResumeRequest{Name: "General", Content: "Alice, engineer"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create resume status = %d, want %d", rec.Code, http.StatusCreated)
	}
	var resume db.Resume
	if err := json.Unmarshal(rec.Body.Bytes(), &resume); err != nil {
		t.Fatalf("failed to decode resume: %v", err)
	}
	rec = do(t, h, http.MethodGet, apipaths.ResumeByID(resume.ID), token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Alice, engineer") {
		t.Errorf("get resume = %d %s, want stored content", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodDelete, apipaths.ResumeByID(resume.ID), token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete resume status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	rec = do(t, h, http.MethodPost, "/api/resumes", token, ResumeRequest{Name: "Empty"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty resume status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// Unsaved profile is seeded from the session
	rec = do(t, h, http.MethodGet, "/api/profile", token, nil)
	var profile db.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if profile.DisplayName != "alice" {
		t.Errorf("default display name = %q, want alice", profile.DisplayName)
	}

	rec = do(t, h, http.MethodPut, "/api/profile", token, ProfileRequest{DisplayName: "Alice A.", Email: "not-an-email"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad email status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec = do(t, h, http.MethodPut, "/api/profile", token, ProfileRequest{DisplayName: "Alice A.", Email: "alice@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile status = %d, want %d", rec.Code, http.StatusOK)
	}
	rec = do(t, h, http.MethodGet, "/api/profile", token, nil)
	if !strings.Contains(rec.Body.String(), "alice@example.com") {
		t.Errorf("profile = %s, want saved email", rec.Body.String())
	}
}

func TestServer_AuthPages(t *testing.T) {
	h := setupTestServer(t, jwtConfig())

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{"sign-in", "/auth/signin?callbackUrl=%2Fjobs", "", http.StatusOK},
		{"configuration error", "/auth/error?error=Configuration", "", http.StatusInternalServerError},
		{"access denied", "/auth/error?error=AccessDenied", "", http.StatusForbidden},
		{"unknown error code", "/auth/error?error=Bogus", "", http.StatusOK},
		{"provider login without service mode", "/auth/github/login", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, tt.token, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.wantStatus)
			}
		})
	}

	// Signed-in users skip the sign-in page
	rec := do(t, h, http.MethodGet, "/auth/signin?callbackUrl=%2Fjobs", createTestToken(t, "github_1", "alice"), nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/jobs" {
		t.Errorf("signed-in sign-in = %d %q, want 302 /jobs", rec.Code, rec.Header().Get("Location"))
	}

	// Control characters in the callback never reach the Location header
	for _, callback := range []string{"%2F%09%2Fevil.example.com", "%2F%0A%2Fevil.example.com"} {
		rec = do(t, h, http.MethodGet, "/auth/signin?callbackUrl="+callback, createTestToken(t, "github_1", "alice"), nil)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard" {
			t.Errorf("callback %s = %d %q, want 302 /dashboard", callback, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestSafeCallbackURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "/dashboard"},
		{"/jobs/1?tab=notes", "/jobs/1?tab=notes"},
		{"https://evil.example.com", "/dashboard"},
		{"//evil.example.com", "/dashboard"},
		{"/\\evil.example.com", "/dashboard"},
		{"/auth/signin", "/dashboard"},
		{"relative", "/dashboard"},
		{"/\t/evil.example.com", "/dashboard"},
		{"/\n/evil.example.com", "/dashboard"},
		{"/\r\n/evil.example.com", "/dashboard"},
		{"/jobs\\..\\evil", "/dashboard"},
		{"/%2F/evil.example.com", "/dashboard"},
		{"/auth", "/dashboard"},
		{"/settings#profile", "/settings#profile"},
	}
	for _, tt := range tests {
		if got := safeCallbackURL(tt.raw); got != tt.want {
			t.Errorf("safeCallbackURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestServer_Metrics(t *testing.T) {
	h := setupTestServer(t, jwtConfig())

	do(t, h, http.MethodGet, "/dashboard", "", nil)
	do(t, h, http.MethodGet, "/dashboard", createTestToken(t, "github_1", "alice"), nil)

	rec := do(t, h, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`applytrack_routeguard_decisions_total{decision="deny"} 1`,
		`applytrack_routeguard_decisions_total{decision="allow"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestServer_AuthDisabled(t *testing.T) {
	h := setupTestServer(t, &config.Config{Environment: "test"})

	rec := do(t, h, http.MethodGet, "/dashboard", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("dashboard status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = do(t, h, http.MethodGet, "/api/me", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"local"`) {
		t.Errorf("/api/me = %d %s, want local session", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/api/jobs", "", JobRequest{Title: "Engineer", Company: "Acme"})
	if rec.Code != http.StatusCreated {
		t.Errorf("create job status = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestServer_UnknownAPIPath(t *testing.T) {
	h := setupTestServer(t, jwtConfig())

	rec := do(t, h, http.MethodGet, "/api/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want JSON", ct)
	}
}

func TestServer_SystemStatus(t *testing.T) {
	h := setupTestServer(t, jwtConfig())

	// Not a protected prefix, so the API layer answers 401 instead of redirecting
	rec := do(t, h, http.MethodGet, "/api/system", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = do(t, h, http.MethodGet, "/api/system", createTestToken(t, "github_1", "alice"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got SystemStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode system status: %v", err)
	}
	if got.System == nil || got.System.Database.SizeBytes == 0 {
		t.Errorf("system = %+v, want database size", got.System)
	}
	if got.Cleanup.LastRun != nil {
		t.Errorf("last run = %v, want none before the first cleanup", got.Cleanup.LastRun)
	}
}
