package apipaths

// Page and API surface paths. Used by routes, the route guard and tests.

const (
	Dashboard    = "/dashboard"
	Resumes      = "/resumes"
	Applications = "/applications"
	Jobs         = "/jobs"
	Settings     = "/settings"

	APIResumes      = "/api/resumes"
	APIApplications = "/api/applications"
	APIJobs         = "/api/jobs"
	APIProfile      = "/api/profile"
	Health          = "/api/health"
	Me              = "/api/me"
	Metrics         = "/metrics"

	AuthPrefix = "/auth"
	SignIn     = "/auth/signin"
	AuthError  = "/auth/error"
)

// Protected lists the path prefixes that require a session.
var Protected = []string{
	Dashboard,
	Resumes,
	Applications,
	Jobs,
	Settings,
	APIResumes,
	APIApplications,
	APIJobs,
	APIProfile,
}

// Resource URLs, as handed to clients and used in tests
func JobByID(id string) string         { return APIJobs + "/" + id }
func ApplicationByID(id string) string { return APIApplications + "/" + id }
func ResumeByID(id string) string      { return APIResumes + "/" + id }
func ProviderLogin(provider string) string {
	return AuthPrefix + "/" + provider + "/login"
}
