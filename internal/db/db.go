package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/applytrack/internal/domain"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
	dbPath string
}

// Init initializes the database connection and runs migrations
func Init(dbPath string) (*DB, error) {
	// Ensure data directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; serialize through one connection
	sqlDB.SetMaxOpenConns(1)

	db := &DB{sqlDB, dbPath}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	slog.Debug("database ready", "path", dbPath)
	return db, nil
}

// GetDBPath returns the database file path
func (db *DB) GetDBPath() string {
	return db.dbPath
}

// ============================================================================
// Jobs
// ============================================================================

func (db *DB) CreateJob(job *Job) error {
	_, err := db.Exec(
		"INSERT INTO jobs (id, user_id, title, company, location, url, notes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		job.ID, job.UserID, job.Title, job.Company, job.Location, job.URL, job.Notes, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return domain.WrapDatabaseOperation("create job", err)
	}
	return nil
}

func (db *DB) ListJobs(userID string) ([]*Job, error) {
	rows, err := db.Query(
		"SELECT id, user_id, title, company, location, url, notes, created_at, updated_at FROM jobs WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("list jobs", err)
	}
	defer rows.Close()

	jobs := []*Job{}
	for rows.Next() {
		job := &Job{}
		if err := rows.Scan(&job.ID, &job.UserID, &job.Title, &job.Company, &job.Location, &job.URL, &job.Notes, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, domain.WrapDatabaseOperation("scan job", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (db *DB) GetJob(userID, id string) (*Job, error) {
	job := &Job{}
	err := db.QueryRow(
		"SELECT id, user_id, title, company, location, url, notes, created_at, updated_at FROM jobs WHERE id = ? AND user_id = ?",
		id, userID,
	).Scan(&job.ID, &job.UserID, &job.Title, &job.Company, &job.Location, &job.URL, &job.Notes, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapNotFound(domain.ErrJobNotFound, id, err)
	}
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get job", err)
	}
	return job, nil
}

func (db *DB) UpdateJob(job *Job) error {
	job.UpdatedAt = time.Now()
	res, err := db.Exec(
		"UPDATE jobs SET title = ?, company = ?, location = ?, url = ?, notes = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		job.Title, job.Company, job.Location, job.URL, job.Notes, job.UpdatedAt, job.ID, job.UserID,
	)
	return affectedOne(res, err, "update job", domain.ErrJobNotFound, job.ID)
}

// DeleteJob removes a job together with its applications
func (db *DB) DeleteJob(userID, id string) error {
	tx, err := db.Begin()
	if err != nil {
		return domain.WrapDatabaseOperation("begin delete job", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM applications WHERE job_id = ? AND user_id = ?", id, userID); err != nil {
		return domain.WrapDatabaseOperation("delete job applications", err)
	}
	res, err := tx.Exec("DELETE FROM jobs WHERE id = ? AND user_id = ?", id, userID)
	if err := affectedOne(res, err, "delete job", domain.ErrJobNotFound, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.WrapDatabaseOperation("commit delete job", err)
	}
	return nil
}

// ============================================================================
// Applications
// ============================================================================

const applicationColumns = "id, user_id, job_id, resume_id, status, notes, applied_at, created_at, updated_at"

// CreateApplication inserts app after checking that its job (and resume, if
// any) belong to the same user
func (db *DB) CreateApplication(app *Application) error {
	if _, err := db.GetJob(app.UserID, app.JobID); err != nil {
		return err
	}
	if app.ResumeID != nil {
		if _, err := db.GetResume(app.UserID, *app.ResumeID); err != nil {
			return err
		}
	}

	_, err := db.Exec(
		"INSERT INTO applications ("+applicationColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		app.ID, app.UserID, app.JobID, nullString(app.ResumeID), app.Status, app.Notes, nullTime(app.AppliedAt), app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return domain.WrapDatabaseOperation("create application", err)
	}
	return nil
}

// ListApplications returns the user's applications, optionally filtered by status
func (db *DB) ListApplications(userID, status string) ([]*Application, error) {
	query := "SELECT " + applicationColumns + " FROM applications WHERE user_id = ?"
	args := []interface{}{userID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("list applications", err)
	}
	defer rows.Close()

	apps := []*Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, domain.WrapDatabaseOperation("scan application", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (db *DB) GetApplication(userID, id string) (*Application, error) {
	row := db.QueryRow("SELECT "+applicationColumns+" FROM applications WHERE id = ? AND user_id = ?", id, userID)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapNotFound(domain.ErrApplicationNotFound, id, err)
	}
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get application", err)
	}
	return app, nil
}

func (db *DB) UpdateApplication(app *Application) error {
	if app.ResumeID != nil {
		if _, err := db.GetResume(app.UserID, *app.ResumeID); err != nil {
			return err
		}
	}
	app.UpdatedAt = time.Now()
	res, err := db.Exec(
		"UPDATE applications SET resume_id = ?, status = ?, notes = ?, applied_at = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		nullString(app.ResumeID), app.Status, app.Notes, nullTime(app.AppliedAt), app.UpdatedAt, app.ID, app.UserID,
	)
	return affectedOne(res, err, "update application", domain.ErrApplicationNotFound, app.ID)
}

func (db *DB) DeleteApplication(userID, id string) error {
	res, err := db.Exec("DELETE FROM applications WHERE id = ? AND user_id = ?", id, userID)
	return affectedOne(res, err, "delete application", domain.ErrApplicationNotFound, id)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(s scanner) (*Application, error) {
	app := &Application{}
	var resumeID sql.NullString
	var appliedAt sql.NullTime
	if err := s.Scan(&app.ID, &app.UserID, &app.JobID, &resumeID, &app.Status, &app.Notes, &appliedAt, &app.CreatedAt, &app.UpdatedAt); err != nil {
		return nil, err
	}
	if resumeID.Valid {
		app.ResumeID = &resumeID.String
	}
	if appliedAt.Valid {
		app.AppliedAt = &appliedAt.Time
	}
	return app, nil
}

// ============================================================================
// Resumes
// ============================================================================

func (db *DB) CreateResume(resume *Resume) error {
	_, err := db.Exec(
		"INSERT INTO resumes (id, user_id, name, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		resume.ID, resume.UserID, resume.Name, resume.Content, resume.CreatedAt, resume.UpdatedAt,
	)
	if err != nil {
		return domain.WrapDatabaseOperation("create resume", err)
	}
	return nil
}

func (db *DB) ListResumes(userID string) ([]*Resume, error) {
	rows, err := db.Query(
		"SELECT id, user_id, name, content, created_at, updated_at FROM resumes WHERE user_id = ? ORDER BY updated_at DESC",
		userID,
	)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("list resumes", err)
	}
	defer rows.Close()

	resumes := []*Resume{}
	for rows.Next() {
		r := &Resume{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Content, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, domain.WrapDatabaseOperation("scan resume", err)
		}
		resumes = append(resumes, r)
	}
	return resumes, rows.Err()
}

func (db *DB) GetResume(userID, id string) (*Resume, error) {
	r := &Resume{}
	err := db.QueryRow(
		"SELECT id, user_id, name, content, created_at, updated_at FROM resumes WHERE id = ? AND user_id = ?",
		id, userID,
	).Scan(&r.ID, &r.UserID, &r.Name, &r.Content, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapNotFound(domain.ErrResumeNotFound, id, err)
	}
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get resume", err)
	}
	return r, nil
}

// DeleteResume removes a resume and detaches it from any application that used it
func (db *DB) DeleteResume(userID, id string) error {
	tx, err := db.Begin()
	if err != nil {
		return domain.WrapDatabaseOperation("begin delete resume", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE applications SET resume_id = NULL WHERE resume_id = ? AND user_id = ?", id, userID); err != nil {
		return domain.WrapDatabaseOperation("detach resume", err)
	}
	res, err := tx.Exec("DELETE FROM resumes WHERE id = ? AND user_id = ?", id, userID)
	if err := affectedOne(res, err, "delete resume", domain.ErrResumeNotFound, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.WrapDatabaseOperation("commit delete resume", err)
	}
	return nil
}

// ============================================================================
// Profiles
// ============================================================================

func (db *DB) GetProfile(userID string) (*Profile, error) {
	p := &Profile{}
	err := db.QueryRow(
		"SELECT user_id, display_name, email, headline, location, updated_at FROM profiles WHERE user_id = ?",
		userID,
	).Scan(&p.UserID, &p.DisplayName, &p.Email, &p.Headline, &p.Location, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapNotFound(domain.ErrProfileNotFound, userID, err)
	}
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get profile", err)
	}
	return p, nil
}

// UpsertProfile creates or replaces the user's profile
func (db *DB) UpsertProfile(p *Profile) error {
	p.UpdatedAt = time.Now()
	_, err := db.Exec(
		`INSERT INTO profiles (user_id, display_name, email, headline, location, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			email = excluded.email,
			headline = excluded.headline,
			location = excluded.location,
			updated_at = excluded.updated_at`,
		p.UserID, p.DisplayName, p.Email, p.Headline, p.Location, p.UpdatedAt,
	)
	if err != nil {
		return domain.WrapDatabaseOperation("upsert profile", err)
	}
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

// affectedOne turns a zero-row write into a not-found error
func affectedOne(res sql.Result, err error, operation string, notFound *domain.DomainError, id string) error {
	if err != nil {
		return domain.WrapDatabaseOperation(operation, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.WrapDatabaseOperation(operation, err)
	}
	if n == 0 {
		return domain.WrapNotFound(notFound, id, fmt.Errorf("%s: no rows affected", operation))
	}
	return nil
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
