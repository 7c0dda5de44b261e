package db

import (
	"time"

	"github.com/google/uuid"
)

// Every model carries the owning user's session id. Queries always filter
// on it, so one user can never read or change another user's rows.

// Job is a posting the user is tracking
type Job struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Company   string    `json:"company" db:"company"`
	Location  string    `json:"location" db:"location"`
	URL       string    `json:"url" db:"url"`
	Notes     string    `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Application is the user's application to a Job
type Application struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"-" db:"user_id"`
	JobID     string     `json:"job_id" db:"job_id"`
	ResumeID  *string    `json:"resume_id" db:"resume_id"` // nullable
	Status    string     `json:"status" db:"status"`
	Notes     string     `json:"notes" db:"notes"`
	AppliedAt *time.Time `json:"applied_at" db:"applied_at"` // nullable, set when status first becomes applied
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Resume is a named resume document
type Resume struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Profile holds per-user details, one row per user
type Profile struct {
	UserID      string    `json:"user_id" db:"user_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Email       string    `json:"email" db:"email"`
	Headline    string    `json:"headline" db:"headline"`
	Location    string    `json:"location" db:"location"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewJob creates a job with a fresh id and timestamps
func NewJob(userID, title, company string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Company:   company,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewApplication creates an application with a fresh id and timestamps
func NewApplication(userID, jobID, status string) *Application {
	now := time.Now()
	return &Application{
		ID:        uuid.New().String(),
		UserID:    userID,
		JobID:     jobID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewResume creates a resume with a fresh id and timestamps
func NewResume(userID, name, content string) *Resume {
	now := time.Now()
	return &Resume{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
