// Package model defines the core data types and structures used throughout the auto-apply system.
package model

import (
	"errors"
	"strings"
	"time"
)

// ApplicationStatus represents the outcome recorded for one application attempt.
type ApplicationStatus string

const (
	// ApplicationStatusPending indicates an application was created but not yet confirmed.
	ApplicationStatusPending ApplicationStatus = "pending"
	// ApplicationStatusSuccess indicates the application was accepted by the external API.
	ApplicationStatusSuccess ApplicationStatus = "success"
	// ApplicationStatusFailed indicates the submission attempt failed.
	ApplicationStatusFailed ApplicationStatus = "failed"
)

// Valid returns true if the ApplicationStatus is one of the known values.
func (s ApplicationStatus) Valid() bool {
	return s == ApplicationStatusPending || s == ApplicationStatusSuccess || s == ApplicationStatusFailed
}

// Application is a persisted record of one attempt (successful or failed)
// to submit a candidacy for a vacancy. Rows are append-only; failed attempts
// are recorded as separate rows and are never mutated.
type Application struct {
	ID           string            `json:"id"            db:"id"`
	UserID       string            `json:"user_id"       db:"user_id"`
	JobSearchID  string            `json:"job_search_id" db:"job_search_id"`
	VacancyID    string            `json:"vacancy_id"    db:"vacancy_id"`
	VacancyTitle string            `json:"vacancy_title" db:"vacancy_title"`
	EmployerName string            `json:"employer_name" db:"employer_name"`
	Status       ApplicationStatus `json:"status"        db:"status"`
	AppliedAt    time.Time         `json:"applied_at"    db:"applied_at"`
}

// CreateApplicationRequest carries the fields needed to persist an application row.
type CreateApplicationRequest struct {
	UserID       string
	JobSearchID  string
	VacancyID    string
	VacancyTitle string
	EmployerName string
	Status       ApplicationStatus
}

// Validate checks that the request is well formed.
func (r *CreateApplicationRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user id is required")
	}
	if strings.TrimSpace(r.JobSearchID) == "" {
		return errors.New("job search id is required")
	}
	if strings.TrimSpace(r.VacancyID) == "" {
		return errors.New("vacancy id is required")
	}
	if !r.Status.Valid() {
		return errors.New("invalid application status")
	}
	return nil
}

// ErrDuplicateApplication is returned when a successful application already
// exists for the same (user, vacancy) pair.
var ErrDuplicateApplication = errors.New("application already exists for this vacancy")

// ApplicationListOptions filters application listings.
type ApplicationListOptions struct {
	UserID      string
	JobSearchID string // optional; empty means all searches
	Limit       int
	Offset      int
}

// RunSummary aggregates the result of a single on-demand processing pass.
type RunSummary struct {
	ConfigsProcessed int `json:"job_searches_processed"`
	ApplicationsSent int `json:"applications_sent"`
}
