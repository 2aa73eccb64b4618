package model

import (
	"errors"
	"strings"
	"time"
)

// JobSearch is a user-owned search configuration the poller iterates on every
// cycle. Deactivation is the terminal lifecycle state; rows are never deleted
// by the poller.
type JobSearch struct {
	ID               string              `json:"id"                          db:"id"`
	UserID           string              `json:"user_id"                     db:"user_id"`
	Name             string              `json:"name"                        db:"name"`
	SearchParams     VacancySearchParams `json:"search_params"               db:"search_params"`
	CoverLetter      string              `json:"cover_letter"                db:"cover_letter"`
	FilterExpression *string             `json:"filter_expression,omitempty" db:"filter_expression"`
	IsActive         bool                `json:"is_active"                   db:"is_active"`
	CreatedAt        time.Time           `json:"created_at"                  db:"created_at"`
	UpdatedAt        *time.Time          `json:"updated_at,omitempty"        db:"updated_at"`
}

const maxCoverLetterLength = 10000

// CreateJobSearchRequest carries the fields needed to create a job search.
type CreateJobSearchRequest struct {
	UserID           string              `json:"user_id"`
	Name             string              `json:"name"`
	SearchParams     VacancySearchParams `json:"search_params"`
	// SearchURL, when set, is parsed into SearchParams and takes precedence
	// over them.
	SearchURL        string  `json:"search_url,omitempty"`
	CoverLetter      string  `json:"cover_letter"`
	FilterExpression *string `json:"filter_expression,omitempty"`
}

// Validate checks that the request is well formed.
func (r *CreateJobSearchRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if len(r.Name) > 200 {
		return errors.New("name must be 200 characters or fewer")
	}
	if len(r.CoverLetter) > maxCoverLetterLength {
		return errors.New("cover letter must be 10000 characters or fewer")
	}
	return nil
}

// Normalize trims surrounding whitespace from user-entered fields.
func (r *CreateJobSearchRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.CoverLetter = strings.TrimSpace(r.CoverLetter)
	if r.FilterExpression != nil {
		expr := strings.TrimSpace(*r.FilterExpression)
		if expr == "" {
			r.FilterExpression = nil
		} else {
			r.FilterExpression = &expr
		}
	}
}
