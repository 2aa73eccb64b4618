package model

import (
	"errors"
	"strings"
	"time"
)

// Credential holds one OAuth grant for a user. Multiple rows may exist per
// user as tokens are re-issued; readers always pick the most recently
// created one.
type Credential struct {
	ID           string     `json:"id"                      db:"id"`
	UserID       string     `json:"user_id"                 db:"user_id"`
	AccessToken  string     `json:"-"                       db:"access_token"`
	RefreshToken *string    `json:"-"                       db:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"    db:"expires_at"`
	ResumeID     *string    `json:"resume_id,omitempty"     db:"resume_id"`
	CreatedAt    time.Time  `json:"created_at"              db:"created_at"`
}

// Expired reports whether the credential has an expiry in the past (or now).
// Credentials without an expiry never expire.
func (c *Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// HasResume reports whether a resume is linked to this credential.
func (c *Credential) HasResume() bool {
	return c.ResumeID != nil && strings.TrimSpace(*c.ResumeID) != ""
}

// CreateCredentialRequest carries the fields needed to store a credential.
type CreateCredentialRequest struct {
	UserID       string     `json:"user_id"`
	AccessToken  string     `json:"access_token"`
	RefreshToken *string    `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	ResumeID     *string    `json:"resume_id,omitempty"`
}

// Validate checks that the request is well formed.
func (r *CreateCredentialRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user id is required")
	}
	if strings.TrimSpace(r.AccessToken) == "" {
		return errors.New("access token is required")
	}
	return nil
}
