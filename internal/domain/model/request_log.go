package model

import "time"

// RequestType identifies which external interaction a request log row records.
type RequestType string

// RequestStatus records the outcome of the interaction.
type RequestStatus string

const (
	// RequestTypeSearchVacancies records a vacancy search call.
	RequestTypeSearchVacancies RequestType = "search_vacancies"
	// RequestTypeApplyVacancy records an application submission.
	RequestTypeApplyVacancy RequestType = "apply_vacancy"
	// RequestTypeTestConnection records a connectivity check.
	RequestTypeTestConnection RequestType = "test_connection"

	// RequestStatusSuccess indicates the call succeeded.
	RequestStatusSuccess RequestStatus = "success"
	// RequestStatusFailed indicates the call failed.
	RequestStatusFailed RequestStatus = "failed"
	// RequestStatusNoToken indicates no usable access token was available.
	RequestStatusNoToken RequestStatus = "no_token"
	// RequestStatusTokenExpired indicates the stored token had expired.
	RequestStatusTokenExpired RequestStatus = "token_expired"
)

// Valid returns true if the RequestType is one of the known values.
func (t RequestType) Valid() bool {
	return t == RequestTypeSearchVacancies || t == RequestTypeApplyVacancy || t == RequestTypeTestConnection
}

// Valid returns true if the RequestStatus is one of the known values.
func (s RequestStatus) Valid() bool {
	return s == RequestStatusSuccess || s == RequestStatusFailed ||
		s == RequestStatusNoToken || s == RequestStatusTokenExpired
}

// RequestLog is an append-only audit record of one interaction with the
// external API on behalf of a user. UserID is nil for system-level events.
type RequestLog struct {
	ID           string        `json:"id"                      db:"id"`
	UserID       *string       `json:"user_id,omitempty"       db:"user_id"`
	JobSearchID  *string       `json:"job_search_id,omitempty" db:"job_search_id"`
	RequestType  RequestType   `json:"request_type"            db:"request_type"`
	Status       RequestStatus `json:"status"                  db:"status"`
	Details      *string       `json:"details,omitempty"       db:"details"`
	ErrorMessage *string       `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time     `json:"created_at"              db:"created_at"`
}

// CreateRequestLogRequest carries the fields for one audit row.
type CreateRequestLogRequest struct {
	UserID       *string
	JobSearchID  *string
	RequestType  RequestType
	Status       RequestStatus
	Details      string
	ErrorMessage string
}

// RequestLogListOptions filters request log listings.
type RequestLogListOptions struct {
	UserID string // optional; empty means all users
	Limit  int
	Offset int
}
