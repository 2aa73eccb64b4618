package model

import "time"

// Setting keys for the poller tunables. Values are stored as strings and
// parsed (with clamping) by the settings service on every cycle, so
// operators can change them without a restart.
const (
	SettingPollIntervalMinutes   = "poll_interval_minutes"
	SettingMaxApplicationsPerDay = "max_applications_per_day"
)

// Setting is one key/value row of runtime-tunable configuration.
type Setting struct {
	Key         string    `json:"key"                   db:"key"`
	Value       string    `json:"value"                 db:"value"`
	Description *string   `json:"description,omitempty" db:"description"`
	UpdatedAt   time.Time `json:"updated_at"            db:"updated_at"`
}
