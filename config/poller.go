package config

import "time"

// PollerConfig contains auto-apply poller configuration. PollInterval and
// MaxApplicationsPerDay are only defaults; the database settings override
// them at runtime.
type PollerConfig struct {
	// PollInterval is the default pause between poll cycles.
	PollInterval time.Duration `env:"INTERVAL" envDefault:"30m"`

	// MaxApplicationsPerDay is the default per-user daily submission cap.
	MaxApplicationsPerDay int `env:"MAX_APPLICATIONS_PER_DAY" envDefault:"50"`

	// ApplyPause is the pause after each successful submission.
	ApplyPause time.Duration `env:"APPLY_PAUSE" envDefault:"5s"`

	// ErrorCooldown is the backoff after a failed poll cycle.
	ErrorCooldown time.Duration `env:"ERROR_COOLDOWN" envDefault:"5m"`

	// RetryFailedApplications controls whether a prior failed submission
	// blocks another attempt at the same vacancy.
	RetryFailedApplications bool `env:"RETRY_FAILED_APPLICATIONS" envDefault:"false"`

	// StartOnBoot starts the polling loop as soon as the service comes up.
	StartOnBoot bool `env:"START_ON_BOOT" envDefault:"true"`
}

// Sanitize applies guardrails to poller configuration values.
func (p *PollerConfig) Sanitize() {
	if p.PollInterval < 5*time.Minute {
		p.PollInterval = 5 * time.Minute
	}
	if p.PollInterval > 24*time.Hour {
		p.PollInterval = 24 * time.Hour
	}
	if p.MaxApplicationsPerDay < 0 {
		p.MaxApplicationsPerDay = 0
	}
	if p.MaxApplicationsPerDay > 200 {
		p.MaxApplicationsPerDay = 200
	}
	if p.ApplyPause <= 0 {
		p.ApplyPause = 5 * time.Second
	}
	if p.ErrorCooldown <= 0 {
		p.ErrorCooldown = 5 * time.Minute
	}
}
