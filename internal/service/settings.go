package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/talentwire/autoapply/internal/data"
	"github.com/talentwire/autoapply/internal/domain/model"

	apperrors "github.com/talentwire/autoapply/internal/errors"
)

// Bounds and defaults for the runtime-tunable poller settings.
const (
	DefaultPollInterval    = 30 * time.Minute
	DefaultMaxPerDay       = 50
	minPollIntervalMinutes = 5
	maxPollIntervalMinutes = 1440
	maxApplicationsCeiling = 200
)

// PollerSettings are the tunables the scheduler reloads every cycle.
type PollerSettings struct {
	PollInterval          time.Duration
	MaxApplicationsPerDay int
}

// Sanitize clamps settings to safe bounds. A zero MaxApplicationsPerDay is
// preserved: it pauses submissions without stopping the poller.
func (s PollerSettings) Sanitize() PollerSettings {
	if s.PollInterval < minPollIntervalMinutes*time.Minute {
		s.PollInterval = minPollIntervalMinutes * time.Minute
	}
	if s.PollInterval > maxPollIntervalMinutes*time.Minute {
		s.PollInterval = maxPollIntervalMinutes * time.Minute
	}
	if s.MaxApplicationsPerDay < 0 {
		s.MaxApplicationsPerDay = 0
	}
	if s.MaxApplicationsPerDay > maxApplicationsCeiling {
		s.MaxApplicationsPerDay = maxApplicationsCeiling
	}
	return s
}

// SettingsServiceOptions configures a SettingsService.
type SettingsServiceOptions struct {
	Repo     SettingsStore
	Defaults PollerSettings
	Logger   *slog.Logger
}

// SettingsService loads and updates the poller tunables stored in the
// database, falling back to configured defaults when rows are missing or
// unreadable.
type SettingsService struct {
	repo     SettingsStore
	defaults PollerSettings
	log      *slog.Logger
}

func NewSettingsService(opts SettingsServiceOptions) *SettingsService {
	if opts.Repo == nil {
		panic("settings service: nil repo")
	}
	if opts.Defaults == (PollerSettings{}) {
		opts.Defaults = PollerSettings{
			PollInterval:          DefaultPollInterval,
			MaxApplicationsPerDay: DefaultMaxPerDay,
		}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &SettingsService{
		repo:     opts.Repo,
		defaults: opts.Defaults.Sanitize(),
		log:      opts.Logger.With("component", "settings"),
	}
}

// Load reads the poller settings. It never fails: missing or malformed rows
// fall back to defaults so a settings problem cannot stall the poller.
func (s *SettingsService) Load(ctx context.Context) PollerSettings {
	out := s.defaults
	if minutes, ok := s.intSetting(ctx, model.SettingPollIntervalMinutes); ok {
		out.PollInterval = time.Duration(minutes) * time.Minute
	}
	if max, ok := s.intSetting(ctx, model.SettingMaxApplicationsPerDay); ok {
		out.MaxApplicationsPerDay = max
	}
	return out.Sanitize()
}

func (s *SettingsService) intSetting(ctx context.Context, key string) (int, bool) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, data.ErrSettingNotFound) {
			s.log.Warn("setting read failed, using default", "key", key, "error", err)
		}
		return 0, false
	}
	n, err := strconv.Atoi(setting.Value)
	if err != nil {
		s.log.Warn("setting is not an integer, using default", "key", key, "value", setting.Value)
		return 0, false
	}
	return n, true
}

// Update validates and persists a single setting.
func (s *SettingsService) Update(ctx context.Context, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return apperrors.ValidationField("value", "must be an integer")
	}
	switch key {
	case model.SettingPollIntervalMinutes:
		if n < minPollIntervalMinutes || n > maxPollIntervalMinutes {
			return apperrors.ValidationField("value", "poll interval out of range")
		}
	case model.SettingMaxApplicationsPerDay:
		if n < 0 || n > maxApplicationsCeiling {
			return apperrors.ValidationField("value", "max applications per day out of range")
		}
	default:
		return apperrors.ValidationField("key", "unknown setting")
	}
	return s.repo.Upsert(ctx, data.UpsertParams{Key: key, Value: value})
}

// All returns every stored setting row.
func (s *SettingsService) All(ctx context.Context) ([]*model.Setting, error) {
	return s.repo.All(ctx)
}
