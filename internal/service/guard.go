package service

import (
	"context"
	"log/slog"

	"github.com/talentwire/autoapply/internal/data"
)

// GuardServiceOptions configures a GuardService.
type GuardServiceOptions struct {
	Applications ApplicationStore
	// Cache is optional. When set, it is consulted before the database and
	// populated after a successful application.
	Cache AppliedCache
	// RetryFailedApplications controls whether a prior failed attempt blocks a
	// retry. When true, only successful applications count as "already applied".
	RetryFailedApplications bool
	TimeProvider            data.TimeProvider
	Logger                  *slog.Logger
}

// GuardService enforces the two preconditions of every submission: the user
// has not already applied to the vacancy, and the daily quota is not spent.
type GuardService struct {
	apps        ApplicationStore
	cache       AppliedCache
	retryFailed bool
	tp          data.TimeProvider
	log         *slog.Logger
}

func NewGuardService(opts GuardServiceOptions) *GuardService {
	if opts.Applications == nil {
		panic("guard service: nil application store")
	}
	if opts.TimeProvider == nil {
		opts.TimeProvider = &data.RealTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &GuardService{
		apps:        opts.Applications,
		cache:       opts.Cache,
		retryFailed: opts.RetryFailedApplications,
		tp:          opts.TimeProvider,
		log:         opts.Logger.With("component", "guard"),
	}
}

// AlreadyApplied reports whether an application for (userID, vacancyID) is
// already on record. Cache hits are trusted; cache misses and cache errors
// fall through to the database.
func (s *GuardService) AlreadyApplied(ctx context.Context, userID, vacancyID string) (bool, error) {
	if s.cache != nil {
		hit, err := s.cache.Contains(ctx, userID, vacancyID)
		if err != nil {
			s.log.Debug("applied cache lookup failed", "error", err)
		} else if hit {
			return true, nil
		}
	}
	return s.apps.Exists(ctx, data.ExistsParams{
		UserID:        userID,
		VacancyID:     vacancyID,
		ExcludeFailed: s.retryFailed,
	})
}

// QuotaExhausted reports whether the user has reached maxPerDay successful
// applications since local midnight. A non-positive limit is always exhausted.
func (s *GuardService) QuotaExhausted(ctx context.Context, userID string, maxPerDay int) (bool, error) {
	if maxPerDay <= 0 {
		return true, nil
	}
	count, err := s.apps.CountSuccessSince(ctx, userID, data.StartOfDay(s.tp.Now()))
	if err != nil {
		return false, err
	}
	return count >= maxPerDay, nil
}

// MarkApplied records a successful application in the cache. Failures are
// logged and swallowed; the database row is the source of truth.
func (s *GuardService) MarkApplied(ctx context.Context, userID, vacancyID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Add(ctx, userID, vacancyID); err != nil {
		s.log.Debug("applied cache write failed", "error", err)
	}
}
