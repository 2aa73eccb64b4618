// Package service provides the business logic of the auto-apply system: the
// credential resolver, the duplicate/quota guard, the job-search processor,
// and the polling scheduler.
package service

import (
	"context"
	"time"

	"github.com/talentwire/autoapply/internal/data"
	"github.com/talentwire/autoapply/internal/domain/model"
	"github.com/talentwire/autoapply/internal/hh"
)

// CredentialStore reads and writes stored OAuth credentials.
type CredentialStore interface {
	Create(ctx context.Context, req *model.CreateCredentialRequest) (*model.Credential, error)
	LatestByUser(ctx context.Context, userID string) (*model.Credential, error)
}

// ApplicationStore persists and queries application records.
type ApplicationStore interface {
	Create(ctx context.Context, req *model.CreateApplicationRequest) (*model.Application, error)
	Exists(ctx context.Context, p data.ExistsParams) (bool, error)
	CountSuccessSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// JobSearchStore enumerates job search configurations for the poller.
type JobSearchStore interface {
	DistinctActiveUserIDs(ctx context.Context) ([]string, error)
	ListActiveByUser(ctx context.Context, userID string) ([]*model.JobSearch, error)
}

// RequestLogStore appends audit rows.
type RequestLogStore interface {
	Create(ctx context.Context, req *model.CreateRequestLogRequest) (*model.RequestLog, error)
}

// SettingsStore reads and writes runtime-tunable settings.
type SettingsStore interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	Upsert(ctx context.Context, p data.UpsertParams) error
	All(ctx context.Context) ([]*model.Setting, error)
}

// VacancyGateway is the slice of the external API the processor needs.
type VacancyGateway interface {
	SearchVacancies(ctx context.Context, params model.VacancySearchParams, token string) (*model.VacancyPage, error)
	Apply(ctx context.Context, req hh.ApplyRequest, token string) (*model.ApplyResult, error)
}

// ResumeGateway is the slice of the external API the connectivity test needs.
type ResumeGateway interface {
	ListResumes(ctx context.Context, token string) (*model.ResumeList, error)
}

// AppliedCache is an optional positive cache of prior applications.
type AppliedCache interface {
	Contains(ctx context.Context, userID, vacancyID string) (bool, error)
	Add(ctx context.Context, userID, vacancyID string) error
}

// SleepFunc suspends for d or until the context is done. Injectable so tests
// can observe pauses without waiting them out.
type SleepFunc func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
