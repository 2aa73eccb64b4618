package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/talentwire/autoapply/internal/data"
	"github.com/talentwire/autoapply/internal/domain/model"
	"github.com/talentwire/autoapply/internal/hh"
)

type mockCredentialStore struct{ mock.Mock }

func (m *mockCredentialStore) Create(ctx context.Context, req *model.CreateCredentialRequest) (*model.Credential, error) {
	args := m.Called(ctx, req)
	cred, _ := args.Get(0).(*model.Credential)
	return cred, args.Error(1)
}

func (m *mockCredentialStore) LatestByUser(ctx context.Context, userID string) (*model.Credential, error) {
	args := m.Called(ctx, userID)
	cred, _ := args.Get(0).(*model.Credential)
	return cred, args.Error(1)
}

type mockCredentialResolver struct{ mock.Mock }

func (m *mockCredentialResolver) Resolve(ctx context.Context, userID string) (*model.Credential, error) {
	args := m.Called(ctx, userID)
	cred, _ := args.Get(0).(*model.Credential)
	return cred, args.Error(1)
}

type mockGuard struct{ mock.Mock }

func (m *mockGuard) AlreadyApplied(ctx context.Context, userID, vacancyID string) (bool, error) {
	args := m.Called(ctx, userID, vacancyID)
	return args.Bool(0), args.Error(1)
}

func (m *mockGuard) QuotaExhausted(ctx context.Context, userID string, maxPerDay int) (bool, error) {
	args := m.Called(ctx, userID, maxPerDay)
	return args.Bool(0), args.Error(1)
}

func (m *mockGuard) MarkApplied(ctx context.Context, userID, vacancyID string) {
	m.Called(ctx, userID, vacancyID)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) SearchVacancies(ctx context.Context, params model.VacancySearchParams, token string) (*model.VacancyPage, error) {
	args := m.Called(ctx, params, token)
	page, _ := args.Get(0).(*model.VacancyPage)
	return page, args.Error(1)
}

func (m *mockGateway) Apply(ctx context.Context, req hh.ApplyRequest, token string) (*model.ApplyResult, error) {
	args := m.Called(ctx, req, token)
	result, _ := args.Get(0).(*model.ApplyResult)
	return result, args.Error(1)
}

func (m *mockGateway) ListResumes(ctx context.Context, token string) (*model.ResumeList, error) {
	args := m.Called(ctx, token)
	list, _ := args.Get(0).(*model.ResumeList)
	return list, args.Error(1)
}

type mockApplicationStore struct{ mock.Mock }

func (m *mockApplicationStore) Create(ctx context.Context, req *model.CreateApplicationRequest) (*model.Application, error) {
	args := m.Called(ctx, req)
	app, _ := args.Get(0).(*model.Application)
	return app, args.Error(1)
}

func (m *mockApplicationStore) Exists(ctx context.Context, p data.ExistsParams) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

func (m *mockApplicationStore) CountSuccessSince(ctx context.Context, userID string, since time.Time) (int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Error(1)
}

type mockRequestLogStore struct{ mock.Mock }

func (m *mockRequestLogStore) Create(ctx context.Context, req *model.CreateRequestLogRequest) (*model.RequestLog, error) {
	args := m.Called(ctx, req)
	row, _ := args.Get(0).(*model.RequestLog)
	return row, args.Error(1)
}

type mockJobSearchStore struct{ mock.Mock }

func (m *mockJobSearchStore) DistinctActiveUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockJobSearchStore) ListActiveByUser(ctx context.Context, userID string) ([]*model.JobSearch, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]*model.JobSearch)
	return list, args.Error(1)
}

type mockProcessor struct{ mock.Mock }

func (m *mockProcessor) ProcessJobSearch(ctx context.Context, js *model.JobSearch, maxPerDay int) int {
	args := m.Called(ctx, js, maxPerDay)
	return args.Int(0)
}

type mockSettingsLoader struct{ mock.Mock }

func (m *mockSettingsLoader) Load(ctx context.Context) PollerSettings {
	args := m.Called(ctx)
	return args.Get(0).(PollerSettings)
}

type mockSettingsStore struct{ mock.Mock }

func (m *mockSettingsStore) Get(ctx context.Context, key string) (*model.Setting, error) {
	args := m.Called(ctx, key)
	setting, _ := args.Get(0).(*model.Setting)
	return setting, args.Error(1)
}

func (m *mockSettingsStore) Upsert(ctx context.Context, p data.UpsertParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockSettingsStore) All(ctx context.Context) ([]*model.Setting, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*model.Setting)
	return list, args.Error(1)
}

type mockAppliedCache struct{ mock.Mock }

func (m *mockAppliedCache) Contains(ctx context.Context, userID, vacancyID string) (bool, error) {
	args := m.Called(ctx, userID, vacancyID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAppliedCache) Add(ctx context.Context, userID, vacancyID string) error {
	args := m.Called(ctx, userID, vacancyID)
	return args.Error(0)
}

// noSleep is a SleepFunc that returns immediately, recording each requested
// pause.
func noSleep(slept *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		if slept != nil {
			*slept = append(*slept, d)
		}
		return ctx.Err()
	}
}
