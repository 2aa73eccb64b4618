package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talentwire/autoapply/internal/domain/model"
	"github.com/talentwire/autoapply/internal/hh"
)

type processorFixture struct {
	credentials *mockCredentialResolver
	guard       *mockGuard
	gateway     *mockGateway
	apps        *mockApplicationStore
	logs        *mockRequestLogStore
	slept       []time.Duration
	svc         *ProcessorService
}

func newProcessorFixture(t *testing.T) *processorFixture {
	t.Helper()
	f := &processorFixture{
		credentials: &mockCredentialResolver{},
		guard:       &mockGuard{},
		gateway:     &mockGateway{},
		apps:        &mockApplicationStore{},
		logs:        &mockRequestLogStore{},
	}
	f.svc = NewProcessorService(ProcessorServiceOptions{
		Credentials:  f.credentials,
		Guard:        f.guard,
		Gateway:      f.gateway,
		Applications: f.apps,
		RequestLogs:  f.logs,
		Filter:       NewVacancyFilter(),
		Sleep:        noSleep(&f.slept),
	})
	return f
}

func testCredential() *model.Credential {
	resumeID := "resume-1"
	return &model.Credential{
		ID:          "cred-1",
		UserID:      "user-1",
		AccessToken: "token-abc",
		ResumeID:    &resumeID,
	}
}

func testJobSearch() *model.JobSearch {
	return &model.JobSearch{
		ID:           "js-1",
		UserID:       "user-1",
		Name:         "golang backend",
		SearchParams: model.VacancySearchParams{Text: "golang"},
		CoverLetter:  "hello",
		IsActive:     true,
	}
}

func vacancyPage(ids ...string) *model.VacancyPage {
	page := &model.VacancyPage{Found: len(ids)}
	for _, id := range ids {
		page.Items = append(page.Items, model.Vacancy{
			ID:       id,
			Name:     "Vacancy " + id,
			Employer: model.Employer{ID: "emp-1", Name: "Acme"},
		})
	}
	return page
}

func logWith(reqType model.RequestType, status model.RequestStatus) any {
	return mock.MatchedBy(func(req *model.CreateRequestLogRequest) bool {
		return req.RequestType == reqType && req.Status == status
	})
}

func TestProcessJobSearchAppliesToNewVacancies(t *testing.T) {
	f := newProcessorFixture(t)
	js := testJobSearch()

	f.credentials.On("Resolve", mock.Anything, "user-1").Return(testCredential(), nil)
	f.gateway.On("SearchVacancies", mock.Anything, js.SearchParams, "token-abc").
		Return(vacancyPage("v1", "v2", "v3"), nil)
	f.logs.On("Create", mock.Anything, mock.Anything).Return(&model.RequestLog{}, nil)

	f.guard.On("AlreadyApplied", mock.Anything, "user-1", "v1").Return(false, nil)
	f.guard.On("AlreadyApplied", mock.Anything, "user-1", "v2").Return(true, nil)
	f.guard.On("AlreadyApplied", mock.Anything, "user-1", "v3").Return(false, nil)
	f.guard.On("QuotaExhausted", mock.Anything, "user-1", 50).Return(false, nil)
	f.guard.On("MarkApplied", mock.Anything, "user-1", mock.Anything).Return()

	f.gateway.On("Apply", mock.Anything, mock.Anything, "token-abc").
		Return(&model.ApplyResult{Status: model.ApplyResultSuccess, ID: "n1"}, nil)
	f.apps.On("Create", mock.Anything, mock.Anything).Return(&model.Application{}, nil)

	applied := f.svc.ProcessJobSearch(context.Background(), js, 50)

	assert.Equal(t, 2, applied)
	f.gateway.AssertNumberOfCalls(t, "Apply", 2)
	f.guard.AssertNumberOfCalls(t, "MarkApplied", 2)
	// One search log plus one per submission.
	f.logs.AssertNumberOfCalls(t, "Create", 3)
	// The already-applied vacancy never reaches the gateway.
	for _, call := range f.gateway.Calls {
		if call.Method == "Apply" {
			req := call.Arguments.Get(1).(hh.ApplyRequest)
			assert.NotEqual(t, "v2", req.VacancyID)
			assert.Equal(t, "resume-1", req.ResumeID)
			assert.Equal(t, "hello", req.Message)
		}
	}
	// A courtesy pause follows each success.
	require.Len(t, f.slept, 2)
	assert.Equal(t, DefaultApplyPause, f.slept[0])
}

func TestProcessJobSearchContinuesAfterSubmissionFailure(t *testing.T) {
	f := newProcessorFixture(t)
	js := testJobSearch()

	f.credentials.On("Resolve", mock.Anything, "user-1").Return(testCredential(), nil)
	f.gateway.On("SearchVacancies", mock.Anything, js.SearchParams, "token-abc").
		Return(vacancyPage("v1", "v2", "v3"), nil)
	f.logs.On("Create", mock.Anything, mock.Anything).Return(&model.RequestLog{}, nil)
	f.guard.On("AlreadyApplied", mock.Anything, "user-1", mock.Anything).Return(false, nil)
	f.guard.On("QuotaExhausted", mock.Anything, "user-1", 50).Return(false, nil)
	f.guard.On("MarkApplied", mock.Anything, "user-1", mock.Anything).Return()

	applyReq := func(vacancyID string) any {
		return mock.MatchedBy(func(req hh.ApplyRequest) bool { return req.VacancyID == vacancyID })
	}
	f.gateway.On("Apply", mock.Anything, applyReq("v1"), "token-abc").
		Return(&model.ApplyResult{Status: model.ApplyResultSuccess}, nil)
	f.gateway.On("Apply", mock.Anything, applyReq("v2"), "token-abc").
		Return(nil, &hh.APIError{StatusCode: 400, Body: "resume not found"})
	f.gateway.On("Apply", mock.Anything, applyReq("v3"), "token-abc").
		Return(&model.ApplyResult{Status: model.ApplyResultExternal}, nil)

	failedRow := mock.MatchedBy(func(req *model.CreateApplicationRequest) bool {
		return req.Status == model.ApplicationStatusFailed && req.VacancyID == "v2"
	})
	successRow := mock.MatchedBy(func(req *model.CreateApplicationRequest) bool {
		return req.Status == model.ApplicationStatusSuccess
	})
	f.apps.On("Create", mock.Anything, failedRow).Return(&model.Application{}, nil).Once()
	f.apps.On("Create", mock.Anything, successRow).Return(&model.Application{}, nil).Twice()

	applied := f.svc.ProcessJobSearch(context.Background(), js, 50)

	assert.Equal(t, 2, applied)
	f.apps.AssertExpectations(t)
	f.logs.AssertCalled(t, "Create", mock.Anything,
		logWith(model.RequestTypeApplyVacancy, model.RequestStatusFailed))
	// The failed submission is recorded but not paused for.
	assert.Len(t, f.slept, 2)
}

func TestProcessJobSearchNoToken(t *testing.T) {
	f := newProcessorFixture(t)
	js := testJobSearch()

	f.credentials.On("Resolve", mock.Anything, "user-1").Return(nil, ErrNoCredential)
	f.logs.On("Create", mock.Anything,
		logWith(model.RequestTypeSearchVacancies, model.RequestStatusNoToken)).
		Return(&model.RequestLog{}, nil).Once()

	applied := f.svc.ProcessJobSearch(context.Background(), js, 50)

	assert.Zero(t, applied)
	f.logs.AssertExpectations(t)
	f.gateway.AssertNotCalled(t, "SearchVacancies", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessJobSearchTokenExpired(t *testing.T) {
	f := newProcessorFixture(t)
	js := testJobSearch()

	f.credentials.On("Resolve", mock.Anything, "user-1").Return(nil, ErrCredentialExpired)
	f.logs.On("Create", mock.Anything,
		logWith(model.RequestTypeSearchVacancies, model.RequestStatusTokenExpired)).
		Return(&model.RequestLog{}, nil).Once()

	applied := f.svc.ProcessJobSearch(context.Background(), js, 50)

	assert.Zero(t, applied)
	f.logs.AssertExpectations(t)
	f.gateway.AssertNotCalled(t, "SearchVacancies", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessJobSearchNoResumeIsSilent(t *testing.T) {
	f := newProcessorFixture(t)
	js := testJobSearch()

	cred := testCredential()
	cred.ResumeID = nil
	f.credentials.On("Resolve", mock.Anything, "user-1").Return(cred, ErrNoResume)

	applied := f.svc.ProcessJobSearch(context.Background(), js, 50)

	assert.Zero(t, applied)
	f.logs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.gateway.AssertNotCalled(t, "SearchVacancies", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessJobSearchStopsWhenQuotaExhausted(t *testing.T) {
	f := newProcessorFixture(t)
	js := testJobSearch()

	f.credentials.On("Resolve", mock.Anything, "user-1").Return(testCredential(), nil)
	f.gateway.On("SearchVacancies", mock.Anything, js.SearchParams, "token-abc").
		Return(vacancyPage("v1", "v2"), nil)
	f.logs.On("Create", mock.Anything,
		logWith(model.RequestTypeSearchVacancies, model.RequestStatusSuccess)).
		Return(&model.RequestLog{}, nil).Once()
	f.guard.On("AlreadyApplied", mock.Anything, "user-1", "v1").Return(false, nil)
	f.guard.On("QuotaExhausted", mock.Anything, "user-1", 0).Return(true, nil)

	applied := f.svc.ProcessJobSearch(context.Background(), js, 0)

	assert.Zero(t, applied)
	f.logs.AssertExpectations(t)
	f.gateway.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
	// The quota check ends the search at the first eligible vacancy.
	f.guard.AssertNumberOfCalls(t, "QuotaExhausted", 1)
}

func TestProcessJobSearchQuotaHitMidPage(t *testing.T) {
	f := newProcessorFixture(t)
	js := testJobSearch()

	f.credentials.On("Resolve", mock.Anything, "user-1").Return(testCredential(), nil)
	f.gateway.On("SearchVacancies", mock.Anything, js.SearchParams, "token-abc").
		Return(vacancyPage("v1", "v2", "v3"), nil)
	f.logs.On("Create", mock.Anything, mock.Anything).Return(&model.RequestLog{}, nil)
	f.guard.On("AlreadyApplied", mock.Anything, "user-1", mock.Anything).Return(false, nil)
	f.guard.On("QuotaExhausted", mock.Anything, "user-1", 1).Return(false, nil).Once()
	f.guard.On("QuotaExhausted", mock.Anything, "user-1", 1).Return(true, nil).Once()
	f.guard.On("MarkApplied", mock.Anything, "user-1", "v1").Return()
	f.gateway.On("Apply", mock.Anything, mock.Anything, "token-abc").
		Return(&model.ApplyResult{Status: model.ApplyResultSuccess}, nil)
	f.apps.On("Create", mock.Anything, mock.Anything).Return(&model.Application{}, nil)

	applied := f.svc.ProcessJobSearch(context.Background(), js, 1)

	assert.Equal(t, 1, applied)
	f.gateway.AssertNumberOfCalls(t, "Apply", 1)
}

func TestProcessJobSearchSearchFailureAborts(t *testing.T) {
	f := newProcessorFixture(t)
	js := testJobSearch()

	f.credentials.On("Resolve", mock.Anything, "user-1").Return(testCredential(), nil)
	f.gateway.On("SearchVacancies", mock.Anything, js.SearchParams, "token-abc").
		Return(nil, &hh.APIError{StatusCode: 502, Body: "bad gateway"})

	applied := f.svc.ProcessJobSearch(context.Background(), js, 50)

	assert.Zero(t, applied)
	f.logs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProcessJobSearchFilterSkipsNonMatching(t *testing.T) {
	f := newProcessorFixture(t)
	js := testJobSearch()
	expr := `salary.from >= ` + "`100000`"
	js.FilterExpression = &expr

	page := vacancyPage("v1", "v2")
	page.Items[0].Salary = &model.VacancySalary{From: intPtr(150000), Currency: "RUR"}
	page.Items[1].Salary = &model.VacancySalary{From: intPtr(50000), Currency: "RUR"}

	f.credentials.On("Resolve", mock.Anything, "user-1").Return(testCredential(), nil)
	f.gateway.On("SearchVacancies", mock.Anything, js.SearchParams, "token-abc").Return(page, nil)
	f.logs.On("Create", mock.Anything, mock.Anything).Return(&model.RequestLog{}, nil)
	f.guard.On("AlreadyApplied", mock.Anything, "user-1", "v1").Return(false, nil)
	f.guard.On("QuotaExhausted", mock.Anything, "user-1", 50).Return(false, nil)
	f.guard.On("MarkApplied", mock.Anything, "user-1", "v1").Return()
	f.gateway.On("Apply", mock.Anything, mock.Anything, "token-abc").
		Return(&model.ApplyResult{Status: model.ApplyResultSuccess}, nil)
	f.apps.On("Create", mock.Anything, mock.Anything).Return(&model.Application{}, nil)

	applied := f.svc.ProcessJobSearch(context.Background(), js, 50)

	assert.Equal(t, 1, applied)
	// The below-threshold vacancy never reaches the guard.
	f.guard.AssertNotCalled(t, "AlreadyApplied", mock.Anything, "user-1", "v2")
}

func TestProcessJobSearchDuplicateRowIsNotAnError(t *testing.T) {
	f := newProcessorFixture(t)
	js := testJobSearch()

	f.credentials.On("Resolve", mock.Anything, "user-1").Return(testCredential(), nil)
	f.gateway.On("SearchVacancies", mock.Anything, js.SearchParams, "token-abc").
		Return(vacancyPage("v1"), nil)
	f.logs.On("Create", mock.Anything, mock.Anything).Return(&model.RequestLog{}, nil)
	f.guard.On("AlreadyApplied", mock.Anything, "user-1", "v1").Return(false, nil)
	f.guard.On("QuotaExhausted", mock.Anything, "user-1", 50).Return(false, nil)
	f.guard.On("MarkApplied", mock.Anything, "user-1", "v1").Return()
	f.gateway.On("Apply", mock.Anything, mock.Anything, "token-abc").
		Return(&model.ApplyResult{Status: model.ApplyResultSuccess}, nil)
	// Another worker won the race; the unique index reports the duplicate.
	f.apps.On("Create", mock.Anything, mock.Anything).Return(nil, model.ErrDuplicateApplication)

	applied := f.svc.ProcessJobSearch(context.Background(), js, 50)

	assert.Equal(t, 1, applied)
}

func TestProcessJobSearchGuardErrorStopsSearch(t *testing.T) {
	f := newProcessorFixture(t)
	js := testJobSearch()

	f.credentials.On("Resolve", mock.Anything, "user-1").Return(testCredential(), nil)
	f.gateway.On("SearchVacancies", mock.Anything, js.SearchParams, "token-abc").
		Return(vacancyPage("v1", "v2"), nil)
	f.logs.On("Create", mock.Anything, mock.Anything).Return(&model.RequestLog{}, nil)
	f.guard.On("AlreadyApplied", mock.Anything, "user-1", "v1").
		Return(false, errors.New("connection refused"))

	applied := f.svc.ProcessJobSearch(context.Background(), js, 50)

	assert.Zero(t, applied)
	f.guard.AssertNumberOfCalls(t, "AlreadyApplied", 1)
}

func intPtr(n int) *int { return &n }
