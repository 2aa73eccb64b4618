package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talentwire/autoapply/internal/domain/model"
	"github.com/talentwire/autoapply/internal/hh"
)

// DefaultApplyPause is how long the processor waits after each successful
// submission before touching the API again.
const DefaultApplyPause = 5 * time.Second

type credentialResolver interface {
	Resolve(ctx context.Context, userID string) (*model.Credential, error)
}

type applyGuard interface {
	AlreadyApplied(ctx context.Context, userID, vacancyID string) (bool, error)
	QuotaExhausted(ctx context.Context, userID string, maxPerDay int) (bool, error)
	MarkApplied(ctx context.Context, userID, vacancyID string)
}

type vacancyMatcher interface {
	Matches(expr string, vacancy model.Vacancy) (bool, error)
}

// ProcessorServiceOptions configures a ProcessorService.
type ProcessorServiceOptions struct {
	Credentials  credentialResolver
	Guard        applyGuard
	Gateway      VacancyGateway
	Applications ApplicationStore
	RequestLogs  RequestLogStore
	Filter       vacancyMatcher
	ApplyPause   time.Duration
	Sleep        SleepFunc
	Logger       *slog.Logger
}

// ProcessorService runs a single job search end to end: resolve credentials,
// search vacancies, and submit an application for each eligible result. It
// reports how many applications went out and never fails a cycle; every
// problem is logged and, where the audit trail calls for it, recorded as a
// request log or a failed application row.
type ProcessorService struct {
	credentials credentialResolver
	guard       applyGuard
	gateway     VacancyGateway
	apps        ApplicationStore
	logs        RequestLogStore
	filter      vacancyMatcher
	applyPause  time.Duration
	sleep       SleepFunc
	log         *slog.Logger
}

func NewProcessorService(opts ProcessorServiceOptions) *ProcessorService {
	if opts.Credentials == nil || opts.Guard == nil || opts.Gateway == nil ||
		opts.Applications == nil || opts.RequestLogs == nil {
		panic("processor service: missing dependency")
	}
	if opts.ApplyPause <= 0 {
		opts.ApplyPause = DefaultApplyPause
	}
	if opts.Sleep == nil {
		opts.Sleep = realSleep
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ProcessorService{
		credentials: opts.Credentials,
		guard:       opts.Guard,
		gateway:     opts.Gateway,
		apps:        opts.Applications,
		logs:        opts.RequestLogs,
		filter:      opts.Filter,
		applyPause:  opts.ApplyPause,
		sleep:       opts.Sleep,
		log:         opts.Logger.With("component", "processor"),
	}
}

// ProcessJobSearch processes one job search and returns the number of
// applications submitted. maxPerDay is the daily quota in effect for this
// cycle.
func (s *ProcessorService) ProcessJobSearch(ctx context.Context, js *model.JobSearch, maxPerDay int) int {
	log := s.log.With("user_id", js.UserID, "job_search_id", js.ID, "job_search", js.Name)

	cred, err := s.credentials.Resolve(ctx, js.UserID)
	switch {
	case errors.Is(err, ErrNoCredential):
		log.Info("no usable access token, skipping search")
		s.logRequest(ctx, js, model.RequestTypeSearchVacancies, model.RequestStatusNoToken,
			"search: "+js.Name, "")
		return 0
	case errors.Is(err, ErrCredentialExpired):
		log.Info("access token expired, skipping search")
		s.logRequest(ctx, js, model.RequestTypeSearchVacancies, model.RequestStatusTokenExpired,
			"search: "+js.Name, "")
		return 0
	case errors.Is(err, ErrNoResume):
		// Without a resume there is nothing to submit. No audit row for this.
		log.Info("credential has no resume, skipping search")
		return 0
	case err != nil:
		log.Error("credential lookup failed", "error", err)
		return 0
	}

	page, err := s.gateway.SearchVacancies(ctx, js.SearchParams, cred.AccessToken)
	if err != nil {
		log.Error("vacancy search failed", "error", err)
		return 0
	}
	s.logRequest(ctx, js, model.RequestTypeSearchVacancies, model.RequestStatusSuccess,
		fmt.Sprintf("found %d vacancies, search: %s", len(page.Items), js.Name), "")

	applied := 0
	for i := range page.Items {
		if ctx.Err() != nil {
			return applied
		}
		vacancy := page.Items[i]

		if js.FilterExpression != nil && s.filter != nil {
			match, ferr := s.filter.Matches(*js.FilterExpression, vacancy)
			if ferr != nil {
				log.Warn("vacancy filter failed, keeping vacancy", "vacancy_id", vacancy.ID, "error", ferr)
			} else if !match {
				continue
			}
		}

		seen, err := s.guard.AlreadyApplied(ctx, js.UserID, vacancy.ID)
		if err != nil {
			log.Error("duplicate check failed, stopping search", "vacancy_id", vacancy.ID, "error", err)
			return applied
		}
		if seen {
			continue
		}

		exhausted, err := s.guard.QuotaExhausted(ctx, js.UserID, maxPerDay)
		if err != nil {
			log.Error("quota check failed, stopping search", "error", err)
			return applied
		}
		if exhausted {
			log.Info("daily application limit reached", "max_per_day", maxPerDay)
			return applied
		}

		if s.applyToVacancy(ctx, js, cred, vacancy, log) {
			applied++
			if s.sleep(ctx, s.applyPause) != nil {
				return applied
			}
		}
	}
	return applied
}

// applyToVacancy submits one application and records the outcome. It reports
// whether the submission counted as sent.
func (s *ProcessorService) applyToVacancy(ctx context.Context, js *model.JobSearch, cred *model.Credential, vacancy model.Vacancy, log *slog.Logger) bool {
	result, err := s.gateway.Apply(ctx, hh.ApplyRequest{
		ResumeID:  *cred.ResumeID,
		VacancyID: vacancy.ID,
		Message:   js.CoverLetter,
	}, cred.AccessToken)
	if err != nil {
		log.Warn("application failed", "vacancy_id", vacancy.ID, "vacancy", vacancy.Name, "error", err)
		s.logRequest(ctx, js, model.RequestTypeApplyVacancy, model.RequestStatusFailed,
			"vacancy: "+vacancy.Name, err.Error())
		s.saveApplication(ctx, js, vacancy, model.ApplicationStatusFailed, log)
		return false
	}

	log.Info("application sent",
		"vacancy_id", vacancy.ID,
		"vacancy", vacancy.Name,
		"employer", vacancy.EmployerName(),
		"result", string(result.Status))
	s.logRequest(ctx, js, model.RequestTypeApplyVacancy, model.RequestStatusSuccess,
		fmt.Sprintf("vacancy: %s, employer: %s", vacancy.Name, vacancy.EmployerName()), "")
	s.saveApplication(ctx, js, vacancy, model.ApplicationStatusSuccess, log)
	s.guard.MarkApplied(ctx, js.UserID, vacancy.ID)
	return true
}

func (s *ProcessorService) saveApplication(ctx context.Context, js *model.JobSearch, vacancy model.Vacancy, status model.ApplicationStatus, log *slog.Logger) {
	_, err := s.apps.Create(ctx, &model.CreateApplicationRequest{
		UserID:       js.UserID,
		JobSearchID:  js.ID,
		VacancyID:    vacancy.ID,
		VacancyTitle: vacancy.Name,
		EmployerName: vacancy.EmployerName(),
		Status:       status,
	})
	if err != nil && !errors.Is(err, model.ErrDuplicateApplication) {
		log.Error("saving application record failed", "vacancy_id", vacancy.ID, "error", err)
	}
}

func (s *ProcessorService) logRequest(ctx context.Context, js *model.JobSearch, reqType model.RequestType, status model.RequestStatus, details, errMsg string) {
	_, err := s.logs.Create(ctx, &model.CreateRequestLogRequest{
		UserID:       &js.UserID,
		JobSearchID:  &js.ID,
		RequestType:  reqType,
		Status:       status,
		Details:      details,
		ErrorMessage: errMsg,
	})
	if err != nil {
		s.log.Error("writing request log failed", "user_id", js.UserID, "type", string(reqType), "error", err)
	}
}
