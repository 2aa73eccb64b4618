package service

import (
	"context"
	"log/slog"

	"github.com/talentwire/autoapply/internal/domain/model"

	apperrors "github.com/talentwire/autoapply/internal/errors"
)

type jobSearchWriter interface {
	JobSearchStore
	Create(ctx context.Context, req *model.CreateJobSearchRequest) (*model.JobSearch, error)
	GetByID(ctx context.Context, id string) (*model.JobSearch, error)
	ListByUser(ctx context.Context, userID string) ([]*model.JobSearch, error)
	SetActive(ctx context.Context, id string, active bool) (*model.JobSearch, error)
}

type filterValidator interface {
	Validate(expr string) error
}

// JobSearchServiceOptions configures a JobSearchService.
type JobSearchServiceOptions struct {
	Repo   jobSearchWriter
	Filter filterValidator
	Logger *slog.Logger
}

// JobSearchService manages job search configurations.
type JobSearchService struct {
	repo   jobSearchWriter
	filter filterValidator
	log    *slog.Logger
}

func NewJobSearchService(opts JobSearchServiceOptions) *JobSearchService {
	if opts.Repo == nil {
		panic("job search service: nil repo")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &JobSearchService{
		repo:   opts.Repo,
		filter: opts.Filter,
		log:    opts.Logger.With("component", "jobsearch"),
	}
}

// Create validates and stores a new job search. When SearchURL is set the
// query parameters are parsed out of it and override SearchParams.
func (s *JobSearchService) Create(ctx context.Context, req *model.CreateJobSearchRequest) (*model.JobSearch, error) {
	if req.SearchURL != "" {
		params, err := model.ParseSearchURL(req.SearchURL)
		if err != nil {
			return nil, apperrors.ValidationField("search_url", "not a recognizable vacancy search URL")
		}
		req.SearchParams = params
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if req.FilterExpression != nil && s.filter != nil {
		if err := s.filter.Validate(*req.FilterExpression); err != nil {
			return nil, apperrors.ValidationField("filter_expression", "invalid filter expression")
		}
	}
	js, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "create job search")
	}
	s.log.Info("job search created", "user_id", js.UserID, "job_search_id", js.ID, "name", js.Name)
	return js, nil
}

// Get returns one job search by id.
func (s *JobSearchService) Get(ctx context.Context, id string) (*model.JobSearch, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every job search of a user, newest first.
func (s *JobSearchService) List(ctx context.Context, userID string) ([]*model.JobSearch, error) {
	if userID == "" {
		return nil, apperrors.ValidationField("user_id", "user id is required")
	}
	return s.repo.ListByUser(ctx, userID)
}

// SetActive toggles whether the poller picks the search up.
func (s *JobSearchService) SetActive(ctx context.Context, id string, active bool) (*model.JobSearch, error) {
	js, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	s.log.Info("job search toggled", "job_search_id", id, "active", active)
	return js, nil
}
