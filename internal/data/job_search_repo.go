package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentwire/autoapply/internal/data/pgxutil"
	"github.com/talentwire/autoapply/internal/domain/model"
)

// ErrJobSearchNotFound is returned when a job search is not found.
var ErrJobSearchNotFound = errors.New("job search not found")

// JobSearchRepo provides database operations for job search configurations.
type JobSearchRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewJobSearchRepo creates a new JobSearchRepo with the given database connection.
func NewJobSearchRepo(db *sql.DB) *JobSearchRepo {
	return &JobSearchRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const jobSearchColumns = `
  id,
  user_id,
  name,
  search_params,
  cover_letter,
  filter_expression,
  is_active,
  created_at,
  updated_at
`

// Create persists a new job search configuration.
func (r *JobSearchRepo) Create(ctx context.Context, req *model.CreateJobSearchRequest) (*model.JobSearch, error) {
	if req == nil {
		return nil, errors.New("create job search request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Normalize()

	id := uuid.NewString()
	now := r.timeProvider.Now()

	var out model.JobSearch
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO job_searches (id, user_id, name, search_params, cover_letter, filter_expression, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
			RETURNING `+jobSearchColumns,
			id, req.UserID, req.Name, req.SearchParams, req.CoverLetter, req.FilterExpression, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.JobSearch])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create job search: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a job search by its ID.
func (r *JobSearchRepo) GetByID(ctx context.Context, id string) (*model.JobSearch, error) {
	var out model.JobSearch
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+jobSearchColumns+` FROM job_searches WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.JobSearch])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobSearchNotFound
		}
		return nil, fmt.Errorf("get job search by id: %w", err)
	}
	return &out, nil
}

// ListByUser returns all job searches owned by a user, newest first.
func (r *JobSearchRepo) ListByUser(ctx context.Context, userID string) ([]*model.JobSearch, error) {
	return r.list(ctx, `SELECT `+jobSearchColumns+`
		FROM job_searches WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
}

// ListActiveByUser returns the user's active job searches in creation order.
// The poller visits them sequentially within a cycle.
func (r *JobSearchRepo) ListActiveByUser(ctx context.Context, userID string) ([]*model.JobSearch, error) {
	return r.list(ctx, `SELECT `+jobSearchColumns+`
		FROM job_searches WHERE user_id = $1 AND is_active
		ORDER BY created_at ASC`, userID)
}

func (r *JobSearchRepo) list(ctx context.Context, query string, userID string) ([]*model.JobSearch, error) {
	var out []*model.JobSearch
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.JobSearch])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list job searches: %w", err)
	}
	return out, nil
}

// DistinctActiveUserIDs enumerates users owning at least one active job
// search. Enumeration order (user id ascending) is the only cross-user
// ordering the poller guarantees.
func (r *JobSearchRepo) DistinctActiveUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT DISTINCT user_id FROM job_searches WHERE is_active ORDER BY user_id`)
		if err != nil {
			return err
		}
		defer rows.Close()
		ids, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return ids, nil
}

// SetActive toggles the active flag. Returns ErrJobSearchNotFound if no row matched.
func (r *JobSearchRepo) SetActive(ctx context.Context, id string, active bool) (*model.JobSearch, error) {
	now := r.timeProvider.Now()
	res, err := r.DB.ExecContext(ctx,
		`UPDATE job_searches SET is_active = $2, updated_at = $3 WHERE id = $1`,
		id, active, now)
	if err != nil {
		return nil, fmt.Errorf("set job search active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("set job search active rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrJobSearchNotFound
	}
	return r.GetByID(ctx, id)
}
