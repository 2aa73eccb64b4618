package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/talentwire/autoapply/internal/data/pgxutil"
	"github.com/talentwire/autoapply/internal/domain/model"
)

// ApplicationRepo provides database operations for application records.
type ApplicationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewApplicationRepo creates a new ApplicationRepo with the given database connection.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo {
	return &ApplicationRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewApplicationRepoWithTimeProvider creates an ApplicationRepo with a custom time provider.
func NewApplicationRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ApplicationRepo {
	return &ApplicationRepo{DB: db, timeProvider: tp}
}

const applicationColumns = `
  id,
  user_id,
  job_search_id,
  vacancy_id,
  vacancy_title,
  employer_name,
  status,
  applied_at
`

// Create persists one application attempt. A partial unique index on
// (user_id, vacancy_id) WHERE status = 'success' backs the at-most-one-success
// invariant; a violation surfaces as model.ErrDuplicateApplication.
func (r *ApplicationRepo) Create(ctx context.Context, req *model.CreateApplicationRequest) (*model.Application, error) {
	if req == nil {
		return nil, errors.New("create application request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	appliedAt := r.timeProvider.Now()

	var out model.Application
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO applications (id, user_id, job_search_id, vacancy_id, vacancy_title, employer_name, status, applied_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+applicationColumns,
			id, req.UserID, req.JobSearchID, req.VacancyID, req.VacancyTitle, req.EmployerName, req.Status, appliedAt)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Application])
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("create application: %w", model.ErrDuplicateApplication)
		}
		return nil, fmt.Errorf("create application: %w", err)
	}
	return &out, nil
}

// ExistsParams scopes the duplicate check for one (user, vacancy) pair.
type ExistsParams struct {
	UserID    string
	VacancyID string
	// ExcludeFailed makes failed attempts invisible to the check, allowing
	// them to be retried on a later cycle.
	ExcludeFailed bool
}

// Exists reports whether any application row matches the given pair.
func (r *ApplicationRepo) Exists(ctx context.Context, p ExistsParams) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM applications WHERE user_id = $1 AND vacancy_id = $2`
	if p.ExcludeFailed {
		query += ` AND status <> 'failed'`
	}
	query += `)`

	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, p.UserID, p.VacancyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check application exists: %w", err)
	}
	return exists, nil
}

// CountSuccessSince counts the user's successful applications created at or
// after the given instant. The guard passes local midnight here.
func (r *ApplicationRepo) CountSuccessSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM applications
		WHERE user_id = $1 AND status = 'success' AND applied_at >= $2`,
		userID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count successful applications: %w", err)
	}
	return count, nil
}

// List returns a user's applications, newest first.
func (r *ApplicationRepo) List(ctx context.Context, opts *model.ApplicationListOptions) ([]*model.Application, error) {
	if opts == nil || opts.UserID == "" {
		return nil, errors.New("application list options require a user id")
	}
	limit := opts.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1`
	args := []any{opts.UserID}
	if opts.JobSearchID != "" {
		query += ` AND job_search_id = $2`
		args = append(args, opts.JobSearchID)
	}
	query += fmt.Sprintf(` ORDER BY applied_at DESC LIMIT %d OFFSET %d`, limit, opts.Offset)

	var out []*model.Application
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Application])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}
