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

// RequestLogRepo provides append-only storage for the external-API audit trail.
type RequestLogRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewRequestLogRepo creates a new RequestLogRepo with the given database connection.
func NewRequestLogRepo(db *sql.DB) *RequestLogRepo {
	return &RequestLogRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const requestLogColumns = `
  id,
  user_id,
  job_search_id,
  request_type,
  status,
  details,
  error_message,
  created_at
`

// Create appends one audit row. Rows are never mutated or deleted.
func (r *RequestLogRepo) Create(ctx context.Context, req *model.CreateRequestLogRequest) (*model.RequestLog, error) {
	if req == nil {
		return nil, errors.New("create request log request is required")
	}
	if !req.RequestType.Valid() {
		return nil, fmt.Errorf("invalid request type %q", req.RequestType)
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("invalid request status %q", req.Status)
	}

	id := uuid.NewString()
	now := r.timeProvider.Now()

	var details, errMsg *string
	if req.Details != "" {
		details = &req.Details
	}
	if req.ErrorMessage != "" {
		errMsg = &req.ErrorMessage
	}

	var out model.RequestLog
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO request_logs (id, user_id, job_search_id, request_type, status, details, error_message, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+requestLogColumns,
			id, req.UserID, req.JobSearchID, req.RequestType, req.Status, details, errMsg, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.RequestLog])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create request log: %w", err)
	}
	return &out, nil
}

// List returns audit rows, newest first, optionally scoped to one user.
func (r *RequestLogRepo) List(ctx context.Context, opts *model.RequestLogListOptions) ([]*model.RequestLog, error) {
	limit := 100
	offset := 0
	userID := ""
	if opts != nil {
		if opts.Limit > 0 && opts.Limit <= 500 {
			limit = opts.Limit
		}
		if opts.Offset > 0 {
			offset = opts.Offset
		}
		userID = opts.UserID
	}

	query := `SELECT ` + requestLogColumns + ` FROM request_logs`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	var out []*model.RequestLog
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.RequestLog])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list request logs: %w", err)
	}
	return out, nil
}

// CountByStatus is used by tests and the admin surface to sanity-check the
// audit trail without paging through it.
func (r *RequestLogRepo) CountByStatus(ctx context.Context, status model.RequestStatus) (int, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM request_logs WHERE status = $1`, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("count request logs: %w", err)
	}
	return count, nil
}
