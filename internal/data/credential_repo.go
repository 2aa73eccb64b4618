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

// ErrCredentialNotFound is returned when a user has no stored credential.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialRepo provides database operations for OAuth credentials.
// Rows are append-only history; readers take the most recent one.
type CredentialRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCredentialRepo creates a new CredentialRepo with the given database connection.
func NewCredentialRepo(db *sql.DB) *CredentialRepo {
	return &CredentialRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const credentialColumns = `
  id,
  user_id,
  access_token,
  refresh_token,
  expires_at,
  resume_id,
  created_at
`

// Create stores a new credential row for a user.
func (r *CredentialRepo) Create(ctx context.Context, req *model.CreateCredentialRequest) (*model.Credential, error) {
	if req == nil {
		return nil, errors.New("create credential request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := r.timeProvider.Now()

	var out model.Credential
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO credentials (id, user_id, access_token, refresh_token, expires_at, resume_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+credentialColumns,
			id, req.UserID, req.AccessToken, req.RefreshToken, req.ExpiresAt, req.ResumeID, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Credential])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create credential: %w", err)
	}
	return &out, nil
}

// LatestByUser returns the most recently created credential row for a user.
func (r *CredentialRepo) LatestByUser(ctx context.Context, userID string) (*model.Credential, error) {
	var out model.Credential
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+credentialColumns+`
			FROM credentials WHERE user_id = $1
			ORDER BY created_at DESC LIMIT 1`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Credential])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("get latest credential: %w", err)
	}
	return &out, nil
}
