package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentwire/autoapply/internal/domain/model"
	"github.com/talentwire/autoapply/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestCredentialRepo_LatestByUser_NewestWins(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()

		clock := NewFixedTimeProvider(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
		repo := NewCredentialRepo(db)
		repo.timeProvider = clock

		userID := uuid.NewString()

		_, err := repo.Create(ctx, &model.CreateCredentialRequest{
			UserID:      userID,
			AccessToken: "tok-old",
			ResumeID:    strPtr("r-1"),
		})
		require.NoError(t, err)

		clock.AddTime(time.Hour)
		_, err = repo.Create(ctx, &model.CreateCredentialRequest{
			UserID:      userID,
			AccessToken: "tok-new",
			ResumeID:    strPtr("r-2"),
		})
		require.NoError(t, err)

		got, err := repo.LatestByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "tok-new", got.AccessToken)
		require.NotNil(t, got.ResumeID)
		assert.Equal(t, "r-2", *got.ResumeID)
	})
}

func TestCredentialRepo_LatestByUser_NotFound(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		_, err := NewCredentialRepo(db).LatestByUser(context.Background(), uuid.NewString())
		require.ErrorIs(t, err, ErrCredentialNotFound)
	})
}
