package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/talentwire/autoapply/internal/data"
	"github.com/talentwire/autoapply/internal/domain/model"

	apperrors "github.com/talentwire/autoapply/internal/errors"
)

// Sentinel outcomes of credential resolution. The processor maps each to a
// distinct audit status.
var (
	ErrNoCredential      = errors.New("service: no usable credential")
	ErrCredentialExpired = errors.New("service: credential expired")
	ErrNoResume          = errors.New("service: credential has no resume")
)

// CredentialServiceOptions configures a CredentialService.
type CredentialServiceOptions struct {
	Repo         CredentialStore
	TimeProvider data.TimeProvider
	Logger       *slog.Logger
}

// CredentialService resolves the credential to use for a user's API calls.
type CredentialService struct {
	repo CredentialStore
	tp   data.TimeProvider
	log  *slog.Logger
}

func NewCredentialService(opts CredentialServiceOptions) *CredentialService {
	if opts.Repo == nil {
		panic("credential service: nil repo")
	}
	if opts.TimeProvider == nil {
		opts.TimeProvider = &data.RealTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &CredentialService{
		repo: opts.Repo,
		tp:   opts.TimeProvider,
		log:  opts.Logger.With("component", "credentials"),
	}
}

// Resolve returns the newest credential for userID, ready for use. It returns
// ErrNoCredential when none is stored or the token is blank,
// ErrCredentialExpired when the token is past its expiry, and ErrNoResume when
// no resume is attached.
func (s *CredentialService) Resolve(ctx context.Context, userID string) (*model.Credential, error) {
	cred, err := s.repo.LatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, data.ErrCredentialNotFound) {
			return nil, ErrNoCredential
		}
		return nil, err
	}
	if cred.AccessToken == "" {
		return nil, ErrNoCredential
	}
	if cred.Expired(s.tp.Now()) {
		return nil, ErrCredentialExpired
	}
	if !cred.HasResume() {
		// The token is still usable for read calls, so hand it back with
		// the sentinel.
		return cred, ErrNoResume
	}
	return cred, nil
}

// Save validates and stores a new credential. Stored credentials are
// append-only; the newest one wins on Resolve.
func (s *CredentialService) Save(ctx context.Context, req *model.CreateCredentialRequest) (*model.Credential, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	cred, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "save credential")
	}
	s.log.Info("credential saved", "user_id", cred.UserID, "has_resume", cred.HasResume())
	return cred, nil
}
