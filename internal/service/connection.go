package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/talentwire/autoapply/internal/domain/model"

	apperrors "github.com/talentwire/autoapply/internal/errors"
)

// ConnectionServiceOptions configures a ConnectionService.
type ConnectionServiceOptions struct {
	Credentials credentialResolver
	Gateway     ResumeGateway
	RequestLogs RequestLogStore
	Logger      *slog.Logger
}

// ConnectionService verifies that a user's stored credential can reach the
// external API. Every check leaves an audit row.
type ConnectionService struct {
	credentials credentialResolver
	gateway     ResumeGateway
	logs        RequestLogStore
	log         *slog.Logger
}

func NewConnectionService(opts ConnectionServiceOptions) *ConnectionService {
	if opts.Credentials == nil || opts.Gateway == nil || opts.RequestLogs == nil {
		panic("connection service: missing dependency")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ConnectionService{
		credentials: opts.Credentials,
		gateway:     opts.Gateway,
		logs:        opts.RequestLogs,
		log:         opts.Logger.With("component", "connection"),
	}
}

// TestConnection lists the user's resumes through the external API and
// returns how many were found.
func (s *ConnectionService) TestConnection(ctx context.Context, userID string) (int, error) {
	cred, err := s.credentials.Resolve(ctx, userID)
	switch {
	case errors.Is(err, ErrNoCredential):
		s.record(ctx, userID, model.RequestStatusNoToken, "", "no access token")
		return 0, apperrors.Unauthorized("no access token on file")
	case errors.Is(err, ErrCredentialExpired):
		s.record(ctx, userID, model.RequestStatusTokenExpired, "", "access token expired")
		return 0, apperrors.Unauthorized("access token expired")
	case errors.Is(err, ErrNoResume):
		// A resume-less token can still list resumes; check it anyway.
	case err != nil:
		return 0, err
	}

	resumes, err := s.gateway.ListResumes(ctx, cred.AccessToken)
	if err != nil {
		s.record(ctx, userID, model.RequestStatusFailed, "", err.Error())
		return 0, apperrors.Wrap(err, apperrors.ErrCodeExternal, "connection test failed")
	}
	s.record(ctx, userID, model.RequestStatusSuccess,
		fmt.Sprintf("found %d resumes", len(resumes.Items)), "")
	return len(resumes.Items), nil
}

func (s *ConnectionService) record(ctx context.Context, userID string, status model.RequestStatus, details, errMsg string) {
	_, err := s.logs.Create(ctx, &model.CreateRequestLogRequest{
		UserID:       &userID,
		RequestType:  model.RequestTypeTestConnection,
		Status:       status,
		Details:      details,
		ErrorMessage: errMsg,
	})
	if err != nil {
		s.log.Error("writing request log failed", "user_id", userID, "error", err)
	}
}
