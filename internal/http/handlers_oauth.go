package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/talentwire/autoapply/internal/data"
	"github.com/talentwire/autoapply/internal/domain/model"
	"github.com/talentwire/autoapply/internal/hh"
	"github.com/talentwire/autoapply/internal/service"
)

// OAuthHandlers implements the authorization-code flow against the
// recruitment platform. Login issues a one-time state nonce bound to the
// user, Callback exchanges the code and stores the resulting token as the
// user's newest credential.
type OAuthHandlers struct {
	OAuth       *hh.OAuthClient
	States      *data.OAuthStateStore
	Credentials *service.CredentialService
	Resumes     service.ResumeGateway
	Logger      *slog.Logger
}

func (h *OAuthHandlers) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login redirects the user to the platform's consent page.
func (h *OAuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_error", Err: errors.New("user_id is required")})
		return
	}

	state, err := h.States.Issue(r.Context(), userID)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "oauth_state_failed", Err: errors.New("failed to start authorization")})
		return
	}

	http.Redirect(w, r, h.OAuth.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the flow: it claims the state nonce, swaps the
// authorization code for tokens, picks the user's first resume and stores
// everything as a new credential.
func (h *OAuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errCode := q.Get("error"); errCode != "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "oauth_denied", Err: errors.New("authorization was denied: " + errCode)})
		return
	}

	state, code := q.Get("state"), q.Get("code")
	if state == "" || code == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_error", Err: errors.New("state and code are required")})
		return
	}

	userID, err := h.States.Claim(r.Context(), state)
	if err != nil {
		if errors.Is(err, data.ErrStateNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "oauth_state_invalid", Err: errors.New("unknown or expired authorization state")})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "oauth_state_failed", Err: errors.New("failed to verify authorization state")})
		return
	}

	tok, err := h.OAuth.Exchange(r.Context(), code)
	if err != nil {
		h.log().Error("oauth code exchange failed", "user_id", userID, "error", err)
		WriteError(w, ErrorParams{Code: http.StatusBadGateway, ErrCode: "oauth_exchange_failed", Err: errors.New("token exchange with the platform failed")})
		return
	}

	req := &model.CreateCredentialRequest{
		UserID:      userID,
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.ExpiresAt,
	}
	if tok.RefreshToken != "" {
		req.RefreshToken = &tok.RefreshToken
	}
	if resumeID := h.firstResumeID(r, tok.AccessToken, userID); resumeID != "" {
		req.ResumeID = &resumeID
	}

	cred, err := h.Credentials.Save(r.Context(), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cred)
}

// firstResumeID best-effort resolves the user's default resume. A missing
// resume is not fatal here; the poller reports it per cycle instead.
func (h *OAuthHandlers) firstResumeID(r *http.Request, token, userID string) string {
	if h.Resumes == nil {
		return ""
	}
	list, err := h.Resumes.ListResumes(r.Context(), token)
	if err != nil {
		h.log().Warn("resume lookup after oauth failed", "user_id", userID, "error", err)
		return ""
	}
	if len(list.Items) == 0 {
		return ""
	}
	return list.Items[0].ID
}
