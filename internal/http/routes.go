package httpx

import (
	"log/slog"
	"net/http"

	"github.com/talentwire/autoapply/internal/data"
	"github.com/talentwire/autoapply/internal/hh"
	"github.com/talentwire/autoapply/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	JobSearches *service.JobSearchService
	Credentials *service.CredentialService
	Connection  *service.ConnectionService
	Settings    *service.SettingsService
	Poller      *service.AutoApplyService

	Applications *data.ApplicationRepo
	RequestLogs  *data.RequestLogRepo

	// Optional: OAuth flow. Registered only when OAuth and state storage
	// are both configured.
	OAuth       *hh.OAuthClient
	OAuthStates *data.OAuthStateStore
	Resumes     service.ResumeGateway

	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	if services.Logger == nil {
		services.Logger = slog.Default()
	}
	mux := http.NewServeMux()

	registerJobSearchRoutes(mux, &JobSearchHandlers{Svc: services.JobSearches})
	registerCredentialRoutes(mux, &CredentialHandlers{Svc: services.Credentials, Connection: services.Connection})
	registerApplicationRoutes(mux, &ApplicationHandlers{Repo: services.Applications})
	registerRequestLogRoutes(mux, &RequestLogHandlers{Repo: services.RequestLogs})
	registerSettingsRoutes(mux, &SettingsHandlers{Svc: services.Settings})
	if services.Poller != nil {
		registerPollerRoutes(mux, &PollerHandlers{Svc: services.Poller})
	}
	if services.OAuth != nil && services.OAuthStates != nil {
		registerOAuthRoutes(mux, &OAuthHandlers{
			OAuth:       services.OAuth,
			States:      services.OAuthStates,
			Credentials: services.Credentials,
			Resumes:     services.Resumes,
			Logger:      services.Logger,
		})
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return Recover(services.Logger)(Logging(services.Logger)(mux))
}

func registerJobSearchRoutes(mux *http.ServeMux, h *JobSearchHandlers) {
	mux.HandleFunc("POST /api/job-searches", h.Create)
	mux.HandleFunc("GET /api/job-searches", h.List)
	mux.HandleFunc("GET /api/job-searches/{id}", h.Get)
	mux.HandleFunc("POST /api/job-searches/{id}/activate", h.Activate)
	mux.HandleFunc("POST /api/job-searches/{id}/deactivate", h.Deactivate)
}

func registerCredentialRoutes(mux *http.ServeMux, h *CredentialHandlers) {
	mux.HandleFunc("POST /api/credentials", h.Save)
	mux.HandleFunc("POST /api/credentials/test-connection", h.TestConnection)
}

func registerApplicationRoutes(mux *http.ServeMux, h *ApplicationHandlers) {
	mux.HandleFunc("GET /api/applications", h.List)
}

func registerRequestLogRoutes(mux *http.ServeMux, h *RequestLogHandlers) {
	mux.HandleFunc("GET /api/request-logs", h.List)
}

func registerSettingsRoutes(mux *http.ServeMux, h *SettingsHandlers) {
	mux.HandleFunc("GET /api/settings", h.List)
	mux.HandleFunc("PUT /api/settings/{key}", h.Update)
}

func registerPollerRoutes(mux *http.ServeMux, h *PollerHandlers) {
	mux.HandleFunc("GET /api/poller/status", h.Status)
	mux.HandleFunc("POST /api/poller/start", h.Start)
	mux.HandleFunc("POST /api/poller/stop", h.Stop)
	mux.HandleFunc("POST /api/poller/run", h.RunOnce)
}

func registerOAuthRoutes(mux *http.ServeMux, h *OAuthHandlers) {
	mux.HandleFunc("GET /auth/hh/login", h.Login)
	mux.HandleFunc("GET /auth/hh/callback", h.Callback)
}
