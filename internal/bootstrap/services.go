package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/talentwire/autoapply/config"
	"github.com/talentwire/autoapply/internal/data"
	"github.com/talentwire/autoapply/internal/hh"
	obserrors "github.com/talentwire/autoapply/internal/observability/errors"
	"github.com/talentwire/autoapply/internal/observability/notify"
	"github.com/talentwire/autoapply/internal/observability/notify/pagerduty"
	"github.com/talentwire/autoapply/internal/observability/notify/slack"
	"github.com/talentwire/autoapply/internal/observability/statsd"
	"github.com/talentwire/autoapply/internal/service"
	"github.com/talentwire/autoapply/internal/service/failurenotifier"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	JobSearches *service.JobSearchService
	Credentials *service.CredentialService
	Connection  *service.ConnectionService
	Settings    *service.SettingsService
	Poller      *service.AutoApplyService

	Applications *data.ApplicationRepo
	RequestLogs  *data.RequestLogRepo

	// OAuth is nil when the OAuth application credentials are not configured.
	OAuth       *hh.OAuthClient
	OAuthStates *data.OAuthStateStore
	Gateway     *hh.Client

	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	MetricsConfig   config.ObservabilityMetricsConfig
	FailureNotifier *failurenotifier.Service
	NotifierConfig  config.ObservabilityNotificationsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB              *sql.DB
	Redis           redis.UniversalClient
	JobSearchRepo   *data.JobSearchRepo
	ApplicationRepo *data.ApplicationRepo
	CredentialRepo  *data.CredentialRepo
	RequestLogRepo  *data.RequestLogRepo
	SettingsRepo    *data.SettingsRepo
	AppliedCache    *data.AppliedCache
	OAuthStates     *data.OAuthStateStore
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.StatsdPrefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	failureNotifier := buildFailureNotifier(obsLogger, cfg.Notifications)

	return ObservabilityContainer{
		MetricsSink:     metricsSink,
		MetricsConfig:   cfg.Metrics,
		FailureNotifier: failureNotifier,
		NotifierConfig:  cfg.Notifications,
	}
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient, cfg *config.AppConfig) *serviceRepositories {
	repos := &serviceRepositories{
		DB:              db,
		Redis:           redisClient,
		JobSearchRepo:   data.NewJobSearchRepo(db),
		ApplicationRepo: data.NewApplicationRepo(db),
		CredentialRepo:  data.NewCredentialRepo(db),
		RequestLogRepo:  data.NewRequestLogRepo(db),
		SettingsRepo:    data.NewSettingsRepo(db),
	}
	if redisClient != nil {
		repos.AppliedCache = data.NewAppliedCache(redisClient, cfg.Redis.AppliedTTL)
		repos.OAuthStates = data.NewOAuthStateStore(redisClient, 0)
	}
	return repos
}

// buildGateway constructs the external API client shared by the processor and
// the connectivity test.
func buildGateway(cfg config.HHConfig, logger *slog.Logger) *hh.Client {
	return hh.NewClient(hh.Config{
		BaseURL:           cfg.BaseURL,
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.Timeout,
		RateLimitCooldown: cfg.RateLimitCooldown,
		RateLimitRetries:  cfg.RateLimitRetries,
		Logger:            logger,
	})
}

func buildOAuthClient(cfg config.HHConfig, logger *slog.Logger) *hh.OAuthClient {
	if !cfg.OAuthConfigured() {
		return nil
	}
	client, err := hh.NewOAuthClient(hh.OAuthConfig{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
		AuthURL:      cfg.OAuthAuthURL,
		TokenURL:     cfg.OAuthTokenURL,
	})
	if err != nil {
		logger.Error("failed to initialise oauth client", "error", err)
		return nil
	}
	return client
}

// DomainServicesOptions groups inputs for building the service layer.
type DomainServicesOptions struct {
	Repos         *serviceRepositories
	Gateway       *hh.Client
	Observability ObservabilityContainer
	Config        *config.AppConfig
	Logger        *slog.Logger
}

// buildDomainServices wires business services using repositories and observability adapters.
func buildDomainServices(opts *DomainServicesOptions) ServiceContainer {
	if opts == nil {
		return ServiceContainer{}
	}
	svcLogger := opts.Logger
	if svcLogger == nil {
		svcLogger = slog.Default()
	}

	appCfg := opts.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	credentials := service.NewCredentialService(service.CredentialServiceOptions{
		Repo:   opts.Repos.CredentialRepo,
		Logger: svcLogger,
	})

	var cache service.AppliedCache
	if opts.Repos.AppliedCache != nil {
		cache = opts.Repos.AppliedCache
	}
	guard := service.NewGuardService(service.GuardServiceOptions{
		Applications:            opts.Repos.ApplicationRepo,
		Cache:                   cache,
		RetryFailedApplications: appCfg.Poller.RetryFailedApplications,
		Logger:                  svcLogger,
	})

	filter := service.NewVacancyFilter()

	processor := service.NewProcessorService(service.ProcessorServiceOptions{
		Credentials:  credentials,
		Guard:        guard,
		Gateway:      opts.Gateway,
		Applications: opts.Repos.ApplicationRepo,
		RequestLogs:  opts.Repos.RequestLogRepo,
		Filter:       filter,
		ApplyPause:   appCfg.Poller.ApplyPause,
		Logger:       svcLogger,
	})

	settings := service.NewSettingsService(service.SettingsServiceOptions{
		Repo: opts.Repos.SettingsRepo,
		Defaults: service.PollerSettings{
			PollInterval:          appCfg.Poller.PollInterval,
			MaxApplicationsPerDay: appCfg.Poller.MaxApplicationsPerDay,
		},
		Logger: svcLogger,
	})

	var metricsSink statsd.Sink
	if opts.Observability.MetricsSink != nil {
		metricsSink = opts.Observability.MetricsSink
	}
	poller := service.NewAutoApplyService(service.AutoApplyServiceOptions{
		JobSearches:   opts.Repos.JobSearchRepo,
		Processor:     processor,
		Settings:      settings,
		ErrorCooldown: appCfg.Poller.ErrorCooldown,
		Logger:        svcLogger,
		Metrics:       metricsSink,
		OnCycleError:  cycleErrorReporter(opts.Observability.FailureNotifier),
	})

	jobSearches := service.NewJobSearchService(service.JobSearchServiceOptions{
		Repo:   opts.Repos.JobSearchRepo,
		Filter: filter,
		Logger: svcLogger,
	})

	connection := service.NewConnectionService(service.ConnectionServiceOptions{
		Credentials: credentials,
		Gateway:     opts.Gateway,
		RequestLogs: opts.Repos.RequestLogRepo,
		Logger:      svcLogger,
	})

	return ServiceContainer{
		JobSearches:   jobSearches,
		Credentials:   credentials,
		Connection:    connection,
		Settings:      settings,
		Poller:        poller,
		Applications:  opts.Repos.ApplicationRepo,
		RequestLogs:   opts.Repos.RequestLogRepo,
		OAuth:         buildOAuthClient(appCfg.HH, svcLogger),
		OAuthStates:   opts.Repos.OAuthStates,
		Gateway:       opts.Gateway,
		Observability: opts.Observability,
	}
}

// cycleErrorReporter adapts the failure notifier to the poll loop's error
// hook. A nil or sink-less notifier yields a nil hook.
func cycleErrorReporter(notifier *failurenotifier.Service) func(ctx context.Context, err error, consecutive int) {
	if notifier == nil || !notifier.Enabled() {
		return nil
	}
	return func(ctx context.Context, err error, consecutive int) {
		severity := notify.SeverityWarning
		if consecutive > 1 {
			severity = notify.SeverityCritical
		}
		notifier.NotifyPollFailure(ctx, notify.PollFailurePayload{
			Error:       err.Error(),
			ErrorClass:  obserrors.Classify(err),
			Severity:    severity,
			Consecutive: consecutive,
		})
	}
}

// NewServices builds the full service container from shared dependencies.
func NewServices(deps *ServiceDeps) ServiceContainer {
	if deps == nil {
		return ServiceContainer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var appCfg config.AppConfig
	if deps.Config != nil {
		appCfg = *deps.Config
	}

	observability := buildObservability(logger, appCfg.Observability)
	repos := buildRepositories(deps.DB, deps.RedisClient, &appCfg)
	gateway := buildGateway(appCfg.HH, logger)
	return buildDomainServices(&DomainServicesOptions{
		Repos:         repos,
		Gateway:       gateway,
		Observability: observability,
		Config:        &appCfg,
		Logger:        logger,
	})
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *failurenotifier.Service {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{
			Logger: baseLogger.With("component", "failure_notifier"),
		})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "slack",
				Sink: client,
			})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "pagerduty",
				Sink: client,
			})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger: baseLogger.With("component", "failure_notifier"),
		Sinks:  sinks,
	})
}
