package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/alphaleads/leadsearch/config"
	"github.com/alphaleads/leadsearch/internal/adapters/redis"
	"github.com/alphaleads/leadsearch/internal/apify"
	"github.com/alphaleads/leadsearch/internal/core"
	"github.com/alphaleads/leadsearch/internal/data"
	"github.com/alphaleads/leadsearch/internal/observability/statsd"
	"github.com/alphaleads/leadsearch/internal/service"
)

// ServiceDeps carries the shared infrastructure for service construction.
type ServiceDeps struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  *goredis.Client
	Logger *slog.Logger
}

// ServiceContainer holds the constructed services.
type ServiceContainer struct {
	Searches    *service.SearchService
	Leads       *service.LeadService
	Templates   *service.TemplateService
	Credentials *service.CredentialService
	Poller      *service.PollerService
	Sessions    core.SessionStore
	Metrics     statsd.Sink
}

// NewServices builds the full service graph from shared infrastructure.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil || deps.Redis == nil {
		return ServiceContainer{}, errors.New("config, database and redis are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.StatsDEnabled,
		Address: cfg.Observability.StatsDAddress,
		Prefix:  cfg.Observability.StatsDPrefix,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create statsd client: %w", err)
	}

	encryptor := CreateEncryptor(cfg.TokenEncryptionKey, logger)
	profileRepo, err := data.NewProfileRepo(deps.DB, encryptor)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create profile repo: %w", err)
	}

	searchRepo := data.NewSearchRepo(deps.DB, data.SearchRepoConfig{Logger: logger})
	leadRepo := data.NewLeadRepo(deps.DB, data.LeadRepoConfig{Logger: logger})
	templateRepo := data.NewTemplateRepo(deps.DB)
	cacheRepo := data.NewRedisCacheRepo(deps.Redis)
	sessions := redis.NewSessionStore(deps.Redis, cfg.Session.TTL)

	executor, err := apify.NewClient(apify.Config{
		BaseURL: cfg.Executor.BaseURL,
		ActorID: cfg.Executor.ActorID,
		Timeout: cfg.Executor.RequestTimeout,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create executor client: %w", err)
	}

	searchSvc, err := service.NewSearchService(service.SearchServiceOptions{
		Searches: searchRepo,
		Leads:    leadRepo,
		Profiles: profileRepo,
		Executor: executor,
		Cache:    cacheRepo,
		Metrics:  metrics,
		Logger:   logger,
		Config: service.SearchConfig{
			RunTimeout:   cfg.Executor.RunTimeout,
			DefaultToken: cfg.Executor.DefaultToken,
			PollCacheTTL: cfg.Executor.PollCacheTTL,
		},
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create search service: %w", err)
	}

	leadSvc, err := service.NewLeadService(service.LeadServiceOptions{
		Leads:    leadRepo,
		Searches: searchRepo,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create lead service: %w", err)
	}

	templateSvc, err := service.NewTemplateService(service.TemplateServiceOptions{
		Templates: templateRepo,
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create template service: %w", err)
	}

	credentialSvc, err := service.NewCredentialService(service.CredentialServiceOptions{
		Profiles: profileRepo,
		Executor: executor,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create credential service: %w", err)
	}

	var poller *service.PollerService
	if cfg.Poller.Enabled {
		poller, err = service.NewPollerService(service.PollerServiceOptions{
			Searches:  searchRepo,
			Refresher: searchSvc,
			Logger:    logger,
			Metrics:   metrics,
			Config: service.PollerConfig{
				Interval:    cfg.Poller.Interval,
				BatchSize:   cfg.Poller.BatchSize,
				Concurrency: cfg.Poller.Concurrency,
			},
		})
		if err != nil {
			return ServiceContainer{}, fmt.Errorf("create poller service: %w", err)
		}
	}

	return ServiceContainer{
		Searches:    searchSvc,
		Leads:       leadSvc,
		Templates:   templateSvc,
		Credentials: credentialSvc,
		Poller:      poller,
		Sessions:    sessions,
		Metrics:     metrics,
	}, nil
}

// RunWithShutdown starts the HTTP server and the background poller and blocks
// until a shutdown signal arrives or a background service fails.
func RunWithShutdown(cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	server := StartHTTPServer(cfg, services, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pollerDone := make(chan error, 1)
	if services.Poller != nil {
		go func() {
			pollerDone <- services.Poller.Run(ctx)
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-pollerDone:
		if err != nil {
			logger.Error("poller failed", "error", err)
		}
	}

	// Stop the poller first so no refresh is mid-flight while the server drains.
	cancel()
	if services.Poller != nil {
		select {
		case <-pollerDone:
		case <-time.After(10 * time.Second):
			logger.Warn("poller did not stop in time")
		}
	}

	return ShutdownHTTPServer(context.Background(), server, logger)
}
