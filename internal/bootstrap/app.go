package bootstrap

// Package bootstrap wires configuration into the concrete object graph: the
// auth adapter for the configured mode, the persisted store backend, metrics,
// and the session, theme, and routing components the host embeds.

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/escolaweb/portal-core/config"
	"github.com/escolaweb/portal-core/internal/adapters/devauth"
	"github.com/escolaweb/portal-core/internal/adapters/httpapi"
	"github.com/escolaweb/portal-core/internal/adapters/oauthapi"
	"github.com/escolaweb/portal-core/internal/adapters/storage"
	domainsession "github.com/escolaweb/portal-core/internal/domain/session"
	"github.com/escolaweb/portal-core/internal/guard"
	"github.com/escolaweb/portal-core/internal/observability/statsd"
	"github.com/escolaweb/portal-core/internal/ports"
	"github.com/escolaweb/portal-core/internal/service"
)

// HostPorts are the platform hooks the embedding host must provide. Nav and
// Notifier are required; Scheme and ApplyTheme may be nil when the host has no
// ambient color-scheme signal or no global presentation flag.
type HostPorts struct {
	Nav        ports.Navigator
	Notifier   ports.Notifier
	Scheme     ports.SchemeDetector
	ApplyTheme func(dark bool)
}

// App is the wired object graph.
type App struct {
	Config   *config.AppConfig
	Logger   *slog.Logger
	Sessions *service.SessionStore
	Theme    *service.ThemeStore
	Router   *guard.Router

	closers []func() error
}

// NewApp builds the full object graph from configuration.
func NewApp(cfg *config.AppConfig, logger *slog.Logger, host HostPorts) (*App, error) {
	if host.Nav == nil {
		return nil, fmt.Errorf("bootstrap: host navigator is required")
	}
	if host.Notifier == nil {
		return nil, fmt.Errorf("bootstrap: host notifier is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{Config: cfg, Logger: logger}

	metrics, err := buildMetrics(cfg.Observability, logger)
	if err != nil {
		return nil, err
	}
	if metrics != nil {
		app.closers = append(app.closers, metrics.Close)
	}

	store, closer, err := buildStorage(cfg.Storage)
	if err != nil {
		app.shutdown()
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	api, err := buildAuthAPI(cfg, logger)
	if err != nil {
		app.shutdown()
		return nil, err
	}

	app.Sessions = service.NewSessionStore(service.SessionStoreOptions{
		API:      api,
		Storage:  store,
		Nav:      host.Nav,
		Notifier: host.Notifier,
		Logger:   logger,
		Metrics:  sinkOrNil(metrics),
		Limiter:  buildLoginLimiter(cfg.Auth),
	})
	app.Theme = service.NewThemeStore(service.ThemeStoreOptions{
		Storage: store,
		Scheme:  host.Scheme,
		Apply:   host.ApplyTheme,
		Logger:  logger,
	})
	app.Router = guard.NewRouter(app.Sessions, sinkOrNil(metrics))

	logger.Info("portal core wired",
		"auth_mode", cfg.Auth.Mode,
		"storage_backend", cfg.Storage.Backend,
		"metrics_enabled", cfg.Observability.Enabled,
	)
	return app, nil
}

// Close releases held resources in reverse wiring order.
func (a *App) Close() error {
	return a.shutdown()
}

func (a *App) shutdown() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func buildMetrics(cfg config.ObservabilityConfig, logger *slog.Logger) (*statsd.Client, error) {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Enabled,
		Address: cfg.Address,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: statsd: %w", err)
	}
	return client, nil
}

// sinkOrNil keeps a typed-nil *statsd.Client out of the Sink interface.
func sinkOrNil(client *statsd.Client) statsd.Sink {
	if client == nil {
		return nil
	}
	return client
}

func buildStorage(cfg config.StorageConfig) (ports.KeyValue, func() error, error) {
	switch cfg.Backend {
	case config.StorageMemory:
		return storage.NewMemory(), nil, nil
	case config.StorageFile:
		store, err := storage.NewFile(cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: file storage: %w", err)
		}
		return store, nil, nil
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return storage.NewRedisWithPrefix(client, cfg.Redis.Prefix), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown storage backend %q", cfg.Backend)
	}
}

// buildAuthAPI selects the auth adapter for the configured mode, mirroring the
// rest|oauth|offline switch in config.
func buildAuthAPI(cfg *config.AppConfig, logger *slog.Logger) (ports.AuthAPI, error) {
	httpClient := &http.Client{Timeout: cfg.API.Timeout}

	switch cfg.Auth.Mode {
	case config.AuthModeRest:
		client, err := httpapi.NewClient(httpapi.Config{
			BaseURL:    cfg.API.BaseURL,
			HTTPClient: httpClient,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: rest auth: %w", err)
		}
		return client, nil

	case config.AuthModeOAuth:
		rest, err := httpapi.NewClient(httpapi.Config{
			BaseURL:    cfg.API.BaseURL,
			HTTPClient: httpClient,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: oauth rest delegate: %w", err)
		}
		provider, err := oauthapi.NewProvider(oauthapi.Config{
			ClientID:     cfg.Auth.OAuth.ClientID,
			ClientSecret: cfg.Auth.OAuth.ClientSecret,
			TokenURL:     cfg.Auth.OAuth.TokenURL,
			Scopes:       cfg.Auth.OAuth.Scopes,
			HTTPClient:   httpClient,
		}, rest)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: oauth auth: %w", err)
		}
		return provider, nil

	case config.AuthModeOffline:
		if !cfg.IsDev {
			return nil, fmt.Errorf("bootstrap: offline auth mode requires dev mode")
		}
		provider, err := devauth.NewProvider(devauth.Config{
			Username:   cfg.Auth.Offline.Username,
			Name:       cfg.Auth.Offline.Name,
			Role:       domainsession.Role(cfg.Auth.Offline.Role),
			SchoolName: cfg.Auth.Offline.SchoolName,
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: offline auth: %w", err)
		}
		return provider, nil

	default:
		return nil, fmt.Errorf("bootstrap: unknown auth mode %q", cfg.Auth.Mode)
	}
}

func buildLoginLimiter(cfg config.AuthConfig) *rate.Limiter {
	if cfg.LoginAttemptsPerMinute <= 0 {
		return nil
	}
	perMinute := float64(cfg.LoginAttemptsPerMinute)
	return rate.NewLimiter(rate.Limit(perMinute/60), cfg.LoginAttemptsPerMinute)
}
