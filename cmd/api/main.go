// Package main is the entrypoint for the timeledger API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/timeledger/timeledger/internal/cache"
	"github.com/timeledger/timeledger/internal/config"
	"github.com/timeledger/timeledger/internal/handler"
	"github.com/timeledger/timeledger/internal/metrics"
	"github.com/timeledger/timeledger/internal/middleware"
	"github.com/timeledger/timeledger/internal/migrate"
	"github.com/timeledger/timeledger/internal/repository"
	"github.com/timeledger/timeledger/internal/server"
	"github.com/timeledger/timeledger/internal/service"
	"github.com/timeledger/timeledger/internal/store/sqlite"
)

// dataStore is the persistence surface shared by both drivers.
type dataStore interface {
	service.ProjectStore
	service.TimeEntryStore
	service.APIKeyStore
	middleware.KeyLookup
	Ping(ctx context.Context) error
}

type backend struct {
	name    string
	data    dataStore
	reports service.ReportStore
	close   func() error
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error(
			"failed to open store",
			slog.String("driver", cfg.StoreDriver),
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("store ready", "driver", store.name)

	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			_ = store.close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set; auth cache, project cache and rate limiting disabled")
	}

	policy, err := service.ParseRangePolicy(cfg.ReportRangePolicy)
	if err != nil {
		logger.Error("invalid report range policy", "error", err)
		os.Exit(1)
	}

	recorder := metrics.NewInMemory()

	var (
		projectCache service.ProjectCache
		revocations  service.RevocationCache
	)
	if cacheClient != nil {
		projectCache = cacheClient
		revocations = cacheClient
	}

	reportsService := service.NewReportsService(store.reports, service.ReportsOptions{
		RangePolicy: policy,
		TopLimit:    cfg.TopProjectsLimit,
		Recorder:    recorder,
	})
	projectService := service.NewProjectService(store.data, projectCache, recorder)

	app := &application{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		cache:    cacheClient,
		recorder: recorder,
		reports:  reportsService,
		legacy:   service.NewSummaryService(reportsService, projectService),
		projects: projectService,
		entries:  service.NewTimeEntryService(store.data, store.data, recorder),
		keys:     service.NewAPIKeyService(store.data, revocations, cfg.APIKeyEnv, logger),
	}

	srv := server.New(
		app.routes(),
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown(store.name, func(context.Context) error { return store.close() })
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error { return cacheClient.Close() })
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"default_timezone", cfg.DefaultTimezone,
		"range_policy", cfg.ReportRangePolicy,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore connects the configured driver and applies migrations.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &backend{name: "sqlite", data: s, reports: s, close: s.Close}, nil

	case config.DriverPostgres:
		repo, err := repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := migrate.Run(ctx, repo.Pool(), logger); err != nil {
				repo.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return &backend{
			name:    "postgres",
			data:    repo,
			reports: repository.NewReportRepository(repo),
			close: func() error {
				repo.Close()
				return nil
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *backend
	cache    *cache.Cache
	recorder *metrics.InMemoryRecorder

	reports  *service.ReportsService
	legacy   *service.SummaryService
	projects *service.ProjectService
	entries  *service.TimeEntryService
	keys     *service.APIKeyService
}

// routes configures the chi router with all routes and middleware.
func (app *application) routes() *chi.Mux {
	cfg, logger := app.cfg, app.logger

	h := handler.New()
	var cacheHealth handler.HealthChecker
	if app.cache != nil {
		cacheHealth = app.cache
	}
	healthHandler := handler.NewHealthHandler(app.store.name, app.store.data, cacheHealth)
	metricsHandler := handler.NewMetricsHandler(app.recorder)
	reportsHandler := handler.NewReportsHandler(app.reports, app.legacy, cfg.DefaultTimezone, logger)
	projectHandler := handler.NewProjectHandler(app.projects, logger)
	entryHandler := handler.NewTimeEntryHandler(app.entries, logger)
	apiKeyHandler := handler.NewAPIKeyHandler(app.keys, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(cfg.IsDevelopment()))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.GetCORSAllowedOrigins())))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Unauthenticated endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	authCfg := middleware.AuthConfig{
		Logger:      logger,
		Keys:        app.store.data,
		MinDuration: middleware.DefaultMinAuthDuration,
	}
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Enabled: cfg.RateLimitAPIEnabled,
	}
	if app.cache != nil {
		authCfg.Cache = app.cache
		rateLimitCfg.Limiter = app.cache
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimit(rateLimitCfg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin())
			r.Get("/reports/overview", reportsHandler.Overview)
			r.Get("/reports/projects", reportsHandler.Projects)
			r.Get("/reports/projects.csv", reportsHandler.ProjectsCSV)
			r.Get("/overview", reportsHandler.LegacyOverview)
			r.Get("/projects/summary", reportsHandler.LegacyProjectsSummary)
		})

		r.Route("/projects", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", projectHandler.List)
			r.With(middleware.RequireWrite()).Post("/", projectHandler.Create)
			r.With(middleware.RequireRead()).Get("/search", projectHandler.Search)
			r.With(middleware.RequireRead()).Get("/{id}", projectHandler.Get)
			r.With(middleware.RequireAdmin()).Delete("/{id}", projectHandler.Delete)
		})

		r.Route("/time-entries", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", entryHandler.List)
			r.With(middleware.RequireWrite()).Post("/", entryHandler.Create)
			r.With(middleware.RequireWrite()).Delete("/{id}", entryHandler.Delete)
		})

		r.Route("/api-keys", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", apiKeyHandler.List)
			r.With(middleware.RequireAdmin()).Post("/", apiKeyHandler.Create)
			r.With(middleware.RequireAdmin()).Delete("/{key_id}", apiKeyHandler.Revoke)
			r.With(middleware.RequireAdmin()).Post("/{key_id}/rotate", apiKeyHandler.Rotate)
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
