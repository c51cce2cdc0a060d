// Package app wires the gateways, the planner and the workspaces together
// for every binary.
package app

import (
	"context"
	"errors"
	"fmt"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/clipper"
	"comida-a-casa/internal/config"
	"comida-a-casa/internal/database"
	"comida-a-casa/internal/llm"
	"comida-a-casa/internal/metrics"
	"comida-a-casa/internal/persistence"
	"comida-a-casa/internal/planner"
	"comida-a-casa/internal/session"
	"comida-a-casa/internal/web"
	"comida-a-casa/internal/workspace"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// App holds the application's dependencies.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *database.DB
	Registry *prometheus.Registry

	Metrics     *metrics.Store
	Store       *persistence.Store
	Planner     *planner.Planner
	Clipper     *clipper.Clipper
	Revocations *session.SQLRevocations
	Sessions    *session.Manager
	Workspaces  *workspace.Manager

	closers []func() error
}

// New opens the database and the configured generation gateway and builds
// the App. Missing credentials are tolerated; the web server reports them.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gen, err := NewGenerator(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	var closers []func() error
	if c, ok := gen.(llm.Closer); ok {
		closers = append(closers, c.Close)
	}
	closers = append(closers, db.Close)

	a, err := NewWithGenerator(cfg, logger, db, gen)
	if err != nil {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}
	a.closers = append(a.closers, closers...)
	return a, nil
}

// NewGenerator returns the provider selected by GENERATOR_PROVIDER, or a
// generator that always fails when its key is not set.
func NewGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	switch cfg.GeneratorProvider {
	case config.ProviderGroq:
		if cfg.GroqAPIKey == "" {
			return unconfigured{}, nil
		}
		return llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel), nil
	default:
		if cfg.GeminiAPIKey == "" {
			return unconfigured{}, nil
		}
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		return client, nil
	}
}

// NewWithGenerator builds the App over an open database and generator.
// The caller keeps ownership of both.
func NewWithGenerator(cfg *config.Config, logger *zap.Logger, db *database.DB, gen llm.Generator) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metricsStore := metrics.NewStore(db.SQL)
	gen = llm.Instrument(gen, llm.Recorders{metricsStore, metrics.NewCollectors(reg)})

	store := persistence.NewStore(db.SQL)
	mealPlanner := planner.NewPlanner(gen)
	recipeClipper := clipper.NewClipper(mealPlanner)

	revocations := session.NewSQLRevocations(db.SQL)
	provider := session.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)
	sessions := session.NewManager(provider, revocations, cfg.SessionSecret, cfg.SessionTTL)

	workspaces := workspace.NewManager(store, func(uid string) workspace.Collections {
		return store.ForUser(uid)
	}, mealPlanner, recipeClipper, logger)

	a := &App{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Registry:    reg,
		Metrics:     metricsStore,
		Store:       store,
		Planner:     mealPlanner,
		Clipper:     recipeClipper,
		Revocations: revocations,
		Sessions:    sessions,
		Workspaces:  workspaces,
	}

	stop, err := subscribeWorkspaces(sessions, workspaces)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, stop)
	return a, nil
}

// subscribeWorkspaces makes logins and logouts open and tear down
// workspaces.
func subscribeWorkspaces(sessions *session.Manager, workspaces *workspace.Manager) (func() error, error) {
	stop, err := sessions.Observe(workspaces.HandleAuthChange)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe workspaces to auth changes: %w", err)
	}
	return func() error { stop(); return nil }, nil
}

// WebServer builds the HTTP server for the App.
func (a *App) WebServer() (*web.Server, error) {
	return web.NewServer(web.Options{
		Missing:      a.Config.Missing(),
		SecureCookie: a.Config.SecureCookies(),
		SessionTTL:   a.Config.SessionTTL,
		Sessions:     a.Sessions,
		Workspaces:   a.Workspaces,
		Logger:       a.Logger,
		Registry:     a.Registry,
	})
}

// Close releases everything New opened, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

const unconfiguredMessage = "El servicio de generación no está configurado."

// unconfigured stands in for a provider whose API key is missing.
type unconfigured struct{}

func (unconfigured) GenerateJSON(context.Context, llm.Request) (llm.ContentResponse, error) {
	return llm.ContentResponse{}, apperr.New(apperr.GenerationFailure, "llm.generate", unconfiguredMessage)
}
