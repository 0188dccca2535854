package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/auth"
	"github.com/phrazzld/scry-tutor/internal/config"
	"github.com/phrazzld/scry-tutor/internal/domain/grading"
	"github.com/phrazzld/scry-tutor/internal/events"
	"github.com/phrazzld/scry-tutor/internal/insight"
	"github.com/phrazzld/scry-tutor/internal/lexicon"
	"github.com/phrazzld/scry-tutor/internal/observe"
	"github.com/phrazzld/scry-tutor/internal/platform/redisconn"
	"github.com/phrazzld/scry-tutor/internal/platform/sqlstore"
	"github.com/phrazzld/scry-tutor/internal/service"
	"github.com/phrazzld/scry-tutor/internal/tutor"
	"github.com/redis/go-redis/v9"
)

const serviceName = "scry-tutor"

// application holds the shared dependencies of the server so they can be
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	telemetry    *observe.Provider
	eventMirror  *events.AsyncHandler
	jwtService   auth.JWTService
	tutorService service.TutorService
	registry     *service.SessionRegistry
}

// newApplication wires every component from cfg. The database must already
// be open and migrated.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	dialect sqlstore.Dialect,
) (*application, error) {
	app := &application{config: cfg, logger: logger, db: db}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.telemetry, err = observe.InitProvider(ctx, serviceName, version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	lex := lexicon.Default()
	if cfg.Lexicon.File != "" {
		lex, err = lexicon.LoadFile(cfg.Lexicon.File)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to load lexicon: %w", err)
		}
		logger.Info("lexicon loaded", slog.String("file", cfg.Lexicon.File))
	}

	if cfg.Cache.RedisURL != "" {
		app.redis, err = redisconn.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			app.cleanup()
			return nil, err
		}
		logger.Info("redis connection established")
	}

	conversations := sqlstore.NewConversationStore(db, dialect, logger)
	cards := sqlstore.NewCardStore(db, dialect, logger)

	var contexts insight.ContextBuilder = insight.NewAggregator(conversations, lex, cfg.Session.HistoryLimit, logger)
	ttl := time.Duration(cfg.Cache.ContextTTLSeconds) * time.Second
	switch {
	case ttl <= 0:
		logger.Info("learner context caching disabled")
	case cfg.Cache.Backend == "redis":
		contexts = insight.NewCachedBuilder(contexts, insight.NewRedisCache(app.redis), ttl, logger)
	case cfg.Cache.Backend == "memory":
		contexts = insight.NewCachedBuilder(contexts, insight.NewMemoryCache(ttl, 2*ttl), ttl, logger)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.HandlerFunc(func(_ context.Context, event *events.Event) error {
		logger.Debug("tutor event",
			slog.String("event_type", event.Type),
			slog.String("session_id", event.SessionID.String()))
		return nil
	}))
	if cfg.Events.RedisChannel != "" {
		app.eventMirror = events.NewAsyncHandler(
			events.NewRedisPublisher(app.redis, cfg.Events.RedisChannel, logger),
			events.AsyncConfig{},
			logger,
		)
		emitter.RegisterHandler(app.eventMirror)
		logger.Info("turn events mirrored to redis", slog.String("channel", cfg.Events.RedisChannel))
	}

	evaluator := grading.NewHeuristicEvaluator(lex, grading.NewParams(grading.ParamsConfig{
		CorrectThreshold: cfg.Grading.CorrectThreshold,
		PartialThreshold: cfg.Grading.PartialThreshold,
		MaxConcepts:      cfg.Grading.MaxConcepts,
		MinConceptLength: cfg.Grading.MinConceptLength,
		FuzzyThreshold:   cfg.Grading.FuzzyThreshold,

		MinFragmentConcepts: cfg.Grading.MinFragmentConcepts,
	}))

	metrics := app.telemetry.Metrics
	app.registry = service.NewSessionRegistry(
		time.Duration(cfg.Session.TTLMinutes)*time.Minute,
		func(sessionID uuid.UUID) {
			metrics.SessionEvicted(context.Background())
			logger.Debug("session left registry", slog.String("session_id", sessionID.String()))
		},
	)

	app.tutorService, err = service.NewTutorService(service.TutorDeps{
		Conversations: conversations,
		Cards:         cards,
		Contexts:      contexts,
		Composer:      insight.NewComposer(nil),
		Machine:       tutor.NewMachine(lex, evaluator),
		Registry:      app.registry,
		Emitter:       emitter,
		Metrics:       metrics,
		Logger:        logger,
	})
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create tutor service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases every resource the application opened.
func (app *application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if app.telemetry != nil {
		if err := app.telemetry.Shutdown(ctx); err != nil {
			app.logger.Error("error shutting down metrics", slog.String("error", err.Error()))
		}
	}
	if app.eventMirror != nil {
		app.eventMirror.Stop()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis connection", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
