package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/api"
	"github.com/gryp17/Tablaturi-bg-API/internal/captcha"
	"github.com/gryp17/Tablaturi-bg-API/internal/config"
	"github.com/gryp17/Tablaturi-bg-API/internal/mail"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/metrics"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/postgres"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
	"github.com/gryp17/Tablaturi-bg-API/internal/service/auth"
	"github.com/gryp17/Tablaturi-bg-API/internal/session"
	"github.com/gryp17/Tablaturi-bg-API/internal/storage"
	"github.com/redis/go-redis/v9"
)

const sessionPurgeInterval = time.Minute

// application holds the shared dependencies of the server so they can be
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db       *sql.DB
	redis    *redis.Client
	files    *storage.Disk
	metrics  *metrics.Metrics
	sessions *session.Manager
	server   *api.Server

	// notifications delivers comment notification mail in the background.
	notifications *mail.Queue

	// stopPurge ends the memory session purge loop, when one runs.
	stopPurge context.CancelFunc
}

// newApplication connects the backing services and builds the controllers.
// On error everything opened so far is released.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *application, err error) {
	app := &application{config: cfg, logger: logger}
	defer func() {
		if err != nil {
			app.cleanup()
		}
	}()

	app.db, err = postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	app.metrics = metrics.New()
	if err = app.metrics.RegisterDB(app.db, "tablaturi"); err != nil {
		return nil, fmt.Errorf("failed to register database metrics: %w", err)
	}

	sessionStore, err := app.openSessionStore(ctx)
	if err != nil {
		return nil, err
	}
	app.sessions = session.NewManager(sessionStore, cfg.Session, logger)

	app.files, err = storage.NewDisk(cfg.Storage.ContentDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open content storage: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	mailer := mail.New(cfg.Mail, logger)

	users := postgres.NewPostgresUserStore(app.db, logger)
	articleStore := postgres.NewPostgresArticleStore(app.db, logger)
	commentStore := postgres.NewPostgresUserCommentStore(app.db, logger)
	tabStore := postgres.NewPostgresTabStore(app.db, logger)
	trackStore := postgres.NewPostgresBackingTrackStore(app.db, logger)
	favourites := postgres.NewPostgresFavouriteStore(app.db, logger)

	accounts, err := service.NewAccountService(users, hasher, tokens, mailer, app.files,
		cfg.Server.Domain, cfg.Auth.ActivationTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create account service: %w", err)
	}
	app.notifications = mail.NewQueue(mailer, mail.DefaultQueueConfig(), logger)
	app.notifications.Start()

	comments, err := service.NewCommentService(commentStore, users, app.notifications, app.db,
		cfg.Server.Domain, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment service: %w", err)
	}
	articles, err := service.NewArticleService(articleStore, app.files, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create article service: %w", err)
	}
	tabs, err := service.NewTabService(tabStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tab service: %w", err)
	}
	tracks, err := service.NewBackingTrackService(trackStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create backing track service: %w", err)
	}

	contactAddress := cfg.Mail.ContactAddress
	if contactAddress == "" {
		contactAddress = cfg.Mail.From
	}

	dispatchers, err := api.NewDispatchers(api.Dependencies{
		Accounts:       accounts,
		Comments:       comments,
		Articles:       articles,
		Tabs:           tabs,
		BackingTracks:  tracks,
		Favourites:     favourites,
		Files:          app.files,
		Mailer:         mailer,
		Challenges:     captcha.NewGenerator(cfg.Captcha.Length),
		Uniqueness:     users,
		ContactAddress: contactAddress,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build controllers: %w", err)
	}

	app.server, err = api.NewServer(app.sessions, app.metrics, logger, dispatchers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API server: %w", err)
	}

	logger.Info("application initialized", slog.Int("controllers", len(dispatchers)))
	return app, nil
}

// openSessionStore selects Redis when an address is configured and falls back
// to process memory otherwise.
func (app *application) openSessionStore(ctx context.Context) (session.Store, error) {
	cfg := app.config.Session
	if cfg.RedisAddr != "" {
		client, err := session.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		app.redis = client
		app.logger.Info("sessions stored in redis", slog.String("addr", cfg.RedisAddr))
		return session.NewRedisStore(client), nil
	}

	store := session.NewMemoryStore()
	purgeCtx, cancel := context.WithCancel(context.Background())
	app.stopPurge = cancel
	go store.RunPurge(purgeCtx, sessionPurgeInterval)
	app.logger.Warn("sessions stored in memory; they are lost on restart")
	return store, nil
}

// Run serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources. It is safe on a partially
// initialized application.
func (app *application) cleanup() {
	if app.stopPurge != nil {
		app.stopPurge()
	}
	if app.notifications != nil {
		app.notifications.Stop()
	}
	if app.files != nil {
		if err := app.files.Close(); err != nil {
			app.logger.Error("error closing content storage", slog.String("error", err.Error()))
		}
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
}
