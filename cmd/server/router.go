package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/gryp17/Tablaturi-bg-API/internal/api/middleware"
)

const healthTimeout = 2 * time.Second

// setupRouter creates the application router: shared middleware, the
// controllers under /api, the health check and the metrics endpoint.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	cors, err := apiMiddleware.NewCORS(app.config.Server.AllowedOrigins, app.logger)
	if err != nil {
		// Origins are validated with the rest of the configuration.
		app.logger.Error("invalid allowed origins; cross-origin requests disabled",
			slog.String("error", err.Error()))
		cors, _ = apiMiddleware.NewCORS(nil, app.logger)
	}
	limiter := apiMiddleware.NewRateLimiter(app.config.Server.RateLimit, app.config.Server.RateBurst, app.metrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler)
		r.Use(limiter.Handler)
		r.Use(middleware.RequestSize(app.config.Server.MaxBodyBytes))
		app.server.Routes(r)
	})

	r.Get("/health", app.health)
	r.Handle("/metrics", app.metrics.Handler())

	return r
}

// health reports whether the database, and Redis when used, answer.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status, body := http.StatusOK, "OK"
	if err := app.db.PingContext(ctx); err != nil {
		app.logger.Error("health check: database unreachable", slog.String("error", err.Error()))
		status, body = http.StatusServiceUnavailable, "database unavailable"
	} else if app.redis != nil {
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.logger.Error("health check: redis unreachable", slog.String("error", err.Error()))
			status, body = http.StatusServiceUnavailable, "session store unavailable"
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		app.logger.Error("failed to write health check response", slog.String("error", err.Error()))
	}
}
