package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/meetuphub/internal/config"
	"github.com/geocoder89/meetuphub/internal/http/handlers"
	"github.com/geocoder89/meetuphub/internal/http/middlewares"
	"github.com/geocoder89/meetuphub/internal/observability"
	"github.com/geocoder89/meetuphub/internal/repo/memory"
	"github.com/geocoder89/meetuphub/internal/repo/postgres"
	"github.com/geocoder89/meetuphub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config, prom *observability.Prom, registry *prometheus.Registry) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("meetuphub"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	}

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	if cfg.RateLimit > 0 {
		limiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		r.Use(limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	r.GET("/swagger", handlers.SwaggerUI)
	r.StaticFile("/docs/openapi.yaml", "./docs/openapi.yaml")

	// wire up repositories; without a pool (local dev, handler tests) the
	// in-memory stores stand in for postgres
	var regStore service.RegistrationStore
	var meetStore service.MeetupStore

	if pool != nil {
		regStore = postgres.NewRegistrationsRepo(pool, prom)
		meetStore = postgres.NewMeetupsRepo(pool, prom)
	} else {
		log.Warn("no database pool, using in-memory stores")
		regStore = memory.NewRegistrationsStore()
		meetStore = memory.NewMeetupsStore()
	}

	registrations := service.NewRegistrations(regStore)
	meetups := service.NewMeetups(meetStore, registrations)

	registrationsHandler := handlers.NewRegistrationsHandler(registrations)
	meetupsHandler := handlers.NewMeetupsHandler(meetups)

	r.POST("/registrations", registrationsHandler.Create)
	r.GET("/registrations", registrationsHandler.List)
	r.GET("/registrations/attribute/:attribute", registrationsHandler.ListByAttribute)
	r.GET("/registrations/:id", registrationsHandler.GetByID)
	r.PUT("/registrations/:id", registrationsHandler.Update)
	r.DELETE("/registrations/:id", registrationsHandler.Delete)

	r.POST("/meetups", meetupsHandler.Create)
	r.GET("/meetups", meetupsHandler.List)
	r.GET("/meetups/:id", meetupsHandler.GetByID)
	r.PUT("/meetups/:id", meetupsHandler.Update)
	r.DELETE("/meetups/:id", meetupsHandler.Delete)

	return r
}
