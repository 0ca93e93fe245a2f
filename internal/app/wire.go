package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/clinireason-backend/internal/data/aggregates"
	"github.com/yungbote/clinireason-backend/internal/data/repos"
	"github.com/yungbote/clinireason-backend/internal/http"
	httpH "github.com/yungbote/clinireason-backend/internal/http/handlers"
	httpMW "github.com/yungbote/clinireason-backend/internal/http/middleware"
	"github.com/yungbote/clinireason-backend/internal/modules/generation"
	"github.com/yungbote/clinireason-backend/internal/modules/regions"
	"github.com/yungbote/clinireason-backend/internal/observability"
	"github.com/yungbote/clinireason-backend/internal/platform/gemini"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/platform/openai"
	"github.com/yungbote/clinireason-backend/internal/realtime"
	"github.com/yungbote/clinireason-backend/internal/realtime/bus"
	"github.com/yungbote/clinireason-backend/internal/services"
)

type Clients struct {
	Generator generation.Generator
	// Emitter is the realtime sink services publish to: the Redis-backed
	// emitter when REDIS_ADDR is set, otherwise the local hub.
	Emitter realtime.Emitter
	Bus     bus.Bus
	Redis   *goredis.Client

	// Forwarder relays bus messages into the local hub; nil without Redis.
	Forwarder *bus.Emitter
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}

type Services struct {
	Auth          services.AuthService
	Sessions      services.SessionService
	Reviews       services.ReviewService
	Notifications services.NotificationService
}

type Handlers struct {
	Health       *httpH.HealthHandler
	User         *httpH.UserHandler
	Session      *httpH.SessionHandler
	Review       *httpH.ReviewHandler
	Notification *httpH.NotificationHandler
	Realtime     *httpH.RealtimeHandler
	Auth         *httpMW.AuthMiddleware
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, hub *realtime.SSEHub) (Clients, error) {
	log.Info("Wiring clients...")
	gen, err := newGenerator(ctx, log, cfg.Generator)
	if err != nil {
		return Clients{}, fmt.Errorf("init generator: %w", err)
	}
	out := Clients{Generator: gen, Emitter: hub}

	if cfg.RedisAddr != "" {
		b, rdb, err := bus.NewRedisBus(log, bus.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis bus: %w", err)
		}
		em := bus.NewEmitter(log, b, hub)
		out.Bus, out.Redis, out.Emitter, out.Forwarder = b, rdb, em, em
	}
	return out, nil
}

func newGenerator(ctx context.Context, log *logger.Logger, cfg GeneratorConfig) (generation.Generator, error) {
	switch cfg.Provider {
	case "", "openai":
		c, err := openai.NewClient(log, openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.OpenAITemperature,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "gemini":
		c, err := gemini.NewClient(ctx, log, gemini.Config{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported GENERATOR_PROVIDER %q", cfg.Provider)
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Repos, clients Clients, catalog *regions.Catalog, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	base := aggregates.BaseDeps{
		DB:       db,
		Log:      log,
		Runner:   aggregates.NewGormTxRunner(db),
		Hooks:    aggregates.NewObservabilityHooks(metrics),
		CASGuard: aggregates.NewCASGuard(db),
	}
	provider := cfg.Generator.Provider
	if provider == "" {
		provider = "openai"
	}
	notifications := services.NewNotificationService(log, r.Notifications, clients.Emitter)
	return Services{
		Auth: services.NewAuthService(log, r.Users, cfg.JWTSecretKey),
		Sessions: services.NewSessionService(services.SessionServiceDeps{
			Log: log,
			Aggregate: aggregates.NewSessionAggregate(aggregates.SessionAggregateDeps{
				Base:          base,
				Users:         r.Users,
				Sessions:      r.Sessions,
				Symptoms:      r.Symptoms,
				Steps:         r.Steps,
				Differentials: r.Differentials,
				Finals:        r.Finals,
				Reports:       r.Reports,
			}),
			Gateway: generation.NewGateway(log, clients.Generator, generation.Config{Provider: provider, Timeout: cfg.Generator.Timeout}),
			Regions: catalog,
			Emitter: clients.Emitter,
			Repos:   r,
		}),
		Reviews: services.NewReviewService(services.ReviewServiceDeps{
			Log: log,
			Aggregate: aggregates.NewSubmissionAggregate(aggregates.SubmissionAggregateDeps{
				Base:          base,
				Users:         r.Users,
				Sessions:      r.Sessions,
				Reports:       r.Reports,
				Submissions:   r.Submissions,
				Feedback:      r.Feedback,
				Notifications: r.Notifications,
			}),
			Notifications: notifications,
			Emitter:       clients.Emitter,
			Regions:       catalog,
			Repos:         r,
		}),
		Notifications: notifications,
	}
}

func wireHandlers(log *logger.Logger, db *gorm.DB, r repos.Repos, s Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		User:         httpH.NewUserHandler(r.Users),
		Session:      httpH.NewSessionHandler(log, s.Sessions),
		Review:       httpH.NewReviewHandler(log, s.Reviews),
		Notification: httpH.NewNotificationHandler(log, s.Notifications),
		Realtime:     httpH.NewRealtimeHandler(log, hub),
		Auth:         httpMW.NewAuthMiddleware(log, s.Auth),
	}
}

func wireRouterConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, h Handlers) http.RouterConfig {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		ServiceName:         serviceName,
		CORSOrigins:         cfg.CORSOrigins,
		AuthMiddleware:      h.Auth,
		UserHandler:         h.User,
		SessionHandler:      h.Session,
		ReviewHandler:       h.Review,
		NotificationHandler: h.Notification,
		RealtimeHandler:     h.Realtime,
		HealthHandler:       h.Health,
	}
}
