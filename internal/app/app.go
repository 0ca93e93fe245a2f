package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/clinireason-backend/internal/data/db"
	"github.com/yungbote/clinireason-backend/internal/data/repos"
	"github.com/yungbote/clinireason-backend/internal/http"
	"github.com/yungbote/clinireason-backend/internal/modules/regions"
	"github.com/yungbote/clinireason-backend/internal/observability"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    repos.Repos
	Clients  Clients
	Services Services
	Handlers Handlers
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewWithOptions(cfg.LogMode, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics := observability.Init(cfg.MetricsEnabled)
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	theDB, err := db.Open(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	catalog, err := regions.Load(cfg.RegionsFile)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load regions: %w", err)
	}

	hub := realtime.NewSSEHub(log)
	clients, err := wireClients(ctx, log, cfg, hub)
	if err != nil {
		log.Sync()
		return nil, err
	}

	log.Info("Wiring repos...")
	reposet := repos.New(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, catalog, metrics)
	handlerset := wireHandlers(log, theDB, reposet, serviceset, hub)
	server := http.NewServer(wireRouterConfig(log, cfg, metrics, handlerset))

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Handlers:     handlerset,
		SSEHub:       hub,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background loops: the cross-instance event forwarder and
// the pool collectors.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.Forwarder != nil {
		go func() {
			if err := a.Clients.Forwarder.Forward(ctx); err != nil && ctx.Err() == nil {
				a.Log.Error("event forwarder stopped", "error", err)
			}
		}()
	}
	if a.Metrics != nil {
		if a.Cfg.DB.Driver == "" || a.Cfg.DB.Driver == db.DriverPostgres {
			a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB, 15*time.Second)
		}
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis, 15*time.Second)
		}
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(addr)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Handlers.Realtime != nil {
		a.Handlers.Realtime.CloseAll()
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("http shutdown", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(ctx)
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
