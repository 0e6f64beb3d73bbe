package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mcoot/turntimer/internal/config"
	"github.com/mcoot/turntimer/internal/dependencies/clock"
	"github.com/mcoot/turntimer/internal/dependencies/random"
	"github.com/mcoot/turntimer/internal/events"
	"github.com/mcoot/turntimer/internal/events/natsbus"
	"github.com/mcoot/turntimer/internal/events/redisbus"
	"github.com/mcoot/turntimer/internal/services/session"
	"github.com/mcoot/turntimer/internal/storage"
	"github.com/mcoot/turntimer/internal/storage/memory"
	redisstorage "github.com/mcoot/turntimer/internal/storage/redis"
	"github.com/mcoot/turntimer/internal/stream"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageTypeMemory
	StorageTypeRedis  = config.StorageTypeRedis
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Event delivery
	HubManager  *stream.HubManager
	Broadcaster *stream.Broadcaster
	Publisher   events.Publisher

	// Services
	SessionController *session.Controller

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis" or RedisBus is set)
	RedisConfig *redisstorage.Config
	// GraceDelay separates an expiry from the automatic turn advance (optional)
	GraceDelay time.Duration
	// RedisBus publishes session events to Redis pub/sub
	RedisBus bool
	// NATSConfig, when set, publishes session events to NATS
	NATSConfig *natsbus.Config
}

// ConfigFrom maps the server configuration onto a factory Config
func ConfigFrom(cfg config.Config, logger *slog.Logger) Config {
	fc := Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		GraceDelay:  cfg.Timer.GraceDelay,
		RedisBus:    cfg.Events.UsesBus(config.EventBusRedis),
	}

	if cfg.Storage.Type == StorageTypeRedis || fc.RedisBus {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		if cfg.Storage.SessionTTL > 0 {
			redisCfg.SessionTTL = cfg.Storage.SessionTTL
		}
		fc.RedisConfig = &redisCfg
	}

	if cfg.Events.UsesBus(config.EventBusNATS) {
		natsCfg := natsbus.DefaultConfig()
		natsCfg.URL = cfg.Events.NATSURL
		if cfg.Events.NATSSubjectPrefix != "" {
			natsCfg.SubjectPrefix = cfg.Events.NATSSubjectPrefix
		}
		fc.NATSConfig = &natsCfg
	}

	return fc
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var closers []func() error
	fail := func(err error) (*App, error) {
		for _, closeFn := range closers {
			_ = closeFn()
		}
		return nil, err
	}

	// Create storage based on type
	var store storage.Storage
	var redisClient *goredis.Client
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		redisClient = redisStore.Client()
		closers = append(closers, redisStore.Close)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// External event sinks
	var sinks []events.Publisher
	if cfg.RedisBus {
		if redisClient == nil {
			if cfg.RedisConfig == nil {
				return fail(errors.New("RedisConfig required when RedisBus is set"))
			}
			client, err := redisstorage.Connect(*cfg.RedisConfig)
			if err != nil {
				return fail(err)
			}
			redisClient = client
			closers = append(closers, client.Close)
		}
		sinks = append(sinks, redisbus.New(redisClient))
	}
	if cfg.NATSConfig != nil {
		natsPublisher, err := natsbus.Connect(*cfg.NATSConfig, logger)
		if err != nil {
			return fail(fmt.Errorf("event bus: %w", err))
		}
		sinks = append(sinks, natsPublisher)
		closers = append(closers, natsPublisher.Close)
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	app := newWithDependencies(store, clk, rnd, cfg.GraceDelay, logger, sinks...)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	graceDelay time.Duration,
	logger *slog.Logger,
	sinks ...events.Publisher,
) *App {
	hubManager := stream.NewHubManager(logger)
	broadcaster := stream.NewBroadcaster(hubManager, logger)

	// The in-process stream comes first so watchers see events before external buses
	publisher := events.Multi(append([]events.Publisher{broadcaster}, sinks...))

	sessionController := session.NewController(store, publisher, clk, rnd, graceDelay, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		HubManager:        hubManager,
		Broadcaster:       broadcaster,
		Publisher:         publisher,
		SessionController: sessionController,
	}
}

// Close releases connections opened by New
// Live sessions should be ended first so their final events are delivered.
func (a *App) Close() error {
	a.HubManager.Close()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
