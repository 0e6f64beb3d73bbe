package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/turntimer/internal/model"
)

// Storage backends
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Event bus sinks, in addition to the in-process stream
const (
	EventBusRedis = "redis"
	EventBusNATS  = "nats"
)

// ConfigPathEnv names the variable pointing at an optional YAML config file
const ConfigPathEnv = "TURNTIMER_CONFIG"

// Config is the server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Events  EventsConfig  `yaml:"events"`
	Timer   TimerConfig   `yaml:"timer"`
	Log     LogConfig     `yaml:"log"`
	CORS    CORSConfig    `yaml:"cors"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	Type       string        `yaml:"type"`
	RedisURL   string        `yaml:"redis_url"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type EventsConfig struct {
	// Bus lists the external sinks events are published to
	Bus               []string `yaml:"bus"`
	NATSURL           string   `yaml:"nats_url"`
	NATSSubjectPrefix string   `yaml:"nats_subject_prefix"`
}

type TimerConfig struct {
	GraceDelay time.Duration `yaml:"grace_delay"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Storage: StorageConfig{
			Type:       StorageTypeMemory,
			SessionTTL: 12 * time.Hour,
		},
		Events: EventsConfig{
			NATSSubjectPrefix: "turntimer.session",
		},
		Timer: TimerConfig{
			GraceDelay: model.DefaultGraceDelay,
		},
		Log: LogConfig{
			Level: "info",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the environment
// A .env file in the working directory is loaded first when present. The file
// path falls back to $TURNTIMER_CONFIG; environment variables win over the file.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Storage.RedisURL = v
	}
	if v := os.Getenv("EVENT_BUS"); v != "" {
		cfg.Events.Bus = splitList(v)
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.Events.NATSURL = v
	}
	if v := os.Getenv("GRACE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GRACE_DELAY %q: %w", v, err)
		}
		cfg.Timer.GraceDelay = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = splitList(v)
	}
	return nil
}

// Validate checks that the selected backends have what they need
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Server.Port))
	}

	switch c.Storage.Type {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid storage type %q: must be 'memory' or 'redis'", c.Storage.Type))
	}

	for _, bus := range c.Events.Bus {
		switch bus {
		case EventBusRedis:
			if c.Storage.RedisURL == "" {
				errs = append(errs, errors.New("REDIS_URL required for the redis event bus"))
			}
		case EventBusNATS:
			if c.Events.NATSURL == "" {
				errs = append(errs, errors.New("NATS_URL required for the nats event bus"))
			}
		default:
			errs = append(errs, fmt.Errorf("invalid event bus %q: must be 'redis' or 'nats'", bus))
		}
	}

	if c.Timer.GraceDelay <= 0 {
		errs = append(errs, fmt.Errorf("grace delay must be positive, got %s", c.Timer.GraceDelay))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UsesBus reports whether the named event bus is enabled
func (c EventsConfig) UsesBus(name string) bool {
	for _, bus := range c.Bus {
		if bus == name {
			return true
		}
	}
	return false
}

// SlogLevel parses the configured log level
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return level, nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
