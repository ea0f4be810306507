package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/forum-backend/internal/data/db"
	"github.com/yungbote/forum-backend/internal/observability"
	"github.com/yungbote/forum-backend/internal/platform/envutil"
)

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

type DatabaseConfig struct {
	Driver       string         `yaml:"driver" validate:"required,oneof=postgres sqlite"`
	Postgres     PostgresConfig `yaml:"postgres"`
	SQLitePath   string         `yaml:"sqlite_path"`
	AutoMigrate  bool           `yaml:"auto_migrate"`
	MaxOpenConns int            `yaml:"max_open_conns" validate:"gte=0"`
}

type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db" validate:"gte=0"`
	TTL           time.Duration `yaml:"ttl" validate:"gt=0"`
}

type OtelSettings struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio" validate:"gte=0,lte=1"`
}

type Config struct {
	ServiceName    string         `yaml:"service_name" validate:"required"`
	Environment    string         `yaml:"environment"`
	Port           string         `yaml:"port" validate:"required,numeric"`
	LogMode        string         `yaml:"log_mode"`
	AttachTimeout  time.Duration  `yaml:"attach_timeout" validate:"gte=0"`
	ShutdownGrace  time.Duration  `yaml:"shutdown_grace" validate:"gt=0"`
	AllowedOrigins []string       `yaml:"cors_allowed_origins"`
	MetricsEnabled bool           `yaml:"metrics_enabled"`
	Database       DatabaseConfig `yaml:"database"`
	Cache          CacheConfig    `yaml:"cache"`
	Otel           OtelSettings   `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		ServiceName:   "forum-backend",
		Environment:   "development",
		Port:          "8080",
		LogMode:       "development",
		AttachTimeout: 5 * time.Second,
		ShutdownGrace: 10 * time.Second,
		Database: DatabaseConfig{
			Driver:       db.DriverPostgres,
			Postgres:     PostgresConfig{Host: "localhost", Port: "5432", User: "postgres", Name: "forum", SSLMode: "disable"},
			SQLitePath:   "forum.db",
			AutoMigrate:  true,
			MaxOpenConns: 20,
		},
		Cache: CacheConfig{TTL: 5 * time.Minute},
		Otel:  OtelSettings{SampleRatio: 0.1},
	}
}

// LoadConfig builds the config from defaults, then the YAML file at path (if
// any), then environment variables. Later sources win.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.Environment = envutil.String("APP_ENV", cfg.Environment)
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.AttachTimeout = envutil.Millis("ATTACH_TIMEOUT_MS", cfg.AttachTimeout)
	cfg.ShutdownGrace = envutil.Seconds("SHUTDOWN_GRACE_SECONDS", cfg.ShutdownGrace)
	cfg.AllowedOrigins = envutil.List("CORS_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)

	d := &cfg.Database
	d.Driver = strings.ToLower(envutil.String("DB_DRIVER", d.Driver))
	d.Postgres.Host = envutil.String("POSTGRES_HOST", d.Postgres.Host)
	d.Postgres.Port = envutil.String("POSTGRES_PORT", d.Postgres.Port)
	d.Postgres.User = envutil.String("POSTGRES_USER", d.Postgres.User)
	d.Postgres.Password = envutil.String("POSTGRES_PASSWORD", d.Postgres.Password)
	d.Postgres.Name = envutil.String("POSTGRES_NAME", d.Postgres.Name)
	d.Postgres.SSLMode = envutil.String("POSTGRES_SSLMODE", d.Postgres.SSLMode)
	d.SQLitePath = envutil.String("SQLITE_PATH", d.SQLitePath)
	d.AutoMigrate = envutil.Bool("DB_AUTO_MIGRATE", d.AutoMigrate)
	d.MaxOpenConns = envutil.Int("DB_MAX_OPEN_CONNS", d.MaxOpenConns)

	c := &cfg.Cache
	c.RedisAddr = envutil.String("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = envutil.String("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = envutil.Int("REDIS_DB", c.RedisDB)
	c.TTL = envutil.Seconds("CACHE_TTL_SECONDS", c.TTL)

	o := &cfg.Otel
	o.Enabled = envutil.Bool("OTEL_ENABLED", o.Enabled)
	o.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", o.Endpoint)
	o.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", o.Headers)
	o.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", o.Insecure)
	o.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", o.SampleRatio)
}

var validate = validator.New()

func validateConfig(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			parts := make([]string, 0, len(verrs))
			for _, e := range verrs {
				parts = append(parts, fmt.Sprintf("%s failed %q", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(parts, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	switch cfg.Database.Driver {
	case db.DriverPostgres:
		if strings.TrimSpace(cfg.Database.Postgres.Host) == "" {
			return fmt.Errorf("invalid config: postgres host required")
		}
	case db.DriverSQLite:
		if strings.TrimSpace(cfg.Database.SQLitePath) == "" {
			return fmt.Errorf("invalid config: sqlite path required")
		}
	}
	return nil
}

func (c Config) DBOptions() db.Options {
	return db.Options{
		Driver:           c.Database.Driver,
		PostgresHost:     c.Database.Postgres.Host,
		PostgresPort:     c.Database.Postgres.Port,
		PostgresUser:     c.Database.Postgres.User,
		PostgresPassword: c.Database.Postgres.Password,
		PostgresName:     c.Database.Postgres.Name,
		PostgresSSLMode:  c.Database.Postgres.SSLMode,
		SQLitePath:       c.Database.SQLitePath,
		MaxOpenConns:     c.Database.MaxOpenConns,
	}
}

func (c Config) OtelConfig() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.Otel.Enabled,
		ServiceName: c.ServiceName,
		Environment: c.Environment,
		Endpoint:    c.Otel.Endpoint,
		Headers:     observability.ParseOtelHeaders(c.Otel.Headers),
		Insecure:    c.Otel.Insecure,
		SampleRatio: c.Otel.SampleRatio,
	}
}
