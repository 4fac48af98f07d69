package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	SnapshotStoreRedis     = "redis"
	SnapshotStoreFreecache = "freecache"
	SnapshotStoreSQLite    = "sqlite"
)

type Config struct {
	Host string
	Port int
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// postgres (workout log)
	PostgresHost string `toml:"postgres_host"`
	PostgresPort string `toml:"postgres_port"`
	PostgresDB   string `toml:"postgres_db"`
	// redis (snapshot store and rate limiting)
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// snapshot store
	SnapshotStore   string `toml:"snapshot_store"`
	SQLitePath      string `toml:"sqlite_path"`
	FreecacheSizeMB int    `toml:"freecache_size_mb"`
	// rate limiting, allowed calculate requests per minute
	CalculateRateLimit int `toml:"calculate_rate_limit"`
	// kafka
	KafkaBrokers []string `toml:"kafka_brokers"`
	KafkaTopic   string   `toml:"kafka_topic"`
	KafkaGroupID string   `toml:"kafka_group_id"`
	// scheduler
	RecalculateCron string `toml:"recalculate_cron"`
	// http
	CorsAllowedOrigins []string `toml:"cors_allowed_origins"`
	// metrics
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	// tracing
	TracingEnabled bool `toml:"tracing_enabled"`

	Biometrics Biometrics `toml:"biometrics"`
}

// Biometrics holds the subject defaults used when a workout record lacks them.
type Biometrics struct {
	Age      int     `toml:"age"`
	WeightKg float64 `toml:"weight_kg"`
	Gender   string  `toml:"gender"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(path, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlConfig.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env %s missing", env)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.SnapshotStore == "" {
		c.SnapshotStore = SnapshotStoreRedis
	}
	if c.FreecacheSizeMB <= 0 {
		c.FreecacheSizeMB = 32
	}
	if c.CalculateRateLimit <= 0 {
		c.CalculateRateLimit = 20
	}
	if c.KafkaTopic == "" {
		c.KafkaTopic = "workout.logged"
	}
	if c.KafkaGroupID == "" {
		c.KafkaGroupID = "perfindex-recalculator"
	}
	if c.Biometrics.Age <= 0 {
		c.Biometrics.Age = 25
	}
	if c.Biometrics.WeightKg <= 0 {
		c.Biometrics.WeightKg = 70
	}
	if c.Biometrics.Gender == "" {
		c.Biometrics.Gender = "male"
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.SnapshotStore {
	case SnapshotStoreRedis, SnapshotStoreFreecache:
	case SnapshotStoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite snapshot store requires sqlite_path")
		}
	default:
		return fmt.Errorf("unknown snapshot store: %s", c.SnapshotStore)
	}
	return nil
}
