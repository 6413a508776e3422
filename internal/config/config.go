package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/medagenda/scheduler-api/internal/scheduling"
	"github.com/medagenda/scheduler-api/pkg/messaging/redis"
	"github.com/medagenda/scheduler-api/pkg/worker"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Outbox     OutboxConfig     `mapstructure:"outbox"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port" envconfig:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url" envconfig:"REDIS_URL"`
	PoolSize     int    `mapstructure:"pool_size" envconfig:"REDIS_POOL_SIZE"`
	MinIdleConns int    `mapstructure:"min_idle_conns" envconfig:"REDIS_MIN_IDLE_CONNS"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled" envconfig:"SMTP_ENABLED"`
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	Username string `mapstructure:"username" envconfig:"SMTP_USERNAME"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
}

type SchedulingConfig struct {
	OpenHour                  int `mapstructure:"open_hour" envconfig:"SCHEDULING_OPEN_HOUR"`
	CloseHour                 int `mapstructure:"close_hour" envconfig:"SCHEDULING_CLOSE_HOUR"`
	MaxAdvanceDays            int `mapstructure:"max_advance_days" envconfig:"SCHEDULING_MAX_ADVANCE_DAYS"`
	ConflictHalfWindowMinutes int `mapstructure:"conflict_half_window_minutes" envconfig:"SCHEDULING_CONFLICT_HALF_WINDOW_MINUTES"`
	SlotGranularityMinutes    int `mapstructure:"slot_granularity_minutes" envconfig:"SCHEDULING_SLOT_GRANULARITY_MINUTES"`
	MaxSuggestions            int `mapstructure:"max_suggestions" envconfig:"SCHEDULING_MAX_SUGGESTIONS"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size" envconfig:"OUTBOX_BATCH_SIZE"`
	PollInterval  time.Duration `mapstructure:"poll_interval" envconfig:"OUTBOX_POLL_INTERVAL"`
	RetryAttempts int           `mapstructure:"retry_attempts" envconfig:"OUTBOX_RETRY_ATTEMPTS"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" envconfig:"OUTBOX_RETRY_DELAY"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" envconfig:"RATE_LIMIT_RPS"`
	Burst             int     `mapstructure:"burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoadConfig reads config.yaml via viper, then applies environment
// overrides through envconfig so deployments can tweak single values
// without shipping a new file.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return &config, nil
}

// ToPolicy builds the scheduling policy, falling back to the defaults
// for any field left unset.
func (c *SchedulingConfig) ToPolicy() scheduling.Policy {
	policy := scheduling.DefaultPolicy()
	if c.OpenHour > 0 {
		policy.OpenHour = c.OpenHour
	}
	if c.CloseHour > 0 {
		policy.CloseHour = c.CloseHour
	}
	if c.MaxAdvanceDays > 0 {
		policy.MaxAdvance = time.Duration(c.MaxAdvanceDays) * 24 * time.Hour
	}
	if c.ConflictHalfWindowMinutes > 0 {
		policy.ConflictHalfWindow = time.Duration(c.ConflictHalfWindowMinutes) * time.Minute
	}
	if c.SlotGranularityMinutes > 0 {
		policy.SlotGranularity = time.Duration(c.SlotGranularityMinutes) * time.Minute
	}
	if c.MaxSuggestions > 0 {
		policy.MaxSuggestions = c.MaxSuggestions
	}
	return policy
}

func (c *OutboxConfig) ToWorkerConfig() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		BatchSize:     c.BatchSize,
		PollInterval:  c.PollInterval,
		RetryAttempts: c.RetryAttempts,
		RetryDelay:    c.RetryDelay,
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}
