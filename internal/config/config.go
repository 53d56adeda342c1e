package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Business BusinessConfig `mapstructure:"business"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MigrationsPath string        `mapstructure:"migrations_path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the lib/pq keyword form used by sqlx.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// URL renders the postgres:// form used by golang-migrate.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, url.QueryEscape(c.Password), c.Host, c.Port, c.Name, c.SSLMode,
	)
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret" envconfig:"JWT_SECRET"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url" envconfig:"REDIS_URL"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	Username string `mapstructure:"username" envconfig:"SMTP_USER"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASS"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
}

type BusinessConfig struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email" envconfig:"BUSINESS_EMAIL"`
	Phone string `mapstructure:"phone"`
}

type CalendarConfig struct {
	CredentialsFile string `mapstructure:"credentials_file" envconfig:"CALENDAR_CREDENTIALS_FILE"`
	CalendarID      string `mapstructure:"calendar_id" envconfig:"CALENDAR_ID"`
	Timezone        string `mapstructure:"timezone"`
}

type OutboxConfig struct {
	BatchSize    int           `mapstructure:"batch_size"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
}

type HTTPConfig struct {
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds"`
}

// LoadConfig reads config.yml via viper, then layers environment
// overrides for secrets on top through envconfig.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for section, target := range map[string]interface{}{
		"database": &cfg.Database,
		"jwt":      &cfg.JWT,
		"redis":    &cfg.Redis,
		"smtp":     &cfg.SMTP,
		"business": &cfg.Business,
		"calendar": &cfg.Calendar,
	} {
		if err := envconfig.Process("", target); err != nil {
			return nil, fmt.Errorf("failed to process %s env overrides: %w", section, err)
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MigrationsPath == "" {
		cfg.Server.MigrationsPath = "migrations"
	}
	if cfg.JWT.ExpiryHours == 0 {
		cfg.JWT.ExpiryHours = 24
	}
	if cfg.Outbox.BatchSize == 0 {
		cfg.Outbox.BatchSize = 50
	}
	if cfg.Outbox.PollInterval == 0 {
		cfg.Outbox.PollInterval = 5 * time.Second
	}
	if cfg.Outbox.RetryDelay == 0 {
		cfg.Outbox.RetryDelay = 10 * time.Second
	}
	if cfg.HTTP.RateLimitRPS == 0 {
		cfg.HTTP.RateLimitRPS = 20
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 40
	}
	if cfg.HTTP.CacheTTL == 0 {
		cfg.HTTP.CacheTTL = 5 * time.Minute
	}
	if cfg.HTTP.TimeoutSeconds == 0 {
		cfg.HTTP.TimeoutSeconds = 30
	}
	if cfg.Calendar.Timezone == "" {
		cfg.Calendar.Timezone = "America/Bogota"
	}
}
