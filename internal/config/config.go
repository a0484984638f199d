package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Maps     MapsConfig
	Pricing  PricingConfig
	Log      LogConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	RouteCacheTTL   time.Duration
	RouteTimeBucket time.Duration
}

// MapsConfig - настройки внешнего провайдера маршрутов.
// Strategy переключает режим: "google" (основной + fallback) или
// "fallback" (только геометрическая оценка, для детерминированных тестов).
type MapsConfig struct {
	APIKey         string
	RequestTimeout time.Duration
	Strategy       string
}

type PricingConfig struct {
	QuoteValidityMinutes  int
	ReturnTripDiscountPct float64
	ReturnTripDelay       time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

const (
	StrategyGoogle   = "google"
	StrategyFallback = "fallback"
)

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			RouteCacheTTL:   time.Duration(viper.GetInt("ROUTE_CACHE_TTL")) * time.Second,
			RouteTimeBucket: time.Duration(viper.GetInt("ROUTE_TIME_BUCKET")) * time.Second,
		},
		Maps: MapsConfig{
			APIKey:         viper.GetString("GOOGLE_MAPS_API_KEY"),
			RequestTimeout: time.Duration(viper.GetInt("MAPS_REQUEST_TIMEOUT")) * time.Second,
			Strategy:       strings.ToLower(viper.GetString("MAPS_STRATEGY")),
		},
		Pricing: PricingConfig{
			QuoteValidityMinutes:  viper.GetInt("QUOTE_VALIDITY_MINUTES"),
			ReturnTripDiscountPct: viper.GetFloat64("RETURN_TRIP_DISCOUNT_PCT"),
			ReturnTripDelay:       time.Duration(viper.GetInt("RETURN_TRIP_DELAY_MINUTES")) * time.Minute,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
		},
	}

	// Set default values if not provided
	if cfg.Cache.RouteCacheTTL == 0 {
		cfg.Cache.RouteCacheTTL = 6 * time.Hour
	}
	if cfg.Cache.RouteTimeBucket == 0 {
		cfg.Cache.RouteTimeBucket = 2 * time.Hour
	}
	if cfg.Maps.RequestTimeout == 0 {
		cfg.Maps.RequestTimeout = 10 * time.Second
	}
	if cfg.Maps.Strategy == "" {
		cfg.Maps.Strategy = StrategyGoogle
	}
	if cfg.Pricing.QuoteValidityMinutes == 0 {
		cfg.Pricing.QuoteValidityMinutes = 10
	}
	if cfg.Pricing.ReturnTripDiscountPct == 0 {
		cfg.Pricing.ReturnTripDiscountPct = 10
	}
	if cfg.Pricing.ReturnTripDelay == 0 {
		cfg.Pricing.ReturnTripDelay = 2 * time.Hour
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "pricing-actuals-workers"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
