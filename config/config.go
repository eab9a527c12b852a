package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Woolworths WoolworthsConfig `mapstructure:"woolworths"`
	Currency   CurrencyConfig   `mapstructure:"currency"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	TimeZone        string        `mapstructure:"timezone"`
	ConnectAttempts int           `mapstructure:"connect_attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	SeedBaskets     bool          `mapstructure:"seed_baskets"`
}

// WoolworthsConfig holds the retailer endpoints and request shape
type WoolworthsConfig struct {
	AUBaseURL     string        `mapstructure:"au_base_url"`
	NZBaseURL     string        `mapstructure:"nz_base_url"`
	UserAgent     string        `mapstructure:"user_agent"`
	RequestedWith string        `mapstructure:"requested_with"`
	CookiePrefix  string        `mapstructure:"cookie_prefix"`
	NZPageSize    int           `mapstructure:"nz_page_size"`
	AUPageSize    int           `mapstructure:"au_page_size"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Debug         bool          `mapstructure:"debug"`
}

// CurrencyConfig holds the fixed exchange rate
type CurrencyConfig struct {
	NZDToAUDRate float64 `mapstructure:"nzd_to_aud_rate"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/woolies-greener/")

	// GREENER_SERVER_PORT overrides server.port
	v.SetEnvPrefix("GREENER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment. Variables that are
// already set win, and a missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key needs a default
// so that AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "woolies")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.connect_attempts", 10)
	v.SetDefault("database.retry_delay", "2s")
	v.SetDefault("database.seed_baskets", true)

	// Woolworths defaults
	v.SetDefault("woolworths.au_base_url", "https://www.woolworths.com.au")
	v.SetDefault("woolworths.nz_base_url", "https://www.woolworths.co.nz")
	v.SetDefault("woolworths.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36")
	v.SetDefault("woolworths.requested_with", "OnlineShopping.WebApp")
	v.SetDefault("woolworths.cookie_prefix", "_abck")
	v.SetDefault("woolworths.nz_page_size", 48)
	v.SetDefault("woolworths.au_page_size", 24)
	v.SetDefault("woolworths.timeout", "30s")
	v.SetDefault("woolworths.debug", false)

	// Currency defaults
	v.SetDefault("currency.nzd_to_aud_rate", 0.91)

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 50)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Currency.NZDToAUDRate <= 0 {
		return fmt.Errorf("currency rate must be positive, got: %v", config.Currency.NZDToAUDRate)
	}

	for name, raw := range map[string]string{
		"AU base URL": config.Woolworths.AUBaseURL,
		"NZ base URL": config.Woolworths.NZBaseURL,
	} {
		if raw == "" {
			return fmt.Errorf("%s is required", name)
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s is not an absolute URL: %s", name, raw)
		}
	}

	if config.Database.Name == "" {
		return fmt.Errorf("database name is required (set GREENER_DATABASE_NAME)")
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("per-IP rate limit must be positive, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
