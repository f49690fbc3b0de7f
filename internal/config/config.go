package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Cache
	CacheBackend  string
	CachePrefix   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Yahoo Finance
	YahooBaseURL         string
	YahooCookieURL       string
	YahooTimeout         time.Duration
	YahooRateLimit       float64
	YahooBurst           int
	YahooMaxRetries      int
	YahooBreakerFailures int
	YahooBreakerCooldown time.Duration

	// Portfolio
	ValuationConcurrency int

	// Metrics
	MetricsAPIKey string
}

var appConfig *Config

var defaults = map[string]any{
	"PORT":      "8080",
	"ENV":       "development",
	"LOG_LEVEL": "",

	"DB_DRIVER":   "postgres",
	"DB_HOST":     "localhost",
	"DB_PORT":     "5432",
	"DB_USER":     "finboard",
	"DB_PASSWORD": "finboard",
	"DB_NAME":     "finboard",
	"DB_SSLMODE":  "disable",
	"DB_PATH":     "finboard.db",

	"JWT_SECRET":     "fallback-secret-key-for-dev-only",
	"JWT_EXPIRES_IN": "24h",

	"CACHE_BACKEND":  "memory",
	"CACHE_PREFIX":   "finboard:",
	"REDIS_ADDR":     "localhost:6379",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"YAHOO_BASE_URL":         "https://query2.finance.yahoo.com",
	"YAHOO_COOKIE_URL":       "https://fc.yahoo.com",
	"YAHOO_TIMEOUT":          "10s",
	"YAHOO_RATE_LIMIT":       2.0,
	"YAHOO_BURST":            4,
	"YAHOO_MAX_RETRIES":      2,
	"YAHOO_BREAKER_FAILURES": 5,
	"YAHOO_BREAKER_COOLDOWN": "30s",

	"VALUATION_CONCURRENCY": 4,

	"METRICS_API_KEY": "",
}

// Load loads configuration from the environment, an optional .env file and
// an optional config file named by CONFIG_FILE.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	config := &Config{
		Port:     v.GetString("PORT"),
		Env:      v.GetString("ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		DBPath:     v.GetString("DB_PATH"),

		JWTSecret: v.GetString("JWT_SECRET"),

		CacheBackend:  strings.ToLower(v.GetString("CACHE_BACKEND")),
		CachePrefix:   v.GetString("CACHE_PREFIX"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		YahooBaseURL:         strings.TrimRight(v.GetString("YAHOO_BASE_URL"), "/"),
		YahooCookieURL:       v.GetString("YAHOO_COOKIE_URL"),
		YahooRateLimit:       v.GetFloat64("YAHOO_RATE_LIMIT"),
		YahooBurst:           v.GetInt("YAHOO_BURST"),
		YahooMaxRetries:      v.GetInt("YAHOO_MAX_RETRIES"),
		YahooBreakerFailures: v.GetInt("YAHOO_BREAKER_FAILURES"),

		ValuationConcurrency: v.GetInt("VALUATION_CONCURRENCY"),

		MetricsAPIKey: v.GetString("METRICS_API_KEY"),
	}

	config.JWTExpirationDur = parseDuration(v, "JWT_EXPIRES_IN", 24*time.Hour)
	config.YahooTimeout = parseDuration(v, "YAHOO_TIMEOUT", 10*time.Second)
	config.YahooBreakerCooldown = parseDuration(v, "YAHOO_BREAKER_COOLDOWN", 30*time.Second)

	if err := config.validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.YahooRateLimit <= 0 {
		return fmt.Errorf("YAHOO_RATE_LIMIT must be positive, got %v", c.YahooRateLimit)
	}
	if c.YahooMaxRetries < 0 {
		c.YahooMaxRetries = 0
	}
	if c.ValuationConcurrency < 1 {
		c.ValuationConcurrency = 1
	}
	return nil
}

// parseDuration reads a duration setting, falling back when it does not parse.
func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, fallback)
		return fallback
	}
	return d
}
