package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// HTTP server
	HTTP HTTPConfig

	// Auth token verification
	Auth AuthConfig

	// Submission document storage
	Storage StorageConfig

	// Notification delivery
	Notifier NotifierConfig

	// Feature flags
	Features FeatureFlags

	// Observability
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name            string
	Environment     Environment
	Debug           bool
	Version         string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MinIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
}

// RedisConfig holds Redis settings.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Disabled     bool
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	EnableCORS     bool
	AllowedOrigins []string
	EnableMetrics  bool
	MaxUploadBytes int64
}

// Address returns the server address string.
func (c HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig holds verification settings for externally issued access tokens.
// The portal's auth service issues tokens; this process only verifies them.
type AuthConfig struct {
	SigningKey string
	Issuer     string
}

// StorageConfig holds file storage settings for submission documents.
type StorageConfig struct {
	RootDir string
}

// NotifierConfig holds settings for the external notification sink.
type NotifierConfig struct {
	SinkURL         string
	APIKey          string
	QueueKey        string
	RequestTimeout  time.Duration
	MaxRetries      int
	RetryBaseDelay  time.Duration
	RetryMaxDelay   time.Duration
	BreakerTimeout  time.Duration
	DrainBatchSize  int
	PollTimeout     time.Duration
}

// FeatureFlags holds workflow feature toggles.
type FeatureFlags struct {
	// StrictProgressTransitions enforces forward-only currentStatus moves and
	// non-decreasing percentages. Off by default: the portal historically
	// allows corrections.
	StrictProgressTransitions bool

	// ResolveCacheTTL is the TTL for cached opportunity resolutions
	// (0 disables the cache).
	ResolveCacheTTL time.Duration
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel       string
	MetricsEnabled bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App:           loadAppConfig(),
		Database:      loadDatabaseConfig(),
		Redis:         loadRedisConfig(),
		HTTP:          loadHTTPConfig(),
		Auth:          loadAuthConfig(),
		Storage:       loadStorageConfig(),
		Notifier:      loadNotifierConfig(),
		Features:      loadFeatureFlags(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", "development"))

	return AppConfig{
		Name:            getEnv("APP_NAME", "collab-portal"),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:         getEnv("APP_VERSION", "0.1.0"),
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	url := getEnv("DATABASE_URL", "")
	if url == "" {
		host := getEnv("DB_HOST", "")
		port := getEnv("DB_PORT", "5432")
		user := getEnv("DB_USER", "")
		pass := getEnv("DB_PASSWORD", "")
		name := getEnv("DB_NAME", "postgres")
		sslmode := getEnv("DB_SSLMODE", "require")

		if host != "" && user != "" {
			url = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				user, pass, host, port, name, sslmode)
		}
	}

	return DatabaseConfig{
		URL:             url,
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MinIdleConns:    getEnvInt("DB_MIN_IDLE_CONNS", 2),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		QueryTimeout:    getEnvDuration("DB_QUERY_TIMEOUT", 30*time.Second),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           getEnvInt("REDIS_DB", 0),
		PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
		MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		Disabled:     getEnvBool("REDIS_DISABLED", false),
	}
}

func loadHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Host:           getEnv("HTTP_HOST", "0.0.0.0"),
		Port:           getEnvInt("HTTP_PORT", 8080),
		ReadTimeout:    getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		EnableCORS:     getEnvBool("HTTP_ENABLE_CORS", true),
		AllowedOrigins: getEnvSlice("HTTP_ALLOWED_ORIGINS", []string{"*"}),
		EnableMetrics:  getEnvBool("HTTP_ENABLE_METRICS", true),
		MaxUploadBytes: int64(getEnvInt("HTTP_MAX_UPLOAD_BYTES", 10<<20)),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		SigningKey: getEnv("AUTH_SIGNING_KEY", ""),
		Issuer:     getEnv("AUTH_ISSUER", "collab-portal-auth"),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		RootDir: getEnv("STORAGE_ROOT_DIR", "./data/submissions"),
	}
}

func loadNotifierConfig() NotifierConfig {
	return NotifierConfig{
		SinkURL:        getEnv("NOTIFIER_SINK_URL", ""),
		APIKey:         getEnv("NOTIFIER_API_KEY", ""),
		QueueKey:       getEnv("NOTIFIER_QUEUE_KEY", "portal:notifications"),
		RequestTimeout: getEnvDuration("NOTIFIER_REQUEST_TIMEOUT", 10*time.Second),
		MaxRetries:     getEnvInt("NOTIFIER_MAX_RETRIES", 4),
		RetryBaseDelay: getEnvDuration("NOTIFIER_RETRY_BASE_DELAY", 250*time.Millisecond),
		RetryMaxDelay:  getEnvDuration("NOTIFIER_RETRY_MAX_DELAY", 5*time.Second),
		BreakerTimeout: getEnvDuration("NOTIFIER_CB_TIMEOUT", 30*time.Second),
		DrainBatchSize: getEnvInt("NOTIFIER_DRAIN_BATCH_SIZE", 50),
		PollTimeout:    getEnvDuration("NOTIFIER_POLL_TIMEOUT", 5*time.Second),
	}
}

func loadFeatureFlags() FeatureFlags {
	return FeatureFlags{
		StrictProgressTransitions: getEnvBool("PROGRESS_STRICT_TRANSITIONS", false),
		ResolveCacheTTL:           getEnvDuration("OPPORTUNITY_RESOLVE_CACHE_TTL", 5*time.Minute),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Auth.SigningKey == "" && c.App.Environment == EnvProduction {
		errs = append(errs, "AUTH_SIGNING_KEY is required in production")
	}

	if c.App.Environment == EnvProduction && c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required in production")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, "HTTP_PORT must be 1-65535")
	}

	if c.HTTP.MaxUploadBytes <= 0 {
		errs = append(errs, "HTTP_MAX_UPLOAD_BYTES must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvSlice(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		result = append(result, p)
	}
	return result
}
