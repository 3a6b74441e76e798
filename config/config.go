package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"skinvault/database"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DatabaseName string `envconfig:"DATABASE_NAME"`

	// Connection pool; zero keeps the pgxpool default
	DBMaxConns         int32         `envconfig:"DB_MAX_CONNS" default:"20"`
	DBMinConns         int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	DBMaxConnLifetime  time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	DBMaxConnIdleTime  time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"5m"`
	DBStatementTimeout time.Duration `envconfig:"DB_STATEMENT_TIMEOUT"`

	// HTTP API
	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":8080"`
	JWTSecret    string `envconfig:"JWT_SECRET"`
	JWTIssuer    string `envconfig:"JWT_ISSUER" default:"skinvault"`
	ServiceToken string `envconfig:"SERVICE_TOKEN"` // Shared token for the fulfillment collaborator

	// Engine
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
	MaxRetries     uint64        `envconfig:"MAX_RETRIES" default:"3"`

	// Economy
	PlatformAccountID    int64 `envconfig:"PLATFORM_ACCOUNT_ID" default:"0"`
	MarketFeeBasisPoints int64 `envconfig:"MARKET_FEE_BPS" default:"500"`
	ReferralBonus        int64 `envconfig:"REFERRAL_BONUS" default:"200"`
	DailyRewardBase      int64 `envconfig:"DAILY_REWARD_BASE" default:"100"`
	DailyRewardStep      int64 `envconfig:"DAILY_REWARD_STEP" default:"50"`
	DailyRewardMaxStreak int   `envconfig:"DAILY_REWARD_MAX_STREAK" default:"7"`

	// Listing expiry sweep
	ExpirySweepInterval time.Duration `envconfig:"EXPIRY_SWEEP_INTERVAL" default:"1m"`
	ExpirySweepBatch    int           `envconfig:"EXPIRY_SWEEP_BATCH" default:"100"`

	// NATS configuration
	NATSEnabled bool   `envconfig:"NATS_ENABLED" default:"false"`
	NATSServers string `envconfig:"NATS_SERVERS" default:"nats://nats:4222"` // comma-separated

	// Redis balance cache
	RedisURL        string        `envconfig:"REDIS_URL"`
	BalanceCacheTTL time.Duration `envconfig:"BALANCE_CACHE_TTL" default:"30s"`

	// OpenTelemetry
	OTelEnabled              bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTelServiceName          string `envconfig:"OTEL_SERVICE_NAME" default:"skinvault"`
	OTelExporterType         string `envconfig:"OTEL_EXPORTER_TYPE" default:"console"` // console, otlp, none
	OTelOTLPEndpoint         string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"otel-collector:4317"`
	OTelExportIntervalMillis int    `envconfig:"OTEL_EXPORT_INTERVAL_MILLIS" default:"10000"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"` // text or json

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// DatabasePool returns the connection pool sizing. Statements default to the
// request timeout so a runaway query cannot outlive its request.
func (c *Config) DatabasePool() database.PoolOptions {
	statementTimeout := c.DBStatementTimeout
	if statementTimeout == 0 {
		statementTimeout = c.RequestTimeout
	}
	return database.PoolOptions{
		MaxConns:         c.DBMaxConns,
		MinConns:         c.DBMinConns,
		MaxConnLifetime:  c.DBMaxConnLifetime,
		MaxConnIdleTime:  c.DBMaxConnIdleTime,
		StatementTimeout: statementTimeout,
	}
}

// NATSServerList splits the comma-separated server list
func (c *Config) NATSServerList() []string {
	var servers []string
	for _, s := range strings.Split(c.NATSServers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}

// load loads configuration from the environment, reading a .env file first if present
func load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.Environment == "test" {
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	// If DatabaseName is provided, ensure it's not empty
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MarketFeeBasisPoints < 0 || c.MarketFeeBasisPoints >= 10_000 {
		return fmt.Errorf("MARKET_FEE_BPS must be in [0, 10000)")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if err := c.DatabasePool().Validate(); err != nil {
		return fmt.Errorf("invalid DB pool settings: %w", err)
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:          "test",
		HTTPAddr:             ":0",
		JWTSecret:            "test-secret",
		JWTIssuer:            "skinvault",
		ServiceToken:         "test-service-token",
		RequestTimeout:       5 * time.Second,
		MaxRetries:           3,
		PlatformAccountID:    0,
		MarketFeeBasisPoints: 500,
		ReferralBonus:        200,
		DailyRewardBase:      100,
		DailyRewardStep:      50,
		DailyRewardMaxStreak: 7,
		ExpirySweepInterval:  time.Minute,
		ExpirySweepBatch:     100,
		BalanceCacheTTL:      30 * time.Second,
		LogLevel:             "info",
	}
}
