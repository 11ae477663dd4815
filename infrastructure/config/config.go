package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`
	Storage       string `yaml:"storage"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	IndexName     string `yaml:"index_name"` // GSI1 - reverse edges, author and recipient listings
	EventBusName  string `yaml:"event_bus_name"`
	EventSource   string `yaml:"event_source"`

	// Lambda configuration
	IsLambda bool `yaml:"-"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Authentication
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`

	OTLPEndpoint   string   `yaml:"otlp_endpoint"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Fanout    FanoutConfig    `yaml:"fanout"`
	Graph     GraphConfig     `yaml:"graph"`
	Websocket WebsocketConfig `yaml:"websocket"`
	Dynamic   DynamicSettings `yaml:"dynamic"`

	// File is the YAML file the configuration was read from, if any
	File string `yaml:"-"`
}

// RateLimitConfig bounds requests per client
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// RedisConfig enables the cross-instance relay, shared cache and shared
// rate limiter when Addr is set
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// Enabled reports whether a Redis server is configured
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// FanoutConfig sizes the notification delivery worker pool
type FanoutConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// GraphConfig tunes follow-edge serialization
type GraphConfig struct {
	DistributedLock bool          `yaml:"distributed_lock"`
	LockTTL         time.Duration `yaml:"lock_ttl"`
}

// WebsocketConfig controls the /ws endpoint
type WebsocketConfig struct {
	// RequireToken rejects upgrades that carry no bearer token. Production
	// always requires one.
	RequireToken bool `yaml:"require_token"`
}

// DynamicSettings can change while the process runs
type DynamicSettings struct {
	NotifySelfComment      bool `yaml:"notify_self_comment"`
	MaxSessionsPerIdentity int  `yaml:"max_sessions_per_identity"`
	MaxPageSize            int  `yaml:"max_page_size"`
}

// Validate checks the dynamic section on its own so a reload can reject it
func (d DynamicSettings) Validate() error {
	if d.MaxPageSize <= 0 {
		return errors.New("dynamic.max_page_size must be positive")
	}
	if d.MaxSessionsPerIdentity < 0 {
		return errors.New("dynamic.max_sessions_per_identity must not be negative")
	}
	return nil
}

// Defaults returns the configuration used before any file or environment
// variable is applied
func Defaults() *Config {
	return &Config{
		ServerAddress:  ":8080",
		Environment:    "development",
		Storage:        StorageMemory,
		AWSRegion:      "us-west-2",
		DynamoDBTable:  "socialhub",
		IndexName:      "GSI1",
		EventBusName:   "socialhub-events",
		EventSource:    "socialhub",
		LogLevel:       "info",
		JWTIssuer:      "socialhub",
		EnableMetrics:  true,
		EnableCORS:     true,
		OTLPEndpoint:   "localhost:4317",
		AllowedOrigins: []string{"*"},
		RateLimit:      RateLimitConfig{Requests: 100, Window: time.Minute},
		Redis:          RedisConfig{Channel: "socialhub:deliveries"},
		Fanout:         FanoutConfig{Workers: 4, QueueSize: 1024},
		Graph:          GraphConfig{LockTTL: 5 * time.Second},
		Dynamic: DynamicSettings{
			NotifySelfComment:      true,
			MaxSessionsPerIdentity: 0,
			MaxPageSize:            100,
		},
	}
}

// LoadConfig loads defaults, then the YAML file named by CONFIG_FILE, then
// environment variables
func LoadConfig() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
		cfg.File = path
	}

	cfg.applyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// LoadFile reads a YAML file over the defaults without consulting the
// environment. The watcher uses it to re-read the dynamic section.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	cfg.File = path
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.Storage = getEnv("STORAGE", c.Storage)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDBTable))
	c.IndexName = getEnv("INDEX_NAME", c.IndexName)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)
	c.EventSource = getEnv("EVENT_SOURCE", c.EventSource)

	c.IsLambda = getEnvBool("IS_LAMBDA", os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "")

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.OTLPEndpoint = getEnv("OTLP_ENDPOINT", c.OTLPEndpoint)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = strings.Split(origins, ",")
	}

	c.RateLimit.Requests = getEnvInt("RATE_LIMIT_REQUESTS", c.RateLimit.Requests)
	c.RateLimit.Window = getEnvDuration("RATE_LIMIT_WINDOW", c.RateLimit.Window)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.Channel = getEnv("REDIS_CHANNEL", c.Redis.Channel)

	c.Fanout.Workers = getEnvInt("FANOUT_WORKERS", c.Fanout.Workers)
	c.Fanout.QueueSize = getEnvInt("FANOUT_QUEUE_SIZE", c.Fanout.QueueSize)

	c.Graph.DistributedLock = getEnvBool("GRAPH_DISTRIBUTED_LOCK", c.Graph.DistributedLock)
	c.Graph.LockTTL = getEnvDuration("GRAPH_LOCK_TTL", c.Graph.LockTTL)

	c.Websocket.RequireToken = getEnvBool("WEBSOCKET_REQUIRE_TOKEN", c.Websocket.RequireToken)

	c.Dynamic.NotifySelfComment = getEnvBool("NOTIFY_SELF_COMMENT", c.Dynamic.NotifySelfComment)
	c.Dynamic.MaxSessionsPerIdentity = getEnvInt("MAX_SESSIONS_PER_IDENTITY", c.Dynamic.MaxSessionsPerIdentity)
	c.Dynamic.MaxPageSize = getEnvInt("MAX_PAGE_SIZE", c.Dynamic.MaxPageSize)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageDynamoDB:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}

	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.Storage == StorageDynamoDB && c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
	}

	if c.Fanout.Workers <= 0 || c.Fanout.QueueSize <= 0 {
		return fmt.Errorf("fanout workers and queue size must be positive")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}

	return c.Dynamic.Validate()
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// WebsocketRequiresToken reports whether anonymous websocket upgrades are
// refused
func (c *Config) WebsocketRequiresToken() bool {
	return c.Websocket.RequireToken || c.IsProduction()
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
