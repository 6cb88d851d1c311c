package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	SessionMemory = "memory"
	SessionRedis  = "redis"

	AuthLocal  = "local"
	AuthGoTrue = "gotrue"

	PublisherLog   = "log"
	PublisherKafka = "kafka"

	devSessionSecret = "dev-only-session-secret"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort        int
	GRPCPort        int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	StoreBackend   string
	StoreTimeout   time.Duration
	SQLitePath     string
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string
	MongoURI       string
	MongoDBName    string

	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	SessionTTL     time.Duration
	SessionSecret  string

	AuthProvider      string
	AdminEmail        string
	AdminPasswordHash string
	GoTrueURL         string
	GoTrueAnonKey     string
	LoginRPS          float64
	LoginBurst        int

	Publisher    string
	KafkaBrokers []string
	KafkaTopic   string

	CatalogPath string
	Location    *time.Location
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		GRPCPort:        getEnvInt("GRPC_PORT", 8081),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		StoreTimeout:   getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		SQLitePath:     getEnv("SQLITE_PATH", "storefront.db"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnvInt("DB_PORT", 5432),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "storefront"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "internal/repository/migrations"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "storefront"),

		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", SessionMemory)),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionSecret:  getEnv("SESSION_SECRET", ""),

		AuthProvider:      strings.ToLower(getEnv("AUTH_PROVIDER", AuthLocal)),
		AdminEmail:        getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		GoTrueURL:         getEnv("GOTRUE_URL", ""),
		GoTrueAnonKey:     getEnv("GOTRUE_ANON_KEY", ""),
		LoginRPS:          getEnvFloat("LOGIN_RPS", 0.2),
		LoginBurst:        getEnvInt("LOGIN_BURST", 5),

		Publisher:    strings.ToLower(getEnv("PUBLISHER", PublisherLog)),
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-orders"),

		CatalogPath: getEnv("CATALOG_PATH", ""),
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		return nil, fmt.Errorf("%w: TIMEZONE: %v", ErrInvalidConfig, err)
	}
	cfg.Location = loc

	if cfg.SessionSecret == "" && !cfg.IsProduction() {
		cfg.SessionSecret = devSessionSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case StoreMemory, StoreSQLite, StorePostgres, StoreMongo:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND %q is not one of memory, sqlite, postgres, mongo", c.StoreBackend))
	}
	switch c.SessionBackend {
	case SessionMemory, SessionRedis:
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND %q is not one of memory, redis", c.SessionBackend))
	}
	switch c.AuthProvider {
	case AuthLocal:
	case AuthGoTrue:
		if c.GoTrueURL == "" {
			errs = append(errs, errors.New("GOTRUE_URL is required for the gotrue auth provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_PROVIDER %q is not one of local, gotrue", c.AuthProvider))
	}
	switch c.Publisher {
	case PublisherLog:
	case PublisherKafka:
		if len(c.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required for the kafka publisher"))
		}
	default:
		errs = append(errs, fmt.Errorf("PUBLISHER %q is not one of log, kafka", c.Publisher))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required in production"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.RequestTimeout <= 0 || c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT and STORE_TIMEOUT must be positive"))
	}
	if c.LoginRPS <= 0 || c.LoginBurst < 1 {
		errs = append(errs, errors.New("LOGIN_RPS and LOGIN_BURST must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
