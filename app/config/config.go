package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DriverBadger = "badger"
	DriverMongo  = "mongo"

	LedgerCounter       = "counter"
	LedgerTransactional = "transactional"
	LedgerDerived       = "derived"
)

type Config struct {
	Port            string        `validate:"required,numeric"`
	Environment     string        `validate:"required"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	TokenSecret string        `validate:"required"`
	TokenTTL    time.Duration `validate:"gt=0"`

	StoreDriver    string `validate:"oneof=badger mongo"`
	BadgerPath     string `validate:"required_if=StoreDriver badger BadgerInMemory false"`
	BadgerInMemory bool

	DBUser             string
	DBPass             string
	MongoHost          string
	MongoURI           string `validate:"required_if=StoreDriver mongo"`
	MongoDatabase      string `validate:"required"`
	PostsCollection    string `validate:"required"`
	RequestsCollection string `validate:"required"`

	LedgerMode string `validate:"oneof=counter transactional derived"`

	CORSOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	OTELCollectorURL string
}

var validate = validator.New()

// LoadConfig reads the process environment, after merging an optional .env
// file from the working directory.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := &Config{
		Port:            getEnvString("PORT", "5000"),
		Environment:     getEnvString("APP_ENV", getEnvString("NODE_ENV", EnvDevelopment)),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		TokenSecret: getEnvString("ACCESS_TOKEN_SECRET", ""),
		TokenTTL:    getEnvDuration("TOKEN_TTL", time.Hour),

		StoreDriver:    getEnvString("STORE_DRIVER", DriverBadger),
		BadgerPath:     getEnvString("BADGER_PATH", "data/badger"),
		BadgerInMemory: getEnvBool("BADGER_IN_MEMORY", false),

		DBUser:             getEnvString("DB_USER", ""),
		DBPass:             getEnvString("DB_PASS", ""),
		MongoHost:          getEnvString("MONGODB_HOST", "cluster0.68dnu.mongodb.net"),
		MongoURI:           getEnvString("MONGODB_URI", ""),
		MongoDatabase:      getEnvString("MONGODB_DATABASE", "volunteerDB"),
		PostsCollection:    getEnvString("POSTS_COLLECTION", "needVolunteer"),
		RequestsCollection: getEnvString("REQUESTS_COLLECTION", "volunteerRequest"),

		LedgerMode: getEnvString("LEDGER_MODE", LedgerCounter),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTELCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),
	}

	if config.MongoURI == "" && config.DBUser != "" {
		config.MongoURI = buildAtlasURI(config.DBUser, config.DBPass, config.MongoHost)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for missing or inconsistent settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func buildAtlasURI(user, pass, host string) string {
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority&appName=Cluster0",
		url.QueryEscape(user), url.QueryEscape(pass), host)
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
