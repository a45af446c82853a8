package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/RafexStrike/eventment-server/internal/validation"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	AuthProviderFirebase = "firebase"
	AuthProviderJWT      = "jwt"
)

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Mongo       MongoConfig     `yaml:"mongo"`
	Auth        AuthConfig      `yaml:"auth"`
	CORS        CORSConfig      `yaml:"cors"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Logging     LoggingConfig   `yaml:"logging"`
	Tracing     TracingConfig   `yaml:"tracing"`
	Environment string          `yaml:"environment" validate:"oneof=development test production"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

type MongoConfig struct {
	URI                 string        `yaml:"uri"`
	Username            string        `yaml:"username"`
	Password            string        `yaml:"password"`
	Host                string        `yaml:"host"`
	AppName             string        `yaml:"app_name"`
	Database            string        `yaml:"database" validate:"required"`
	EventsCollection    string        `yaml:"events_collection" validate:"required"`
	JoinedCollection    string        `yaml:"joined_collection" validate:"required"`
	OperationTimeout    time.Duration `yaml:"operation_timeout" validate:"gt=0"`
	ConnectTimeout      time.Duration `yaml:"connect_timeout" validate:"gt=0"`
	EnsureIndexesOnBoot bool          `yaml:"ensure_indexes_on_boot"`
}

type AuthConfig struct {
	Provider           string `yaml:"provider" validate:"oneof=firebase jwt"`
	FirebaseServiceKey string `yaml:"firebase_service_key"`
	FirebaseProjectID  string `yaml:"firebase_project_id"`
	JWTSecret          string `yaml:"jwt_secret"`
	JWTIssuer          string `yaml:"jwt_issuer"`
}

type CORSConfig struct {
	AllowedOrigins  []string `yaml:"allowed_origins"`
	AllowAllOrigins bool     `yaml:"allow_all_origins"`
}

type RateLimitConfig struct {
	PublicPerMinute   int      `yaml:"public_per_minute" validate:"min=0"`
	MemberPerMinute   int      `yaml:"member_per_minute" validate:"min=0"`
	TrustedProxyCIDRs []string `yaml:"trusted_proxy_cidrs"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter" validate:"omitempty,oneof=stdout otlp none"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// Defaults mirrors the deployment the frontend was built against.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3001,
		},
		Mongo: MongoConfig{
			Host:                "first-try-mongodb-atlas.3vtotij.mongodb.net",
			AppName:             "First-Try-Mongodb-Atlas-Cluster1",
			Database:            "eventAs11DB",
			EventsCollection:    "eventAs11COL",
			JoinedCollection:    "joinedEventAs11COL",
			OperationTimeout:    5 * time.Second,
			ConnectTimeout:      10 * time.Second,
			EnsureIndexesOnBoot: true,
		},
		Auth: AuthConfig{
			Provider:  AuthProviderFirebase,
			JWTIssuer: "eventment-dev",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:5173",
				"https://eventment-assignment11.web.app",
			},
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: 120,
			MemberPerMinute: 300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Exporter:     "stdout",
			ServiceName:  "eventment-server",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Environment: "development",
	}
}

// Load reads configuration from the environment on top of the defaults.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile layers defaults, an optional YAML file and the environment, in that order.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)

	cfg.Mongo.URI = getEnv("MONGODB_URI", cfg.Mongo.URI)
	cfg.Mongo.Username = getEnv("DB_USERNAME", cfg.Mongo.Username)
	cfg.Mongo.Password = getEnv("DB_PASSWORD", cfg.Mongo.Password)
	cfg.Mongo.Host = getEnv("MONGODB_HOST", cfg.Mongo.Host)
	cfg.Mongo.AppName = getEnv("MONGODB_APP_NAME", cfg.Mongo.AppName)
	cfg.Mongo.Database = getEnv("MONGODB_DATABASE", cfg.Mongo.Database)
	cfg.Mongo.EventsCollection = getEnv("MONGODB_EVENTS_COLLECTION", cfg.Mongo.EventsCollection)
	cfg.Mongo.JoinedCollection = getEnv("MONGODB_JOINED_COLLECTION", cfg.Mongo.JoinedCollection)
	cfg.Mongo.OperationTimeout = getEnvDuration("MONGODB_OPERATION_TIMEOUT", cfg.Mongo.OperationTimeout)
	cfg.Mongo.ConnectTimeout = getEnvDuration("MONGODB_CONNECT_TIMEOUT", cfg.Mongo.ConnectTimeout)
	cfg.Mongo.EnsureIndexesOnBoot = getEnvBool("MONGODB_ENSURE_INDEXES", cfg.Mongo.EnsureIndexesOnBoot)

	cfg.Auth.Provider = strings.ToLower(getEnv("AUTH_PROVIDER", cfg.Auth.Provider))
	cfg.Auth.FirebaseServiceKey = getEnv("FIREBASE_SERVICE_KEY", cfg.Auth.FirebaseServiceKey)
	cfg.Auth.FirebaseProjectID = getEnv("FIREBASE_PROJECT_ID", cfg.Auth.FirebaseProjectID)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTIssuer = getEnv("JWT_ISSUER", cfg.Auth.JWTIssuer)

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = splitList(origins)
	}
	cfg.CORS.AllowAllOrigins = getEnvBool("CORS_ALLOW_ALL_ORIGINS", cfg.CORS.AllowAllOrigins)

	cfg.RateLimit.PublicPerMinute = getEnvInt("RATE_LIMIT_PUBLIC", cfg.RateLimit.PublicPerMinute)
	cfg.RateLimit.MemberPerMinute = getEnvInt("RATE_LIMIT_MEMBER", cfg.RateLimit.MemberPerMinute)
	if cidrs := os.Getenv("TRUSTED_PROXY_CIDRS"); cidrs != "" {
		cfg.RateLimit.TrustedProxyCIDRs = splitList(cidrs)
	}

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = getEnv("TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.ServiceName = getEnv("OTEL_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)
	cfg.Tracing.SampleRate = getEnvFloat("TRACING_SAMPLE_RATE", cfg.Tracing.SampleRate)

	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", cfg.Environment))
}

// Validate checks field constraints and the cross-field rules between them.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := c.Mongo.ConnectionURI(); err != nil {
		return err
	}

	if err := validation.ValidateOrigins(c.CORS.AllowedOrigins, "CORS_ALLOWED_ORIGINS"); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.Auth.Provider {
	case AuthProviderFirebase:
		if c.Auth.FirebaseServiceKey == "" {
			return fmt.Errorf("FIREBASE_SERVICE_KEY is required when AUTH_PROVIDER=firebase")
		}
		if _, err := c.Auth.ServiceAccountJSON(); err != nil {
			return err
		}
	case AuthProviderJWT:
		if c.Environment == "production" {
			return fmt.Errorf("AUTH_PROVIDER=jwt is not allowed in production")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters when AUTH_PROVIDER=jwt")
		}
	}

	if c.Environment == "production" {
		if c.CORS.AllowAllOrigins {
			return fmt.Errorf("CORS_ALLOW_ALL_ORIGINS cannot be enabled in production")
		}
		if len(c.CORS.AllowedOrigins) == 0 {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS is required in production")
		}
	}
	return nil
}

// ConnectionURI returns MONGODB_URI when set, otherwise an Atlas SRV URI with the
// credentials embedded.
func (m MongoConfig) ConnectionURI() (string, error) {
	if m.URI != "" {
		return m.URI, nil
	}
	if m.Username == "" || m.Password == "" {
		return "", fmt.Errorf("MONGODB_URI or DB_USERNAME and DB_PASSWORD are required")
	}
	if m.Host == "" {
		return "", fmt.Errorf("MONGODB_HOST is required when MONGODB_URI is not set")
	}

	query := url.Values{}
	query.Set("retryWrites", "true")
	query.Set("w", "majority")
	if m.AppName != "" {
		query.Set("appName", m.AppName)
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(m.Username, m.Password),
		Host:     m.Host,
		Path:     "/",
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}

// ServiceAccountJSON decodes the base64 service-account secret.
func (a AuthConfig) ServiceAccountJSON() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(a.FirebaseServiceKey))
	if err != nil {
		return nil, fmt.Errorf("FIREBASE_SERVICE_KEY is not valid base64: %w", err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("FIREBASE_SERVICE_KEY does not decode to JSON")
	}
	return raw, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
