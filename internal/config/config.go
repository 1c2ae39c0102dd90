package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// MockTrackingKey forces the carrier lookup onto generated data.
	MockTrackingKey = "mock_key"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Gemini    GeminiConfig
	Scaledown ScaledownConfig
	Tracking  TrackingConfig
}

type AppConfig struct {
	Env               string   `envconfig:"APP_ENV" default:"development"`
	Port              string   `envconfig:"PORT" default:"8080"`
	BaseURL           string   `envconfig:"BASE_URL" default:"http://localhost:8080"`
	LogLevel          string   `envconfig:"LOG_LEVEL" default:"info"`
	AllowRegistration bool     `envconfig:"ALLOW_REGISTRATION" default:"false"`
	CORSOrigins       []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, EnvProduction)
}

type DBConfig struct {
	Driver         string        `envconfig:"DB_DRIVER" default:"mysql"`
	DSN            string        `envconfig:"DB_DSN" required:"true"`
	ConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
	LogLevel       string        `envconfig:"DB_LOG_LEVEL" default:"warn"`
}

type RedisConfig struct {
	URL        string        `envconfig:"REDIS_URL"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`
}

type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" required:"true"`
	TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

type GeminiConfig struct {
	APIKey string `envconfig:"GEMINI_API_KEY"`
	Model  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
}

func (g GeminiConfig) Enabled() bool { return g.APIKey != "" }

type ScaledownConfig struct {
	APIKey  string        `envconfig:"SCALEDOWN_API_KEY"`
	URL     string        `envconfig:"SCALEDOWN_URL" default:"https://api.scaledown.ai/v1/compress"`
	Level   string        `envconfig:"SCALEDOWN_LEVEL" default:"medium"`
	Timeout time.Duration `envconfig:"SCALEDOWN_TIMEOUT" default:"10s"`
}

type TrackingConfig struct {
	APIKey   string        `envconfig:"TRACKING_API_KEY"`
	Provider string        `envconfig:"TRACKING_PROVIDER" default:"17TRACK"`
	URL      string        `envconfig:"TRACKING_URL" default:"https://api.17track.net/track/v2.2/gettrackinfo"`
	Timeout  time.Duration `envconfig:"TRACKING_TIMEOUT" default:"10s"`
}

// UsesMock reports whether lookups should skip the real provider.
func (t TrackingConfig) UsesMock() bool {
	return t.APIKey == "" || t.APIKey == MockTrackingKey
}

// Load reads an optional .env file and then the process environment.
// It reports whether a .env file was found so the caller can log it.
func Load(envFiles ...string) (*Config, bool, error) {
	foundEnv := godotenv.Load(envFiles...) == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, foundEnv, fmt.Errorf("parsing config: %w", err)
	}
	switch cfg.DB.Driver {
	case "mysql", "sqlite":
	default:
		return nil, foundEnv, fmt.Errorf("parsing config: unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
	return &cfg, foundEnv, nil
}
