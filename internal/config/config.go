package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	AuthModeIP  = "ip"
	AuthModeJWT = "jwt"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	TrustedProxies  string        `envconfig:"TRUSTED_PROXIES"`
	CORSOrigins     string        `envconfig:"CORS_ALLOWED_ORIGINS"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	AuthMode    string `envconfig:"AUTH_MODE" default:"ip"`
	HRIP        string `envconfig:"HR_IP"`
	HRIPs       string `envconfig:"HR_IPS"`
	EmployeeIPs string `envconfig:"EMPLOYEE_IPS"`
	JWTSecret   string `envconfig:"JWT_SECRET"`
	JWTAudience string `envconfig:"JWT_AUDIENCE" default:"attendance-api"`

	OfficeIPs           string  `envconfig:"OFFICE_IPS"`
	OfficeGeo           string  `envconfig:"OFFICE_GEO"`
	OfficeLat           string  `envconfig:"OFFICE_LAT"`
	OfficeLng           string  `envconfig:"OFFICE_LNG"`
	OfficeRadiusM       string  `envconfig:"OFFICE_RADIUS_M"`
	DefaultFenceRadiusM float64 `envconfig:"GEOFENCE_DEFAULT_RADIUS_M" default:"150"`

	GeoTokenSecret    string        `envconfig:"GEO_TOKEN_SECRET"`
	RequireGeoToken   bool          `envconfig:"REQUIRE_GEO_TOKEN" default:"false"`
	GeoTokenTTL       time.Duration `envconfig:"GEO_TOKEN_TTL" default:"120s"`
	GeoTokenMaxDriftM float64       `envconfig:"GEO_TOKEN_MAX_DRIFT_M" default:"25"`

	HalfDayThreshold   int `envconfig:"HALF_DAY_DISCONNECT_THRESHOLD" default:"2"`
	ManualReasonMinLen int `envconfig:"MANUAL_REASON_MIN_LEN" default:"3"`

	RateLimitEnabled  bool   `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	HalfDayWebhookURL string `envconfig:"HALF_DAY_WEBHOOK_URL"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env vars: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate отклоняет несогласованные комбинации настроек до старта сервиса.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	switch c.AuthMode {
	case AuthModeIP:
	case AuthModeJWT:
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_MODE=jwt"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode))
	}

	if c.RequireGeoToken && c.GeoTokenSecret == "" {
		errs = append(errs, errors.New("REQUIRE_GEO_TOKEN needs GEO_TOKEN_SECRET"))
	}
	if c.HalfDayThreshold < 0 {
		errs = append(errs, errors.New("HALF_DAY_DISCONNECT_THRESHOLD must be non-negative"))
	}
	if c.DefaultFenceRadiusM <= 0 {
		errs = append(errs, errors.New("GEOFENCE_DEFAULT_RADIUS_M must be positive"))
	}
	if c.GeoTokenMaxDriftM < 0 {
		errs = append(errs, errors.New("GEO_TOKEN_MAX_DRIFT_M must be non-negative"))
	}

	return errors.Join(errs...)
}

// HRAddresses объединяет HR_IP и HR_IPS.
func (c *Config) HRAddresses() []string {
	return SplitList(c.HRIP + "," + c.HRIPs)
}

func (c *Config) EmployeeAddresses() []string {
	return SplitList(c.EmployeeIPs)
}

func (c *Config) TrustedProxyList() []string {
	return SplitList(c.TrustedProxies)
}

func (c *Config) CORSOriginList() []string {
	return SplitList(c.CORSOrigins)
}

// SplitList разбирает список через запятую, отбрасывая пробелы и пустые элементы.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
