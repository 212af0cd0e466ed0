package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pingate-bank/web/internal/pin"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreBolt     = "bolt"
)

type Config struct {
	Port        int    `yaml:"port"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`

	StoreBackend string `yaml:"store"`
	DatabaseURL  string `yaml:"database_url"`
	BoltPath     string `yaml:"bolt_path"`

	// JWTSecret signs identity session tokens. Empty outside production
	// means a random key per process.
	JWTSecret    string        `yaml:"jwt_secret"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	PinCookieTTL time.Duration `yaml:"pin_cookie_ttl"`
	ProjectRef   string        `yaml:"project_ref"`
	PreviewHosts []string      `yaml:"preview_hosts"`

	PinMaxFailures int                `yaml:"pin_max_failures"`
	Argon2         pin.Argon2idParams `yaml:"argon2"`

	SessionPurgeIntervalHours int `yaml:"session_purge_interval_hours"`
}

func Default() Config {
	return Config{
		Port:                      8080,
		Environment:               EnvDevelopment,
		LogLevel:                  "info",
		LogFormat:                 "json",
		StoreBackend:              StoreMemory,
		BoltPath:                  "bankweb.db",
		SessionTTL:                7 * 24 * time.Hour,
		PinCookieTTL:              8 * time.Hour,
		ProjectRef:                "local",
		PreviewHosts:              []string{"v0.app", "usercontent.net"},
		PinMaxFailures:            5,
		Argon2:                    pin.DefaultArgon2idParams(),
		SessionPurgeIntervalHours: 24,
	}
}

// Load builds the config from defaults, then the YAML file named by
// BANKWEB_CONFIG (if any), then BANKWEB_* environment variables.
func Load() (Config, error) {
	return LoadFile(os.Getenv("BANKWEB_CONFIG"))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.overlayEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) overlayEnv() error {
	if v := os.Getenv("BANKWEB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p >= 65536 {
			return fmt.Errorf("BANKWEB_PORT: invalid port %q", v)
		}
		c.Port = p
	}

	setString(&c.Environment, "BANKWEB_ENV")
	setString(&c.LogLevel, "BANKWEB_LOG_LEVEL")
	setString(&c.LogFormat, "BANKWEB_LOG_FORMAT")
	setString(&c.StoreBackend, "BANKWEB_STORE")
	setString(&c.BoltPath, "BANKWEB_BOLT_PATH")
	setString(&c.JWTSecret, "BANKWEB_JWT_SECRET")
	setString(&c.ProjectRef, "BANKWEB_PROJECT_REF")

	setString(&c.DatabaseURL, "BANKWEB_DATABASE_URL")
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if v := os.Getenv("BANKWEB_PREVIEW_HOSTS"); v != "" {
		var hosts []string
		for _, h := range strings.Split(v, ",") {
			if h = strings.TrimSpace(h); h != "" {
				hosts = append(hosts, h)
			}
		}
		c.PreviewHosts = hosts
	}

	for _, d := range []struct {
		env string
		dst *time.Duration
	}{
		{"BANKWEB_SESSION_TTL", &c.SessionTTL},
		{"BANKWEB_PIN_COOKIE_TTL", &c.PinCookieTTL},
	} {
		if v := os.Getenv(d.env); v != "" {
			dur, err := time.ParseDuration(v)
			if err != nil || dur <= 0 {
				return fmt.Errorf("%s: invalid duration %q", d.env, v)
			}
			*d.dst = dur
		}
	}

	if v := os.Getenv("BANKWEB_PIN_MAX_FAILURES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("BANKWEB_PIN_MAX_FAILURES: invalid value %q", v)
		}
		c.PinMaxFailures = n
	}

	if v := os.Getenv("BANKWEB_SESSION_PURGE_INTERVAL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.SessionPurgeIntervalHours = n
		}
	}
	return nil
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func (c Config) Validate() error {
	var errs []error

	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("environment must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Environment))
	}

	switch c.StoreBackend {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("postgres store requires a database url"))
		}
	case StoreBolt:
		if c.BoltPath == "" {
			errs = append(errs, errors.New("bolt store requires a file path"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.StoreBackend))
	}

	if c.IsProduction() && c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is required in production"))
	}
	if c.PinMaxFailures < 0 {
		errs = append(errs, errors.New("pin max failures must not be negative"))
	}
	if c.Argon2.Time == 0 || c.Argon2.MemoryKiB == 0 || c.Argon2.Parallelism == 0 {
		errs = append(errs, errors.New("argon2 time, memory and parallelism must be positive"))
	}
	if c.Argon2.KeyLen < 16 {
		errs = append(errs, errors.New("argon2 key_len must be at least 16"))
	}
	if c.Argon2.SaltLen < 8 {
		errs = append(errs, errors.New("argon2 salt_len must be at least 8"))
	}
	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

// IdentityCookieName is the cookie carrying the identity session token.
func (c Config) IdentityCookieName() string {
	return "sb-" + c.ProjectRef + "-auth-token"
}

// LimiterConfig is the PIN lockout policy derived from PinMaxFailures.
func (c Config) LimiterConfig() pin.LimiterConfig {
	lc := pin.DefaultLimiterConfig()
	lc.MaxFailures = c.PinMaxFailures
	return lc
}
