// Package config loads the service configuration from the environment and
// validates it against a fixed schema before anything else starts.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from every variable. A double underscore marks
// nesting: WANDERLUST_MONGO__URI -> mongo.uri.
const EnvPrefix = "WANDERLUST_"

type Config struct {
	Env     string        `koanf:"env" validate:"required,oneof=development staging production"`
	Server  ServerConfig  `koanf:"server" validate:"required"`
	Mongo   MongoConfig   `koanf:"mongo" validate:"required"`
	Redis   RedisConfig   `koanf:"redis" validate:"required"`
	Auth    AuthConfig    `koanf:"auth" validate:"required"`
	Email   EmailConfig   `koanf:"email" validate:"required"`
	Storage StorageConfig `koanf:"storage" validate:"required"`
	Log     LogConfig     `koanf:"log" validate:"required"`
}

// ServerConfig timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1,dive,url"`
	PublicURL          string   `koanf:"public_url" validate:"required,url"`

	// IPs or CIDRs whose X-Forwarded-For is believed
	TrustedProxies []string `koanf:"trusted_proxies" validate:"dive,cidr|ip"`
}

type MongoConfig struct {
	URI      string `koanf:"uri" validate:"required"`
	Database string `koanf:"database" validate:"required"`
}

type RedisConfig struct {
	Address  string `koanf:"address" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

type AuthConfig struct {
	JWTSecret       string `koanf:"jwt_secret" validate:"required,min=32"`
	SessionTTLHours int    `koanf:"session_ttl_hours" validate:"required,min=1"`
	ResetTTLMinutes int    `koanf:"reset_ttl_minutes" validate:"required,min=1"`
	SecureCookie    bool   `koanf:"secure_cookie"`
}

type EmailConfig struct {
	ResendAPIKey string `koanf:"resend_api_key" validate:"required"`
	From         string `koanf:"from" validate:"required"`
	AdminAddress string `koanf:"admin_address" validate:"required,email"`
}

type StorageConfig struct {
	Region        string `koanf:"region" validate:"required"`
	Bucket        string `koanf:"bucket" validate:"required"`
	PublicBaseURL string `koanf:"public_base_url" validate:"omitempty,url"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=json console"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func defaults() map[string]any {
	return map[string]any{
		"env":                         "development",
		"server.port":                 "8080",
		"server.read_timeout":         7,
		"server.write_timeout":        15,
		"server.idle_timeout":         120,
		"server.public_url":           "http://localhost:3000",
		"mongo.database":              "wanderlust",
		"redis.address":               "localhost:6379",
		"auth.session_ttl_hours":      72,
		"auth.reset_ttl_minutes":      60,
		"log.level":                   "info",
		"log.format":                  "json",
	}
}

// envKey maps WANDERLUST_SERVER__CORS_ALLOWED_ORIGINS to server.cors_allowed_origins.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Load reads an optional .env file, overlays WANDERLUST_* variables on the
// defaults and validates the result.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	return parse(k)
}

func parse(k *koanf.Koanf) (*Config, error) {
	// comma separated lists arrive as a single string from the environment
	for _, key := range []string{"server.cors_allowed_origins", "server.trusted_proxies"} {
		if raw, ok := k.Get(key).(string); ok {
			if err := k.Set(key, splitList(raw)); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// credentialed CORS needs explicit origins; the site itself is the default
	if len(cfg.Server.CORSAllowedOrigins) == 0 {
		if o := originOf(cfg.Server.PublicURL); o != "" {
			cfg.Server.CORSAllowedOrigins = []string{o}
		}
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
