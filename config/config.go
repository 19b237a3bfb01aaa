package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileEnv names the variable that points at an optional YAML config file.
const ConfigFileEnv = "CLUB_CONFIG"

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string `koanf:"database_url"`
	JWTSecretKey string `koanf:"jwt_secret_key"`
	ServerPort   int    `koanf:"server_port"`
	LogLevel     string `koanf:"log_level"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
	MigrateOnStart     bool     `koanf:"migrate_on_start"`

	TokenTTL         time.Duration `koanf:"token_ttl"`
	DBConnectTimeout time.Duration `koanf:"db_connect_timeout"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`

	R2AccountID       string `koanf:"r2_account_id"`
	R2AccessKeyID     string `koanf:"r2_access_key_id"`
	R2SecretAccessKey string `koanf:"r2_secret_access_key"`
	R2BucketName      string `koanf:"r2_bucket_name"`
	R2PublicBaseURL   string `koanf:"r2_public_base_url"`
}

// Defaults returns the configuration used when nothing overrides a value.
func Defaults() Config {
	return Config{
		ServerPort:         8080,
		LogLevel:           "info",
		CORSAllowedOrigins: []string{"*"},
		TokenTTL:           24 * time.Hour,
		DBConnectTimeout:   5 * time.Second,
		ShutdownTimeout:    15 * time.Second,
	}
}

// Load собирает конфигурацию слоями (по возрастанию приоритета):
//  1. значения по умолчанию
//  2. YAML файл, если задан CLUB_CONFIG
//  3. переменные окружения (DATABASE_URL, JWT_SECRET_KEY, SERVER_PORT, ...)
//
// Перед этим подгружается .env, если он есть (для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// DATABASE_URL -> database_url. Точки не используются, ключи плоские.
	envProvider := env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.CORSAllowedOrigins = cleanList(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is not set"))
	}
	if c.JWTSecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is not set"))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	return errors.Join(errs...)
}

// R2Configured reports whether uploads can be sent to Cloudflare R2.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
