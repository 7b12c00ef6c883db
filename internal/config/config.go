// Package config reads the console's settings from the environment.
//
// Precedence: an explicit environment variable, then a value from an
// optional .env file in the working directory, then the default below.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// KV drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverS3       = "s3"
)

type Config struct {
	Port     int
	LogLevel slog.Level

	// Durable key/value medium.
	KVDriver     string
	KVPrefix     string
	PersistEmpty bool // write "[]" for an empty collection instead of skipping the write
	DBPath       string
	DatabaseURL  string
	Redis        RedisConfig
	S3           S3Config

	// Auth. JWTSecret may be empty; the server then generates one per
	// process, so tokens do not survive a restart.
	JWTSecret          string
	SecureCookies      bool
	AdminEmail         string
	AdminPassword      string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// GoogleEnabled reports whether Google sign-in is configured. The
// development mock login is offered only when it is not.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading .env: %w", err)
	}

	var errs []error
	cfg := Config{
		Port:         getInt("PORT", 8080, &errs),
		LogLevel:     getLevel("LOG_LEVEL", slog.LevelInfo, &errs),
		KVDriver:     strings.ToLower(getEnv("KV_DRIVER", DriverSQLite)),
		KVPrefix:     getEnv("KV_PREFIX", "truassets_"),
		PersistEmpty: getBool("PERSIST_EMPTY", false, &errs),
		DBPath:       getEnv("DB_PATH", "data/truassets.db"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0, &errs),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			PathStyle:       getBool("S3_PATH_STYLE", false, &errs),
		},
		JWTSecret:          os.Getenv("JWT_SECRET"),
		SecureCookies:      getBool("COOKIE_SECURE", false, &errs),
		AdminEmail:         getEnv("ADMIN_EMAIL", "admin@truassets.com"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", "Admin@123"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	}
	cfg.GoogleCallbackURL = getEnv("GOOGLE_CALLBACK_URL", fmt.Sprintf("http://localhost:%d/auth/google/callback", cfg.Port))

	switch cfg.KVDriver {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverRedis, DriverS3:
	default:
		errs = append(errs, fmt.Errorf("KV_DRIVER: unknown driver %q", cfg.KVDriver))
	}
	if cfg.KVDriver == DriverS3 && cfg.S3.Bucket == "" {
		errs = append(errs, errors.New("S3_BUCKET: required when KV_DRIVER=s3"))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func getBool(key string, def bool, errs *[]error) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

// getLevel accepts debug, info, warn or error (any case).
func getLevel(key string, def slog.Level, errs *[]error) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid level %q", key, v))
		return def
	}
	return l
}
