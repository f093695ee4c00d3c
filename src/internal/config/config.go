package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=cooperativa_cuentas;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultHTTPAddr = ":3000"
const defaultKafkaTopic = "account-events"
const defaultAllowedOrigins = "http://localhost:3000,http://localhost:4000,http://localhost:4001,http://localhost:4200"

type Config struct {
	HTTPAddr           string
	DatabaseDSN        string
	StoreDriver        string
	MigrationsDir      string
	KafkaBrokers       []string
	KafkaTopic         string
	AllowedOrigins     []string
	RateLimitPerWindow int
	RateLimitWindow    time.Duration
	ShutdownTimeout    time.Duration
}

// Load reads configuration from the environment. Values in a .env file in the
// working directory are applied first without overriding variables already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	return fromEnv()
}

func fromEnv() (Config, error) {
	var errs []string

	driver := strings.ToLower(envOr("STORE_DRIVER", StoreDriverPostgres))
	if driver != StoreDriverPostgres && driver != StoreDriverMemory {
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverMemory))
	}

	perWindow, err := strconv.Atoi(envOr("RATE_LIMIT_PER_WINDOW", "100"))
	if err != nil || perWindow <= 0 {
		errs = append(errs, "RATE_LIMIT_PER_WINDOW must be a positive integer")
	}

	window, err := time.ParseDuration(envOr("RATE_LIMIT_WINDOW", "15m"))
	if err != nil || window <= 0 {
		errs = append(errs, "RATE_LIMIT_WINDOW must be a positive duration")
	}

	shutdown, err := time.ParseDuration(envOr("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil || shutdown <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be a positive duration")
	}

	if len(errs) > 0 {
		return Config{}, errors.New(strings.Join(errs, "; "))
	}

	return Config{
		HTTPAddr:           envOr("HTTP_ADDR", defaultHTTPAddr),
		DatabaseDSN:        normalizeConnectionString(envOr("DATABASE_DSN", defaultConnectionString)),
		StoreDriver:        driver,
		MigrationsDir:      envOr("MIGRATIONS_DIR", filepath.Join("src", "migrations")),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:         envOr("KAFKA_TOPIC", defaultKafkaTopic),
		AllowedOrigins:     splitList(envOr("ALLOWED_ORIGINS", defaultAllowedOrigins)),
		RateLimitPerWindow: perWindow,
		RateLimitWindow:    window,
		ShutdownTimeout:    shutdown,
	}, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeConnectionString turns an ADO-style "Key=Value;..." string into a
// libpq keyword DSN. Anything without a ';' is assumed to be libpq-ready already.
func normalizeConnectionString(raw string) string {
	if !strings.Contains(raw, ";") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts)+1)
	hasSSLMode := false

	for _, part := range parts {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host", "server":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username", "user id":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
