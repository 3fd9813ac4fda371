// Package config assembles server settings from flags, environment variables
// and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverPostgres  = "postgres"
	DriverFirestore = "firestore"
)

// Auth modes.
const (
	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

// Config holds every server setting.
type Config struct {
	HTTPAddr        string
	HealthAddr      string
	BasePath        string
	TLSCert         string
	TLSKey          string
	StorageDriver   string
	DatabaseURL     string
	FirebaseProject string
	CredentialsFile string
	AuthMode        string
	JWTKey          string
	CORSOrigins     []string
	Location        *time.Location
	ShutdownTimeout time.Duration

	VerifyMaxFails int
	VerifyWindow   time.Duration
	VerifyBlock    time.Duration
	IPHashKey      string

	Log LogConfig
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string
	Dev    bool
	File   string
	MaxAge time.Duration
}

// Load reads .env (if present) and then parses args with environment defaults.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse(args, os.Getenv)
}

// Parse builds a Config from args; getenv supplies flag defaults.
func Parse(args []string, getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	var (
		c       Config
		origins string
		tz      string
		err     error
	)
	fs := flag.NewFlagSet("smartfit-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&c.HTTPAddr, "addr", env("HTTP_ADDR", ":8080"), "HTTP listen address")
	fs.StringVar(&c.HealthAddr, "health-addr", env("HEALTH_ADDR", ":8081"), "gRPC health listen address (empty disables)")
	fs.StringVar(&c.BasePath, "base-path", env("BASE_PATH", "/api"), "URL prefix for all routes")
	fs.StringVar(&c.TLSCert, "tls-cert", env("TLS_CERT", ""), "TLS certificate (PEM); empty serves plain HTTP")
	fs.StringVar(&c.TLSKey, "tls-key", env("TLS_KEY", ""), "TLS private key (PEM)")
	fs.StringVar(&c.StorageDriver, "storage", env("STORAGE_DRIVER", DriverPostgres), "storage driver: postgres|firestore")
	fs.StringVar(&c.DatabaseURL, "dsn", env("DATABASE_URL", ""), "PostgreSQL DSN")
	fs.StringVar(&c.FirebaseProject, "firebase-project", env("FIREBASE_PROJECT_ID", ""), "Firebase project id")
	fs.StringVar(&c.CredentialsFile, "credentials", env("GOOGLE_APPLICATION_CREDENTIALS", ""), "service account JSON file")
	fs.StringVar(&c.AuthMode, "auth", env("AUTH_MODE", AuthFirebase), "token verification: firebase|jwt")
	fs.StringVar(&c.JWTKey, "jwt-key", env("JWT_KEY", ""), "HS256 key for -auth=jwt")
	fs.StringVar(&origins, "cors-origins", env("CORS_ORIGINS", "*"), "comma separated allowed origins")
	fs.StringVar(&tz, "tz", env("TZ", "UTC"), "location for date-times without offset")
	c.ShutdownTimeout, err = durationEnv(getenv, "SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "graceful shutdown budget")

	maxFails, err := intEnv(getenv, "VERIFY_MAX_FAILS", 5)
	if err != nil {
		return Config{}, err
	}
	fs.IntVar(&c.VerifyMaxFails, "verify-max-fails", maxFails, "failed verifications before blocking an IP")
	if c.VerifyWindow, err = durationEnv(getenv, "VERIFY_WINDOW", 15*time.Minute); err != nil {
		return Config{}, err
	}
	fs.DurationVar(&c.VerifyWindow, "verify-window", c.VerifyWindow, "sliding window for failed verifications")
	if c.VerifyBlock, err = durationEnv(getenv, "VERIFY_BLOCK", 15*time.Minute); err != nil {
		return Config{}, err
	}
	fs.DurationVar(&c.VerifyBlock, "verify-block", c.VerifyBlock, "block duration after too many failures")
	fs.StringVar(&c.IPHashKey, "ip-hash-key", env("IP_HASH_KEY", ""), "secret mixed into stored client address hashes")

	fs.StringVar(&c.Log.Level, "log-level", env("LOG_LEVEL", ""), "debug|info|warn|error")
	fs.BoolVar(&c.Log.Dev, "log-dev", getenv("LOG_DEV") == "1", "development logger")
	fs.StringVar(&c.Log.File, "log-file", env("LOG_FILE", ""), "also write logs to this file, rotated daily")
	if c.Log.MaxAge, err = durationEnv(getenv, "LOG_MAX_AGE", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	fs.DurationVar(&c.Log.MaxAge, "log-max-age", c.Log.MaxAge, "rotated log retention")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if c.Location, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("tz %q: %w", tz, err)
	}
	c.CORSOrigins = splitList(origins)
	if c.Log.Level == "" {
		c.Log.Level = "info"
		if c.Log.Dev {
			c.Log.Level = "debug"
		}
	}
	return c, c.Validate()
}

// Validate rejects inconsistent combinations.
func (c Config) Validate() error {
	var problems []string
	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres driver")
		}
	case DriverFirestore:
		if c.FirebaseProject == "" {
			problems = append(problems, "FIREBASE_PROJECT_ID is required for the firestore driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	switch c.AuthMode {
	case AuthFirebase:
		if c.FirebaseProject == "" {
			problems = append(problems, "FIREBASE_PROJECT_ID is required for firebase auth")
		}
	case AuthJWT:
		if c.JWTKey == "" {
			problems = append(problems, "JWT_KEY is required for jwt auth")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown AUTH_MODE %q", c.AuthMode))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		problems = append(problems, "TLS_CERT and TLS_KEY must be set together")
	}
	if c.VerifyMaxFails <= 0 {
		problems = append(problems, "VERIFY_MAX_FAILS must be positive")
	}
	if len(c.IPHashKey) > 64 {
		problems = append(problems, "IP_HASH_KEY must be at most 64 bytes")
	}
	if len(problems) > 0 {
		return errors.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// NeedsFirebase reports whether a Firebase app must be initialized.
func (c Config) NeedsFirebase() bool {
	return c.StorageDriver == DriverFirestore || c.AuthMode == AuthFirebase
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationEnv(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
