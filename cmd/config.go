package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"flowerstand/internal/pkg/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort string

	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSslMode       string
	DBLogLevel      string
	DBSlowThreshold time.Duration

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	JWTSecret string
	JWTIssuer string

	OutboxDispatchSpec    string
	OutboxBatchSize       int
	OutboxDispatchTimeout time.Duration
	OutboxWorkers         int
	OutboxLease           time.Duration
	OutboxBaseBackoff     time.Duration
	OutboxIdempotencyTTL  time.Duration
	DeadLetterSpec        string

	Log logging.Config
}

// DSN is the lib/pq connection string used by gorm and the migrator.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.DBSslMode}}.Encode(),
	}
	return u.String()
}

// LoadConfig reads envFile into the process environment when it exists and
// then resolves every setting from the environment with defaults for local
// development. Environment variables already set win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	logDefaults := logging.DefaultConfig()
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "flowerstand")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("DB_SLOW_THRESHOLD", 200*time.Millisecond)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "flowerstand:idempotency:")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "flowerstand")
	v.SetDefault("OUTBOX_DISPATCH_SPEC", "*/5 * * * * *")
	v.SetDefault("OUTBOX_BATCH_SIZE", 50)
	v.SetDefault("OUTBOX_DISPATCH_TIMEOUT", 30*time.Second)
	v.SetDefault("OUTBOX_WORKERS", 8)
	v.SetDefault("OUTBOX_LEASE", 5*time.Minute)
	v.SetDefault("OUTBOX_BASE_BACKOFF", time.Second)
	v.SetDefault("OUTBOX_IDEMPOTENCY_TTL", 7*24*time.Hour)
	v.SetDefault("DEAD_LETTER_SPEC", "0 */10 * * * *")
	v.SetDefault("LOG_LEVEL", logDefaults.Level)
	v.SetDefault("LOG_FORMAT", logDefaults.Format)
	v.SetDefault("LOG_OUTPUT", logDefaults.Output)
	v.SetDefault("LOG_MAX_SIZE_MB", logDefaults.MaxSizeMB)
	v.SetDefault("LOG_MAX_BACKUPS", logDefaults.MaxBackups)
	v.SetDefault("LOG_MAX_AGE_DAYS", logDefaults.MaxAgeDays)

	cfg := Config{
		HTTPPort:              v.GetString("HTTP_PORT"),
		DBHost:                v.GetString("DB_HOST"),
		DBPort:                v.GetString("DB_PORT"),
		DBUser:                v.GetString("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBName:                v.GetString("DB_NAME"),
		DBSslMode:             v.GetString("DB_SSLMODE"),
		DBLogLevel:            v.GetString("DB_LOG_LEVEL"),
		DBSlowThreshold:       v.GetDuration("DB_SLOW_THRESHOLD"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		RedisDB:               v.GetInt("REDIS_DB"),
		RedisKeyPrefix:        v.GetString("REDIS_KEY_PREFIX"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		JWTIssuer:             v.GetString("JWT_ISSUER"),
		OutboxDispatchSpec:    v.GetString("OUTBOX_DISPATCH_SPEC"),
		OutboxBatchSize:       v.GetInt("OUTBOX_BATCH_SIZE"),
		OutboxDispatchTimeout: v.GetDuration("OUTBOX_DISPATCH_TIMEOUT"),
		OutboxWorkers:         v.GetInt("OUTBOX_WORKERS"),
		OutboxLease:           v.GetDuration("OUTBOX_LEASE"),
		OutboxBaseBackoff:     v.GetDuration("OUTBOX_BASE_BACKOFF"),
		OutboxIdempotencyTTL:  v.GetDuration("OUTBOX_IDEMPOTENCY_TTL"),
		DeadLetterSpec:        v.GetString("DEAD_LETTER_SPEC"),
		Log: logging.Config{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			Output:     v.GetString("LOG_OUTPUT"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var problems []error
	if c.JWTSecret == "" {
		problems = append(problems, errors.New("JWT_SECRET is required"))
	}
	if c.OutboxBatchSize <= 0 {
		problems = append(problems, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	if c.OutboxWorkers <= 0 {
		problems = append(problems, errors.New("OUTBOX_WORKERS must be positive"))
	}
	if c.OutboxBaseBackoff <= 0 {
		problems = append(problems, errors.New("OUTBOX_BASE_BACKOFF must be positive"))
	}
	return errors.Join(problems...)
}
