package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Registration RegistrationConfig
	Questions    QuestionBankConfig
	Rules        RulesConfig
	Imports      ImportsConfig
	Exports      ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RegistrationConfig tunes exam-date selection behaviour.
type RegistrationConfig struct {
	ScheduleCacheTTL   time.Duration
	DefaultSessionCap  int
	MorningStartTime   string
	MorningEndTime     string
	AfternoonStartTime string
	AfternoonEndTime   string
}

// QuestionBankConfig governs question listing and image storage.
type QuestionBankConfig struct {
	DefaultPerPage  int
	MinPerPage      int
	MaxPerPage      int
	ImageDir        string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// RulesConfig tunes recommendation rule generation.
type RulesConfig struct {
	DefaultPassingRate int
	SnapshotTTL        time.Duration
}

// ImportsConfig configures CSV bulk import workers.
type ImportsConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	MaxFileSizeBytes  int64
}

// ExportsConfig configures archive report exports.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Registration = RegistrationConfig{
		ScheduleCacheTTL:   parseDuration(v.GetString("SCHEDULE_CACHE_TTL"), 5*time.Minute),
		DefaultSessionCap:  v.GetInt("DEFAULT_SESSION_CAPACITY"),
		MorningStartTime:   v.GetString("MORNING_START_TIME"),
		MorningEndTime:     v.GetString("MORNING_END_TIME"),
		AfternoonStartTime: v.GetString("AFTERNOON_START_TIME"),
		AfternoonEndTime:   v.GetString("AFTERNOON_END_TIME"),
	}

	cfg.Questions = QuestionBankConfig{
		DefaultPerPage:  v.GetInt("QUESTIONS_DEFAULT_PER_PAGE"),
		MinPerPage:      v.GetInt("QUESTIONS_MIN_PER_PAGE"),
		MaxPerPage:      v.GetInt("QUESTIONS_MAX_PER_PAGE"),
		ImageDir:        v.GetString("QUESTION_IMAGE_DIR"),
		SignedURLSecret: v.GetString("QUESTION_IMAGE_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("QUESTION_IMAGE_URL_TTL"), 30*time.Minute),
	}

	cfg.Rules = RulesConfig{
		DefaultPassingRate: v.GetInt("RULES_DEFAULT_PASSING_RATE"),
		SnapshotTTL:        parseDuration(v.GetString("RULES_SNAPSHOT_TTL"), time.Hour),
	}

	maxImportSize := v.GetInt64("IMPORTS_MAX_FILE_SIZE")
	if maxImportSize <= 0 {
		maxImportSize = 5 * 1024 * 1024
	}
	cfg.Imports = ImportsConfig{
		WorkerConcurrency: v.GetInt("IMPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("IMPORTS_WORKER_RETRIES"),
		MaxFileSizeBytes:  maxImportSize,
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 30*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "occ_admission")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "occ-admission")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULE_CACHE_TTL", "5m")
	v.SetDefault("DEFAULT_SESSION_CAPACITY", 40)
	v.SetDefault("MORNING_START_TIME", "08:00")
	v.SetDefault("MORNING_END_TIME", "11:00")
	v.SetDefault("AFTERNOON_START_TIME", "13:00")
	v.SetDefault("AFTERNOON_END_TIME", "16:00")

	v.SetDefault("QUESTIONS_DEFAULT_PER_PAGE", 10)
	v.SetDefault("QUESTIONS_MIN_PER_PAGE", 5)
	v.SetDefault("QUESTIONS_MAX_PER_PAGE", 500)
	v.SetDefault("QUESTION_IMAGE_DIR", "./uploads/questions")
	v.SetDefault("QUESTION_IMAGE_URL_SECRET", "dev_question_secret")
	v.SetDefault("QUESTION_IMAGE_URL_TTL", "30m")

	v.SetDefault("RULES_DEFAULT_PASSING_RATE", 80)
	v.SetDefault("RULES_SNAPSHOT_TTL", "1h")

	v.SetDefault("IMPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("IMPORTS_WORKER_RETRIES", 3)
	v.SetDefault("IMPORTS_MAX_FILE_SIZE", 5*1024*1024)

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "30m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
