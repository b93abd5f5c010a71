package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at process start and handed to every entry point.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Calculation CalculationConfig
	Upload      UploadConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host        string
	User        string
	Password    string
	Name        string
	Port        string
	SSLMode     string
	MaxRetries  int
	AutoMigrate bool
}

// Configured reports whether a storage backend was given at all.
func (d DatabaseConfig) Configured() bool {
	return d.Host != ""
}

type RedisConfig struct {
	Addr       string
	MaxRetries int
}

type KafkaConfig struct {
	Broker        string
	ConsumerGroup string
	MaxRetries    int
}

type CalculationConfig struct {
	AutoRecalculate  bool
	RateScheduleFile string
	ResultsCacheTTL  time.Duration
}

type UploadConfig struct {
	MaxBytes int64
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (Config, error) {
	var cfg Config
	var err error

	cfg.Server = ServerConfig{
		Port:         getString("PORT", "3000"),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cfg.Database = DatabaseConfig{
		Host:     os.Getenv("DB_HOST"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		Port:     getString("DB_PORT", "5432"),
		SSLMode:  getString("DB_SSLMODE", "disable"),
	}
	if cfg.Database.MaxRetries, err = getInt("DB_MAX_RETRIES", 5); err != nil {
		return Config{}, err
	}
	if cfg.Database.AutoMigrate, err = getBool("DB_AUTO_MIGRATE", false); err != nil {
		return Config{}, err
	}

	cfg.Redis = RedisConfig{Addr: os.Getenv("REDIS_ADDR"), MaxRetries: 5}
	cfg.Kafka = KafkaConfig{
		Broker:        os.Getenv("KAFKA_BROKER"),
		ConsumerGroup: getString("KAFKA_CONSUMER_GROUP", "wuxianyijin-contribution"),
		MaxRetries:    5,
	}

	cfg.Calculation.RateScheduleFile = os.Getenv("RATE_SCHEDULE_FILE")
	if cfg.Calculation.AutoRecalculate, err = getBool("AUTO_RECALCULATE", false); err != nil {
		return Config{}, err
	}
	if cfg.Calculation.ResultsCacheTTL, err = getDuration("RESULTS_CACHE_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}

	maxMB, err := getInt("MAX_UPLOAD_MB", 10)
	if err != nil {
		return Config{}, err
	}
	if maxMB <= 0 {
		return Config{}, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", maxMB)
	}
	cfg.Upload.MaxBytes = int64(maxMB) << 20

	return cfg, nil
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
