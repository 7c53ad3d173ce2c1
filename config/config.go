package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	JWT     JWTConfig
	DB      DBConfig
	Server  ServerConfig
	Lockout LockoutConfig
}

type JWTConfig struct {
	Access     string
	AccessExp  time.Duration
	Refresh    string
	RefreshExp time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type ServerConfig struct {
	Port string
	// BaseURL is the external URL short links and portal links are composed
	// against, e.g. https://qr.example.com
	BaseURL    string
	Production bool
	UploadDir  string
}

type LockoutConfig struct {
	MaxAttempts  int
	LockDuration time.Duration
}

func Load(log *zap.Logger) *Config {
	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", log),
			Port:     getEnv("DB_PORT", log),
			User:     getEnv("DB_USER", log),
			Password: getEnv("DB_PASSWORD", log),
			Name:     getEnv("DB_NAME", log),
			SSLMode:  getEnv("DB_SSLMODE", log),
		},
		JWT: JWTConfig{
			Access:     getEnv("ACCESS_SECRET", log),
			AccessExp:  parseDurationWithDays(getEnv("ACCESS_EXP", log)),
			Refresh:    getEnv("REFRESH_SECRET", log),
			RefreshExp: parseDurationWithDays(getEnv("REFRESH_EXP", log)),
		},
		Server: ServerConfig{
			Port:       getEnvDefault("PORT", "8080"),
			BaseURL:    getEnv("BASE_URL", log),
			Production: os.Getenv("ENV") == "production",
			UploadDir:  getEnvDefault("UPLOAD_DIR", "uploads/logos"),
		},
		Lockout: LockoutConfig{
			MaxAttempts:  getEnvInt("LOCKOUT_MAX_ATTEMPTS", 5),
			LockDuration: getEnvDuration("LOCKOUT_DURATION", 30*time.Minute),
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if d := parseDurationWithDays(val); d > 0 {
			return d
		}
	}
	return def
}

func parseDurationWithDays(s string) time.Duration {
	if strings.HasSuffix(s, "d") {
		daysStr := strings.TrimSuffix(s, "d")
		days, err := time.ParseDuration(daysStr + "h")
		if err != nil {
			return 0
		}
		return time.Duration(24) * days
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return duration
}
