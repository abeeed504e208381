package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Log      LogConfig
	CORS     CORSConfig
	Company  CompanyConfig
}

type ServerConfig struct {
	Port string
	Mode string
	// FollowUpSchedule is the cron spec of the overdue follow-up sweep.
	FollowUpSchedule string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  string // e.g. "24h"
	RefreshTokenTTL string // e.g. "168h"
}

type LogConfig struct {
	Level      string
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
	Format     string // json or text
}

type CORSConfig struct {
	AllowOrigins []string
}

// CompanyConfig carries the seller's fixed identity used on invoices.
// HomeState decides intra- vs inter-state GST for every sale.
type CompanyConfig struct {
	Name           string
	GSTIN          string
	PAN            string
	HomeState      string
	DefaultGSTRate string // percentage, e.g. "18"
}

// Load reads configs/.env (when present) and the process environment.
func Load() *Config {
	// Missing .env is fine in containers; env vars win either way
	_ = godotenv.Load("configs/.env")

	return &Config{
		Server: ServerConfig{
			Port:             getEnv("PORT", "8080"),
			Mode:             getEnv("GIN_MODE", "debug"),
			FollowUpSchedule: getEnv("FOLLOWUP_CRON", "0 9 * * *"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", ""),
			AccessTokenTTL:  getEnv("JWT_ACCESS_TTL", "24h"),
			RefreshTokenTTL: getEnv("JWT_REFRESH_TTL", "168h"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			FilePath:   getEnv("LOG_FILE_PATH", ""),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 28),
			Compress:   getEnvBool("LOG_COMPRESS", true),
			Format:     getEnv("LOG_FORMAT", "text"),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvSlice("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Company: CompanyConfig{
			Name:           getEnv("COMPANY_NAME", "Fantopark Travel Private Limited"),
			GSTIN:          getEnv("COMPANY_GSTIN", "06AABCS1234L1ZE"),
			PAN:            getEnv("COMPANY_PAN", "AABCS1234L"),
			HomeState:      getEnv("COMPANY_STATE", "Haryana"),
			DefaultGSTRate: getEnv("GST_DEFAULT_RATE", "18"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
