package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Values come from the environment (optionally via a .env file) with
// sensible defaults for local development.
type Config struct {
	ServerAddr  string
	Environment string // "development" or "production"; production enables Secure cookies
	WebAppDir   string // Path to the web application's UI files

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Session配置
	SessionSecret      string        // HMAC key for session tokens
	SessionTTL         time.Duration // default session lifetime (1 day)
	SessionRememberTTL time.Duration // "remember me" session lifetime (30 days)

	UploadDir       string // Base directory for all uploads
	AvatarUploadDir string // Subdirectory for uploaded avatars: UploadDir/avatars
	AvatarAssetDir  string // Directory holding the predefined avatar assets

	LogLevel string
	LogPath  string
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// Attempt to load .env file. godotenv.Load() will not override existing env vars.
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	uploadBase := "uploads"
	staticBase := "static"

	return &Config{
		ServerAddr:  getEnv("SERVER_ADDR", ":8080"),
		Environment: getEnv("APP_ENV", "development"),
		WebAppDir:   filepath.Join("web", "ui"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // For password, better not to have a hardcoded default
		DBName:     getEnv("DB_NAME", "arena"),

		// Redis配置，使用默认值
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""), // 默认无密码
		RedisDB:       getEnvInt("REDIS_DB", 0),     // 默认使用0号数据库

		// Session密钥必须在生产环境中显式配置
		SessionSecret:      getEnv("SESSION_SECRET", "bt1arena-dev-secret"),
		SessionTTL:         24 * time.Hour,
		SessionRememberTTL: 30 * 24 * time.Hour,

		UploadDir:       uploadBase,
		AvatarUploadDir: filepath.Join(uploadBase, "avatars"),
		AvatarAssetDir:  filepath.Join(staticBase, "avatars"),

		LogLevel: getEnv("LOG_LEVEL", "debug"),
		LogPath:  getEnv("LOG_PATH", filepath.Join("logs", "bt1arena.log")),
	}
}
