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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Uploads   UploadsConfig
	Dashboard DashboardConfig
	Exports   ExportsConfig
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

// UploadsConfig controls supporting-document storage and validation.
type UploadsConfig struct {
	StorageDir       string
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// DashboardConfig governs caching of admin dashboard statistics.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ExportsConfig toggles the admin data-export endpoints.
type ExportsConfig struct {
	Enabled bool
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

	maxUploadSize := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 5 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		StorageDir:       v.GetString("UPLOADS_STORAGE_DIR"),
		MaxFileSizeBytes: maxUploadSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("UPLOADS_ALLOWED_MIME_TYPES")),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled: v.GetBool("DASHBOARD_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
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
	v.SetDefault("DB_NAME", "hiraya_scholarship")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "hiraya-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOADS_STORAGE_DIR", "./uploads")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("UPLOADS_ALLOWED_MIME_TYPES", "application/pdf,image/jpeg,image/png")

	v.SetDefault("DASHBOARD_CACHE_ENABLED", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_EXPORTS", true)
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
