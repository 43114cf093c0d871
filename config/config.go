// Package config membaca konfigurasi dari environment (dan file .env jika ada).
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config adalah seluruh konfigurasi proses.
type Config struct {
	AppPort   string
	AppEnv    string
	LogLevel  string
	LogFormat string

	// StoreDriver: "postgres" (default) atau "memory".
	StoreDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	MongoURI    string
	MongoDBName string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	NotificationStream string

	JWTSecret        string
	TokenTTL         time.Duration
	ImpersonationTTL time.Duration
	RestoreTTL       time.Duration

	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET is not configured")

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "rps")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB_NAME", "rps")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("NOTIFICATION_STREAM", "rps:notifications")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("IMPERSONATION_TTL", 2*time.Hour)
	v.SetDefault("RESTORE_TTL", 4*time.Hour)
	v.SetDefault("BOOTSTRAP_ADMIN_EMAIL", "")
	v.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "")
	v.AutomaticEnv()
	return v
}

// Load membaca .env (kalau ada) lalu environment variable.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, err
		}
	}
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:                v.GetString("APP_PORT"),
		AppEnv:                 v.GetString("APP_ENV"),
		LogLevel:               strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:              strings.ToLower(v.GetString("LOG_FORMAT")),
		StoreDriver:            strings.ToLower(v.GetString("STORE_DRIVER")),
		DBHost:                 v.GetString("DB_HOST"),
		DBPort:                 v.GetString("DB_PORT"),
		DBUser:                 v.GetString("DB_USER"),
		DBPassword:             v.GetString("DB_PASSWORD"),
		DBName:                 v.GetString("DB_NAME"),
		MongoURI:               v.GetString("MONGO_URI"),
		MongoDBName:            v.GetString("MONGO_DB_NAME"),
		RedisAddr:              v.GetString("REDIS_ADDR"),
		RedisPassword:          v.GetString("REDIS_PASSWORD"),
		RedisDB:                v.GetInt("REDIS_DB"),
		NotificationStream:     v.GetString("NOTIFICATION_STREAM"),
		JWTSecret:              v.GetString("JWT_SECRET"),
		TokenTTL:               v.GetDuration("TOKEN_TTL"),
		ImpersonationTTL:       v.GetDuration("IMPERSONATION_TTL"),
		RestoreTTL:             v.GetDuration("RESTORE_TTL"),
		BootstrapAdminEmail:    v.GetString("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if cfg.StoreDriver != "postgres" && cfg.StoreDriver != "memory" {
		return nil, errors.New("STORE_DRIVER must be postgres or memory")
	}
	return cfg, nil
}

// PostgresDSN menyusun DSN untuk gorm postgres driver.
func (c *Config) PostgresDSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=disable TimeZone=Asia/Jakarta"
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }
