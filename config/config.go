package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads at startup.
// It is built once in main and handed to the constructors that need it.
type Config struct {
	Port    string
	GinMode string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeZone string
	SQLitePath string
	DBLogLevel string

	// Tokens
	SecretKey          string
	Algorithm          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	// Redis (refresh tokens). Empty address disables refresh tokens.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSAllowOrigins []string

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string
	LogFile   string
}

var supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "options_pricer")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("SQLITE_PATH", "options.db")
	v.SetDefault("DB_LOG_LEVEL", "warn")

	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 20)
	v.SetDefault("REFRESH_TOKEN_EXPIRE_HOURS", 24*7)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("LOG_FILE", "logs/app.log")
}

// Load reads a .env file if one exists and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:    v.GetString("PORT"),
		GinMode: v.GetString("GIN_MODE"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetInt("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		DBTimeZone: v.GetString("DB_TIMEZONE"),
		SQLitePath: v.GetString("SQLITE_PATH"),
		DBLogLevel: strings.ToLower(v.GetString("DB_LOG_LEVEL")),

		SecretKey:          v.GetString("SECRET_KEY"),
		Algorithm:          strings.ToUpper(v.GetString("ALGORITHM")),
		AccessTokenExpiry:  time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		RefreshTokenExpiry: time.Duration(v.GetInt("REFRESH_TOKEN_EXPIRE_HOURS")) * time.Hour,

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		CORSAllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),

		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),
		LogOutput: strings.ToLower(v.GetString("LOG_OUTPUT")),
		LogFile:   v.GetString("LOG_FILE"),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string

	if c.SecretKey == "" {
		errs = append(errs, "SECRET_KEY is required")
	}
	if !supportedAlgorithms[c.Algorithm] {
		errs = append(errs, fmt.Sprintf("ALGORITHM %q is not supported (use HS256, HS384 or HS512)", c.Algorithm))
	}
	if c.AccessTokenExpiry <= 0 {
		errs = append(errs, "ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.RedisAddr != "" && c.RefreshTokenExpiry <= 0 {
		errs = append(errs, "REFRESH_TOKEN_EXPIRE_HOURS must be positive")
	}
	switch c.DBDriver {
	case "postgres":
		if c.DBName == "" {
			errs = append(errs, "DB_NAME is required for postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, "SQLITE_PATH is required for sqlite")
		}
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER %q is not supported (use postgres or sqlite)", c.DBDriver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// PostgresDSN builds the key/value DSN understood by the pgx driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimeZone)
}

// RefreshEnabled reports whether a Redis store for refresh tokens is configured.
func (c *Config) RefreshEnabled() bool {
	return c.RedisAddr != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
