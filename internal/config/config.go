package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	OMDB     OMDBConfig
	Logging  LoggingConfig
	Import   ImportConfig
}

type ServerConfig struct {
	Env            string
	Port           string
	AllowedOrigins []string
	DetailCacheTTL time.Duration
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TLS      bool
}

type OMDBConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
	Dir    string
}

type ImportConfig struct {
	TitlesFile string
	Delay      time.Duration
}

// Load reads environment variables and returns a Config struct
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Env:            getEnv("APP_ENV", "local"),
			Port:           getEnv("PORT", "5000"),
			AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
			DetailCacheTTL: getDuration("DETAIL_CACHE_TTL", 6*time.Hour),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       int32(getInt("DATABASE_MAX_CONNS", 0)),
			MinConns:       int32(getInt("DATABASE_MIN_CONNS", 0)),
			ConnectTimeout: getDuration("DATABASE_CONNECT_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			TLS:      getEnv("REDIS_TLS", "false") == "true",
		},
		OMDB: OMDBConfig{
			APIKey:  getEnv("OMDB_API_KEY", ""),
			BaseURL: getEnv("OMDB_URL", "https://www.omdbapi.com/"),
			Timeout: getDuration("OMDB_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
			Dir:    getEnv("LOG_DIR", ""),
		},
		Import: ImportConfig{
			TitlesFile: getEnv("IMPORT_TITLES_FILE", ""),
			Delay:      getDuration("IMPORT_DELAY", 100*time.Millisecond),
		},
	}

	// Validate required fields
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.OMDB.APIKey == "" {
		return nil, fmt.Errorf("OMDB_API_KEY is required")
	}
	if cfg.Database.MaxConns < 0 || cfg.Database.MinConns < 0 {
		return nil, fmt.Errorf("DATABASE_MAX_CONNS and DATABASE_MIN_CONNS must not be negative")
	}
	if cfg.Import.Delay < 0 {
		return nil, fmt.Errorf("IMPORT_DELAY must not be negative")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getDuration accepts Go duration strings ("250ms") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// IsDevelopment returns true if running in development/local mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "local" || c.Server.Env == "development"
}

// RedisAddr returns the Redis address in host:port format
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
