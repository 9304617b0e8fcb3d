package config

import "time"

// Config holds runtime configuration for the user service.
type Config struct {
	Environment    string
	LogLevel       string
	Addr           string
	DatabaseURL    string
	MigrationsDir  string
	MetricsAddr    string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodyBytes   int
	RateLimit      int
	RateWindow     time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
}

// Load constructs a Config from environment variables.
func Load() Config {
	return Config{
		Environment:    GetString("APP_ENV", "development"),
		LogLevel:       GetString("LOG_LEVEL", "info"),
		Addr:           GetString("USERD_ADDR", ":8080"),
		DatabaseURL:    GetString("DATABASE_URL", "postgres://userd:userd@db:5432/userd?sslmode=disable"),
		MigrationsDir:  GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		MetricsAddr:    GetString("METRICS_ADDR", ""),
		ReadTimeout:    time.Duration(GetInt("READ_TIMEOUT_SECONDS", 10)) * time.Second,
		WriteTimeout:   time.Duration(GetInt("WRITE_TIMEOUT_SECONDS", 10)) * time.Second,
		IdleTimeout:    time.Duration(GetInt("IDLE_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxHeaderBytes: GetInt("MAX_HEADER_BYTES", 16<<10),
		MaxBodyBytes:   GetInt("MAX_BODY_BYTES", 1<<20),
		RateLimit:      GetInt("RATE_LIMIT_PER_WINDOW", 0),
		RateWindow:     time.Duration(GetInt("RATE_WINDOW_SECONDS", 60)) * time.Second,
		RedisAddr:      GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RedisPassword:  GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RedisDB:        GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}
