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
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Esmo      EsmoConfig
	Hikvision HikvisionConfig
	Device    DeviceConfig
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	Automigrate bool
}

// JWTConfig holds access token settings
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

// EsmoConfig holds ESMO portal polling settings
type EsmoConfig struct {
	Enabled        bool
	BaseURL        string
	User           string
	Pass           string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	SyncTimeout    time.Duration
	LoginRetries   int
	BackfillPages  int
	OKWindowHours  int
}

type HikvisionConfig struct {
	InHosts  []string
	OutHosts []string

	// ISAPI credentials, shared across terminals. Used only by the roster
	// sync; the event path is push-only.
	User string
	Pass string
}

type DeviceConfig struct {
	ControlPassword string
	CheckInterval   time.Duration
}

func Load() (*Config, error) {
	// A missing .env file is fine in containers where everything comes from
	// real environment variables.
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "minetrack"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "minetrack_db"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		Automigrate: getEnvBool("DB_AUTOMIGRATE", true),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", "http://localhost:5173"),
	}

	jwtExpiration, err := time.ParseDuration(getEnv("JWT_EXPIRATION_TIME", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:     getEnv("JWT_SECRET_KEY", ""),
		Expiration: jwtExpiration,
	}

	config.Esmo = EsmoConfig{
		Enabled:        getEnvBool("ESMO_ENABLED", false),
		BaseURL:        getEnv("ESMO_BASE_URL", "https://192.168.8.10/cab/"),
		User:           getEnv("ESMO_USER", "admin"),
		Pass:           getEnv("ESMO_PASS", ""),
		PollInterval:   getEnvDuration("ESMO_POLL_INTERVAL", 60*time.Second),
		RequestTimeout: getEnvDuration("ESMO_REQUEST_TIMEOUT", 20*time.Second),
		SyncTimeout:    getEnvDuration("ESMO_SYNC_TIMEOUT", 120*time.Second),
		LoginRetries:   getEnvInt("ESMO_LOGIN_RETRIES", 2),
		BackfillPages:  getEnvInt("ESMO_BACKFILL_MAX_PAGES", 2),
		OKWindowHours:  getEnvInt("ESMO_OK_WINDOW_HOURS", 6),
	}

	// ESMO polls slower than 10s would hammer the portal's session handling.
	if config.Esmo.PollInterval < 10*time.Second {
		config.Esmo.PollInterval = 10 * time.Second
	}

	config.Hikvision = HikvisionConfig{
		InHosts:  getEnvSlice("HIKVISION_IN_HOSTS", ""),
		OutHosts: getEnvSlice("HIKVISION_OUT_HOSTS", ""),
		User:     getEnv("HIKVISION_USER", "admin"),
		Pass:     getEnv("HIKVISION_PASS", ""),
	}

	config.Device = DeviceConfig{
		ControlPassword: getEnv("DEVICE_CONTROL_PASSWORD", ""),
		CheckInterval:   getEnvDuration("DEVICE_CHECK_INTERVAL", 60*time.Second),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Esmo.Enabled && c.Esmo.Pass == "" {
		return fmt.Errorf("ESMO_PASS is required when ESMO_ENABLED is true")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
