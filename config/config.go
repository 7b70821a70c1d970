package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pickem-app/logging"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Authentication configuration
	Auth AuthConfig `json:"auth"`

	// External odds feed configuration
	Feed FeedConfig `json:"feed"`

	// Leaderboard cache configuration
	Cache CacheConfig `json:"cache"`

	// Application configuration
	App AppConfig `json:"app"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	Host         string        `json:"host"`
	Environment  string        `json:"environment"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	BehindProxy  bool          `json:"behind_proxy"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URI      string        `json:"uri"`
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
}

// AuthConfig holds session token configuration. HandoffSecret is shared with
// the identity-provider front end, which signs the login assertions with it.
type AuthConfig struct {
	JWTSecret     string        `json:"jwt_secret"`
	HandoffSecret string        `json:"handoff_secret"`
	TokenExpiry   time.Duration `json:"token_expiry"`
}

// FeedConfig holds the-odds-api settings
type FeedConfig struct {
	OddsAPIKey string        `json:"odds_api_key"`
	BaseURL    string        `json:"base_url"`
	DaysFrom   int           `json:"days_from"`
	Regions    string        `json:"regions"`
	Timeout    time.Duration `json:"timeout"`
}

// CacheConfig holds the optional Redis leaderboard cache settings
type CacheConfig struct {
	RedisURL string        `json:"redis_url"`
	TTL      time.Duration `json:"ttl"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	CurrentSeason  int      `json:"current_season"`
	IsDevelopment  bool     `json:"is_development"`
	SchedulePath   string   `json:"schedule_path"`
	UpdaterEnabled bool     `json:"updater_enabled"`
	ScoreSchedules []string `json:"score_schedules"`
	OddsSchedule   string   `json:"odds_schedule"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logging.Debugf("Could not load .env file: %v", err)
	}

	environment := getEnv("ENVIRONMENT", "development")
	isDevelopment := strings.ToLower(environment) == "development"

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Environment:  environment,
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			BehindProxy:  getBoolEnv("BEHIND_PROXY", false),
		},
		Database: DatabaseConfig{
			URI:      getEnv("MONGO_URI", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "27017"),
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pickem"),
			Timeout:  getDurationEnv("DB_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Prefix:      getEnv("LOG_PREFIX", "pickem"),
			EnableColor: getBoolEnv("LOG_COLOR", true),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
			HandoffSecret: getEnv("AUTH_HANDOFF_SECRET", ""),
			TokenExpiry:   getDurationEnv("TOKEN_EXPIRY", 30*24*time.Hour),
		},
		Feed: FeedConfig{
			OddsAPIKey: getEnv("ODDS_API_KEY", ""),
			BaseURL:    getEnv("ODDS_API_BASE_URL", "https://api.the-odds-api.com"),
			DaysFrom:   getIntEnv("ODDS_DAYS_FROM", 3),
			Regions:    getEnv("ODDS_REGIONS", "us"),
			Timeout:    getDurationEnv("ODDS_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			TTL:      getDurationEnv("LEADERBOARD_CACHE_TTL", 5*time.Minute),
		},
		App: AppConfig{
			CurrentSeason:  getIntEnv("CURRENT_SEASON", 2025),
			IsDevelopment:  isDevelopment,
			SchedulePath:   getEnv("SCHEDULE_PATH", "data/schedule.json"),
			UpdaterEnabled: getBoolEnv("UPDATER_ENABLED", false),
			ScoreSchedules: getListEnv("SCORE_SCHEDULES", []string{"0 8 * * 5,1", "0 22 * * 0,1"}),
			OddsSchedule:   getEnv("ODDS_SCHEDULE", "0 12 * * *"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.URI == "" && (c.Database.Host == "" || c.Database.Port == "") {
		return fmt.Errorf("database host and port are required when MONGO_URI is not set")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.JWTSecret == defaultJWTSecret && !c.App.IsDevelopment {
		return fmt.Errorf("JWT secret must be changed in production")
	}
	if c.Auth.HandoffSecret == "" && !c.App.IsDevelopment {
		return fmt.Errorf("auth handoff secret is required in production")
	}
	if c.Auth.HandoffSecret != "" && c.Auth.HandoffSecret == c.Auth.JWTSecret {
		return fmt.Errorf("auth handoff secret must differ from the JWT secret")
	}
	if c.Auth.TokenExpiry <= 0 {
		return fmt.Errorf("token expiry must be positive, got: %v", c.Auth.TokenExpiry)
	}

	if c.Feed.DaysFrom < 1 || c.Feed.DaysFrom > 3 {
		return fmt.Errorf("odds days-from must be between 1 and 3, got: %d", c.Feed.DaysFrom)
	}

	if c.App.CurrentSeason < 2020 || c.App.CurrentSeason > 2035 {
		return fmt.Errorf("current season must be between 2020 and 2035, got: %d", c.App.CurrentSeason)
	}

	specs := append([]string{}, c.App.ScoreSchedules...)
	if c.App.OddsSchedule != "" {
		specs = append(specs, c.App.OddsSchedule)
	}
	for _, spec := range specs {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid updater schedule %q: %w", spec, err)
		}
	}

	return nil
}

// IsCacheConfigured returns true if a Redis URL is set
func (c *Config) IsCacheConfigured() bool {
	return c.Cache.RedisURL != ""
}

// IsFeedConfigured returns true if an odds API key is set
func (c *Config) IsFeedConfigured() bool {
	return c.Feed.OddsAPIKey != ""
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LogConfiguration logs the current configuration (without sensitive data)
func (c *Config) LogConfiguration() {
	logging.Info("=== Application Configuration ===")
	logging.Infof("Server: %s (Environment: %s)", c.GetServerAddress(), c.Server.Environment)
	if c.Database.URI != "" {
		logging.Infof("Database: URI configured, name=%s", c.Database.Database)
	} else {
		logging.Infof("Database: %s:%s/%s (Username: %s, Auth: %t)",
			c.Database.Host, c.Database.Port, c.Database.Database,
			c.Database.Username, c.Database.Password != "")
	}
	logging.Infof("Logging: Level=%s, Prefix=%s, Color=%t",
		c.Logging.Level, c.Logging.Prefix, c.Logging.EnableColor)
	logging.Infof("Auth: TokenExpiry=%v, DefaultSecret=%t, Handoff=%t",
		c.Auth.TokenExpiry, c.Auth.JWTSecret == defaultJWTSecret, c.Auth.HandoffSecret != "")
	if c.Auth.HandoffSecret == "" {
		logging.Warnf("AUTH_HANDOFF_SECRET is not set; every login will be refused")
	}
	logging.Infof("Feed: Configured=%t, BaseURL=%s, DaysFrom=%d, Regions=%s",
		c.IsFeedConfigured(), c.Feed.BaseURL, c.Feed.DaysFrom, c.Feed.Regions)
	logging.Infof("Cache: Configured=%t, TTL=%v", c.IsCacheConfigured(), c.Cache.TTL)
	logging.Infof("App: Season=%d, Development=%t, Schedule=%s, Updater=%t (scores=%v, odds=%q)",
		c.App.CurrentSeason, c.App.IsDevelopment, c.App.SchedulePath,
		c.App.UpdaterEnabled, c.App.ScoreSchedules, c.App.OddsSchedule)
	logging.Info("================================")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getListEnv splits a semicolon-separated value; cron specs contain commas
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
