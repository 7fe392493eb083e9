package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents application configuration
type Config struct {
	// Lark configuration
	Lark LarkConfig

	// Assistant configuration (optional)
	Assistant AssistantConfig

	// Bot configuration
	Bot BotConfig

	// Store configuration
	Store StoreConfig

	// Poll configuration
	Poll PollConfig

	// Dashboard configuration
	Dashboard DashboardConfig

	// Debug mode
	Debug bool
}

// LarkConfig contains Lark configuration
type LarkConfig struct {
	AppID     string
	AppSecret string
	ChatID    string
}

// AssistantConfig contains assistant session configuration
type AssistantConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	SystemPrompt   string
	TimeoutSeconds int
}

// BotConfig contains the bot's room identity
type BotConfig struct {
	Alias string
}

// StoreConfig contains persistence configuration
type StoreConfig struct {
	DBPath string
}

// PollConfig contains polling loop configuration
type PollConfig struct {
	IntervalSeconds int
}

// DashboardConfig contains reporting API configuration
type DashboardConfig struct {
	Port     int
	Timezone string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Message DB path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".roomscribe", "chat.db")
	}

	// Poll interval
	pollInterval := 5
	if val := os.Getenv("POLL_INTERVAL_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			pollInterval = parsed
		}
	}

	// Assistant exchange timeout
	askTimeout := 120
	if val := os.Getenv("ASSISTANT_TIMEOUT_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			askTimeout = parsed
		}
	}

	// Dashboard port
	dashboardPort := 4438
	if val := os.Getenv("DASHBOARD_PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			dashboardPort = parsed
		}
	}

	timezone := os.Getenv("DASHBOARD_TIMEZONE")
	if timezone == "" {
		timezone = "Europe/Rome"
	}

	alias := os.Getenv("BOT_ALIAS")
	if alias == "" {
		alias = "bot"
	}

	return &Config{
		Lark: LarkConfig{
			AppID:     os.Getenv("LARK_APP_ID"),
			AppSecret: os.Getenv("LARK_APP_SECRET"),
			ChatID:    os.Getenv("LARK_CHAT_ID"),
		},
		Assistant: AssistantConfig{
			APIKey:         os.Getenv("ASSISTANT_API_KEY"),
			BaseURL:        os.Getenv("ASSISTANT_BASE_URL"),
			Model:          os.Getenv("ASSISTANT_MODEL"),
			SystemPrompt:   os.Getenv("ASSISTANT_SYSTEM_PROMPT"),
			TimeoutSeconds: askTimeout,
		},
		Bot: BotConfig{
			Alias: alias,
		},
		Store: StoreConfig{
			DBPath: dbPath,
		},
		Poll: PollConfig{
			IntervalSeconds: pollInterval,
		},
		Dashboard: DashboardConfig{
			Port:     dashboardPort,
			Timezone: timezone,
		},
		Debug: os.Getenv("DEBUG") == "true",
	}
}

// PollInterval returns the polling interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// AskTimeout returns the assistant exchange timeout as a duration
func (c *Config) AskTimeout() time.Duration {
	return time.Duration(c.Assistant.TimeoutSeconds) * time.Second
}

// Location resolves the dashboard timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Lark.AppID == "" || c.Lark.AppSecret == "" {
		return &ConfigError{Field: "LARK_APP_ID/LARK_APP_SECRET", Message: "required"}
	}
	if c.Lark.ChatID == "" {
		return &ConfigError{Field: "LARK_CHAT_ID", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
