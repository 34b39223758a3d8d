package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	Media    Media    `mapstructure:"media"`
	Webhooks Webhooks `mapstructure:"webhooks"`
	Search   Search   `mapstructure:"search"`
	Feeds    Feeds    `mapstructure:"feeds"`
	Server   Server   `mapstructure:"server"`
	Auth     Auth     `mapstructure:"auth"`
}

// App holds general application configuration.
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
}

// AI holds generative model configuration.
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration.
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	ImageModel string `mapstructure:"image_model"`
	Timeout    string `mapstructure:"timeout"`
}

// Media holds image hosting configuration (Cloudinary unsigned uploads).
type Media struct {
	CloudName    string `mapstructure:"cloud_name"`
	APIKey       string `mapstructure:"api_key"`
	UploadPreset string `mapstructure:"upload_preset"`
	Folder       string `mapstructure:"folder"`
	Timeout      string `mapstructure:"timeout"`
}

// Webhooks holds the built-in defaults for the two outbound endpoints.
// The durable settings store overrides these per operator edit.
type Webhooks struct {
	QueueURL   string `mapstructure:"queue_url"`
	PostNowURL string `mapstructure:"post_now_url"`
	AuthToken  string `mapstructure:"auth_token"`
	Timeout    string `mapstructure:"timeout"`
}

// Search holds image search provider configuration.
type Search struct {
	Provider   string             `mapstructure:"provider"` // gemini, googlecse, mock
	MaxResults int                `mapstructure:"max_results"`
	Google     GoogleSearchConfig `mapstructure:"google"`
}

// GoogleSearchConfig holds Google Custom Search configuration for the
// optional googlecse image provider.
type GoogleSearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	SearchID string `mapstructure:"search_id"`
}

// Feeds holds the RSS discovery provider configuration.
type Feeds struct {
	Sources   []string `mapstructure:"sources"`
	UserAgent string   `mapstructure:"user_agent"`
	Timeout   string   `mapstructure:"timeout"`
	MaxItems  int      `mapstructure:"max_items"`
}

// Server holds HTTP server configuration.
type Server struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	ReadTimeout    string   `mapstructure:"read_timeout"`
	WriteTimeout   string   `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Auth holds the shared-password allow list for the editor session.
type Auth struct {
	Passwords []string `mapstructure:"passwords"`
}

var globalConfig *Config

// Load loads the configuration from a .env file, an optional YAML config
// file, environment variables, and built-in defaults, in that order of
// increasing precedence for env vars over file values.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".newsdesk")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets built-in configuration values. Webhook URLs and the
// auth token default to the production Make.com scenario endpoints so a
// fresh install can publish without any setup beyond the Gemini key.
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".newsdesk")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.image_model", "imagen-3.0-generate-002")
	viper.SetDefault("ai.gemini.timeout", "60s")

	// Media hosting defaults (unsigned upload preset)
	viper.SetDefault("media.cloud_name", "dukaroz3u")
	viper.SetDefault("media.api_key", "151158368369834")
	viper.SetDefault("media.upload_preset", "News_App")
	viper.SetDefault("media.folder", "news-automation-hub")
	viper.SetDefault("media.timeout", "60s")

	// Webhook defaults
	viper.SetDefault("webhooks.queue_url", "https://hook.eu2.make.com/mvsz33n18i6dl18xynls7ie9gnoxzghl")
	viper.SetDefault("webhooks.post_now_url", "https://hook.eu2.make.com/mvsz33n18i6dl18xynls7ie9gnoxzghl")
	viper.SetDefault("webhooks.auth_token", "xR@7!pZ2#qLd$Vm8^tYe&WgC*oUeXsKv")
	viper.SetDefault("webhooks.timeout", "30s")

	// Image search defaults
	viper.SetDefault("search.provider", "gemini")
	viper.SetDefault("search.max_results", 9)

	// Feed discovery defaults: trusted English-language Bangladeshi outlets
	viper.SetDefault("feeds.sources", []string{
		"https://www.thedailystar.net/rss.xml",
		"https://www.dhakatribune.com/feed",
		"https://www.tbsnews.net/top-news/rss.xml",
		"https://www.newagebd.net/feed",
	})
	viper.SetDefault("feeds.user_agent", "Newsdesk/1.0")
	viper.SetDefault("feeds.timeout", "30s")
	viper.SetDefault("feeds.max_items", 5)

	// Server defaults
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// Editorial access passwords
	viper.SetDefault("auth.passwords", []string{"Dhakadispatch11@", "Dhakadispatch@@11"})
}

// bindEnvironmentVariables sets up flexible environment variable binding.
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("media.cloud_name", []string{"CLOUDINARY_CLOUD_NAME"})
	bindEnvKeys("media.api_key", []string{"CLOUDINARY_API_KEY"})
	bindEnvKeys("media.upload_preset", []string{"CLOUDINARY_UPLOAD_PRESET"})

	bindEnvKeys("webhooks.queue_url", []string{"QUEUE_WEBHOOK_URL"})
	bindEnvKeys("webhooks.post_now_url", []string{"POST_NOW_WEBHOOK_URL"})
	bindEnvKeys("webhooks.auth_token", []string{"WEBHOOK_AUTH_TOKEN"})

	bindEnvKeys("search.provider", []string{"IMAGE_SEARCH_PROVIDER"})
	bindEnvKeys("search.google.api_key", []string{
		"GOOGLE_CUSTOM_SEARCH_API_KEY",
		"GOOGLE_CSE_API_KEY",
	})
	bindEnvKeys("search.google.search_id", []string{
		"GOOGLE_CUSTOM_SEARCH_ID",
		"GOOGLE_CSE_ID",
	})

	bindEnvKeys("app.debug", []string{"DEBUG", "NEWSDESK_DEBUG"})
}

// bindEnvKeys binds the first found environment variable to a viper key.
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig expands paths and validates duration strings.
func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}

	durations := map[string]string{
		"ai.gemini.timeout":    config.AI.Gemini.Timeout,
		"media.timeout":        config.Media.Timeout,
		"webhooks.timeout":     config.Webhooks.Timeout,
		"feeds.timeout":        config.Feeds.Timeout,
		"server.read_timeout":  config.Server.ReadTimeout,
		"server.write_timeout": config.Server.WriteTimeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present.
func validateConfig(config *Config) error {
	var errors []string

	switch config.Search.Provider {
	case "googlecse":
		if !isValidAPIKey(config.Search.Google.APIKey) || config.Search.Google.SearchID == "" {
			errors = append(errors, "Google Custom Search requires both API key and Search ID. Set GOOGLE_CUSTOM_SEARCH_API_KEY and GOOGLE_CUSTOM_SEARCH_ID")
		}
	case "gemini", "mock", "":
		// Gemini key presence is checked lazily by the gateway so that
		// commands that never touch the model still work.
	default:
		errors = append(errors, fmt.Sprintf("Unknown image search provider: %s. Supported: gemini, googlecse, mock", config.Search.Provider))
	}

	if len(config.Auth.Passwords) == 0 {
		errors = append(errors, "At least one editorial password must be configured under auth.passwords")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// GeminiTimeout returns the parsed Gemini call timeout.
func (c *Config) GeminiTimeout() time.Duration {
	return parseDurationOr(c.AI.Gemini.Timeout, 60*time.Second)
}

// MediaTimeout returns the parsed media upload timeout.
func (c *Config) MediaTimeout() time.Duration {
	return parseDurationOr(c.Media.Timeout, 60*time.Second)
}

// WebhookTimeout returns the parsed webhook dispatch timeout.
func (c *Config) WebhookTimeout() time.Duration {
	return parseDurationOr(c.Webhooks.Timeout, 30*time.Second)
}

// FeedTimeout returns the parsed feed fetch timeout.
func (c *Config) FeedTimeout() time.Duration {
	return parseDurationOr(c.Feeds.Timeout, 30*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// isValidAPIKey checks that an API key is set and not a placeholder.
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-google-key", "your-google-api-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing).
func Reset() {
	globalConfig = nil
	viper.Reset()
}
