// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type APIConfig struct {
	BaseURL        string `yaml:"base_url" env:"ASTRIN_API_URL"`
	RequestTimeout int    `yaml:"request_timeout" env:"ASTRIN_REQUEST_TIMEOUT"` // seconds, 0 = none
	RetryAttempts  int    `yaml:"retry_attempts" env:"ASTRIN_RETRY_ATTEMPTS"`
	RetryDelay     int    `yaml:"retry_delay" env:"ASTRIN_RETRY_DELAY"` // milliseconds
}

type FeedsConfig struct {
	ISSPollInterval int `yaml:"iss_poll_interval" env:"ASTRIN_ISS_POLL_INTERVAL"` // milliseconds
}

type ChatConfig struct {
	PersistHistory bool `yaml:"persist_history" env:"ASTRIN_PERSIST_HISTORY"`
	PersistTimeout int  `yaml:"persist_timeout" env:"ASTRIN_PERSIST_TIMEOUT"` // seconds
}

type ServerConfig struct {
	Addr            string   `yaml:"addr" env:"ASTRIN_ADDR"`
	AllowedOrigins  []string `yaml:"allowed_origins" env:"ASTRIN_ALLOWED_ORIGINS" envSeparator:","`
	DBPath          string   `yaml:"db_path" env:"ASTRIN_DB_PATH"`
	UpstreamTimeout int      `yaml:"upstream_timeout" env:"ASTRIN_UPSTREAM_TIMEOUT"` // seconds

	NASAAPIKey     string `yaml:"nasa_api_key" env:"NASA_API_KEY"`
	NASABaseURL    string `yaml:"nasa_base_url" env:"NASA_BASE_URL"`
	MarsWeatherURL string `yaml:"mars_weather_url" env:"MARS_WEATHER_URL"`
	ISSURL         string `yaml:"iss_url" env:"ISS_URL"`
	LaunchesURL    string `yaml:"launches_url" env:"SPACEX_LAUNCHES_URL"`

	TogetherAPIKey  string `yaml:"together_api_key" env:"TOGETHER_API_KEY"`
	TogetherBaseURL string `yaml:"together_base_url" env:"TOGETHER_BASE_URL"`
	ChatModel       string `yaml:"chat_model" env:"ASTRIN_CHAT_MODEL"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"ASTRIN_LOG_LEVEL"`
	File  string `yaml:"file" env:"ASTRIN_LOG_FILE"`
}

type Config struct {
	API    APIConfig    `yaml:"api"`
	Feeds  FeedsConfig  `yaml:"feeds"`
	Chat   ChatConfig   `yaml:"chat"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// Load reads the config file at ConfigPath, then applies environment
// overrides. A missing file yields the defaults.
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

func LoadFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		// Expand environment variables in config
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	// Apply defaults for unset values
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.RetryAttempts = 3
	cfg.API.RetryDelay = 1000 // 1 second
	cfg.Feeds.ISSPollInterval = 5000
	cfg.Chat.PersistHistory = true
	cfg.Chat.PersistTimeout = 10
	cfg.Server.Addr = ":8000"
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	cfg.Server.UpstreamTimeout = 30
	cfg.Server.NASAAPIKey = "DEMO_KEY"
	cfg.Server.NASABaseURL = "https://api.nasa.gov"
	cfg.Server.MarsWeatherURL = "https://mars.nasa.gov/rss/api/?feed=weather&category=msl&feedtype=json"
	cfg.Server.ISSURL = "http://api.open-notify.org/iss-now.json"
	cfg.Server.LaunchesURL = "https://api.spacexdata.com/v5/launches/upcoming"
	cfg.Server.TogetherBaseURL = "https://api.together.xyz/v1"
	cfg.Server.ChatModel = "meta-llama/Llama-3.3-70B-Instruct-Turbo-Free"
	cfg.Log.Level = "info"
	return cfg
}

func applyDefaults(cfg *Config) {
	d := defaultConfig()
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = d.API.BaseURL
	}
	if cfg.API.RetryAttempts == 0 {
		cfg.API.RetryAttempts = d.API.RetryAttempts
	}
	if cfg.API.RetryDelay == 0 {
		cfg.API.RetryDelay = d.API.RetryDelay
	}
	if cfg.Feeds.ISSPollInterval == 0 {
		cfg.Feeds.ISSPollInterval = d.Feeds.ISSPollInterval
	}
	if cfg.Chat.PersistTimeout == 0 {
		cfg.Chat.PersistTimeout = d.Chat.PersistTimeout
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = d.Server.Addr
	}
	if cfg.Server.UpstreamTimeout == 0 {
		cfg.Server.UpstreamTimeout = d.Server.UpstreamTimeout
	}
	if cfg.Server.NASAAPIKey == "" {
		cfg.Server.NASAAPIKey = d.Server.NASAAPIKey
	}
	if cfg.Server.NASABaseURL == "" {
		cfg.Server.NASABaseURL = d.Server.NASABaseURL
	}
	if cfg.Server.MarsWeatherURL == "" {
		cfg.Server.MarsWeatherURL = d.Server.MarsWeatherURL
	}
	if cfg.Server.ISSURL == "" {
		cfg.Server.ISSURL = d.Server.ISSURL
	}
	if cfg.Server.LaunchesURL == "" {
		cfg.Server.LaunchesURL = d.Server.LaunchesURL
	}
	if cfg.Server.TogetherBaseURL == "" {
		cfg.Server.TogetherBaseURL = d.Server.TogetherBaseURL
	}
	if cfg.Server.ChatModel == "" {
		cfg.Server.ChatModel = d.Server.ChatModel
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.API.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("api.request_timeout must not be negative, got %d", c.API.RequestTimeout))
	}
	if c.API.RetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("api.retry_attempts must be at least 1, got %d", c.API.RetryAttempts))
	}
	if c.API.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("api.retry_delay must not be negative, got %d", c.API.RetryDelay))
	}
	if c.Feeds.ISSPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("feeds.iss_poll_interval must be positive, got %d", c.Feeds.ISSPollInterval))
	}
	if c.Chat.PersistTimeout <= 0 {
		errs = append(errs, fmt.Errorf("chat.persist_timeout must be positive, got %d", c.Chat.PersistTimeout))
	}
	if c.Server.UpstreamTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.upstream_timeout must be positive, got %d", c.Server.UpstreamTimeout))
	}
	return errors.Join(errs...)
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeout) * time.Second
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.API.RetryDelay) * time.Millisecond
}

func (c *Config) ISSPollInterval() time.Duration {
	return time.Duration(c.Feeds.ISSPollInterval) * time.Millisecond
}

func (c *Config) PersistTimeout() time.Duration {
	return time.Duration(c.Chat.PersistTimeout) * time.Second
}

// UpstreamDeadline bounds one upstream feed request. Zero means unbounded.
func (c ServerConfig) UpstreamDeadline() time.Duration {
	if c.UpstreamTimeout <= 0 {
		return 0
	}
	return time.Duration(c.UpstreamTimeout) * time.Second
}

func ConfigPath() string {
	configDir, _ := os.UserConfigDir()
	if configDir == "" {
		configDir = os.ExpandEnv("$HOME/.config")
	}
	return filepath.Join(configDir, "astrin", "config.yaml")
}
