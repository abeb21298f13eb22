package config

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ServerPort         string   `mapstructure:"SERVER_PORT"`
	LogLevel           string   `mapstructure:"LOG_LEVEL"`
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	PostgresHost     string `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string `mapstructure:"POSTGRES_PORT"`
	PostgresUser     string `mapstructure:"POSTGRES_USER"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB       string `mapstructure:"POSTGRES_DB"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	Renderer        string   `mapstructure:"RENDERER"` // chromedp or rod
	BrowserHeadless bool     `mapstructure:"BROWSER_HEADLESS"`
	BrowserBin      string   `mapstructure:"BROWSER_BIN"`
	BrowserProxies  []string `mapstructure:"BROWSER_PROXIES"`

	NavigationTimeout time.Duration `mapstructure:"NAVIGATION_TIMEOUT"`
	SelectorTimeout   time.Duration `mapstructure:"SELECTOR_TIMEOUT"`
	ViewportWidth     int           `mapstructure:"VIEWPORT_WIDTH"`
	ViewportHeight    int           `mapstructure:"VIEWPORT_HEIGHT"`
	UserAgent         string        `mapstructure:"USER_AGENT"`

	RunLockTTL       time.Duration `mapstructure:"RUN_LOCK_TTL"`
	MaxParallelSites int           `mapstructure:"MAX_PARALLEL_SITES"`
	SitesFile        string        `mapstructure:"SITES_FILE"`
}

var defaults = map[string]any{
	"SERVER_PORT":          "5000",
	"LOG_LEVEL":            "info",
	"CORS_ALLOWED_ORIGINS": []string{"*"},
	"POSTGRES_HOST":        "localhost",
	"POSTGRES_PORT":        "5432",
	"POSTGRES_USER":        "user",
	"POSTGRES_PASSWORD":    "password",
	"POSTGRES_DB":          "catalog",
	"REDIS_ADDR":           "localhost:6379",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"RENDERER":             "chromedp",
	"BROWSER_HEADLESS":     true,
	"BROWSER_BIN":          "",
	"BROWSER_PROXIES":      []string{},
	"NAVIGATION_TIMEOUT":   30 * time.Second,
	"SELECTOR_TIMEOUT":     5 * time.Second,
	"VIEWPORT_WIDTH":       1280,
	"VIEWPORT_HEIGHT":      720,
	"USER_AGENT":           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"RUN_LOCK_TTL":         30 * time.Minute,
	"MAX_PARALLEL_SITES":   2,
	"SITES_FILE":           "",
}

// Load reads configuration from an optional .env file and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// The .env file is optional; production is configured purely through the environment.
	_ = v.ReadInConfig()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Renderer != "chromedp" && c.Renderer != "rod" {
		return eris.Errorf("config: RENDERER must be chromedp or rod, got %q", c.Renderer)
	}
	if c.NavigationTimeout <= 0 {
		return eris.New("config: NAVIGATION_TIMEOUT must be positive")
	}
	if c.SelectorTimeout <= 0 {
		return eris.New("config: SELECTOR_TIMEOUT must be positive")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return eris.New("config: viewport dimensions must be positive")
	}
	if c.UserAgent == "" {
		return eris.New("config: USER_AGENT cannot be empty")
	}
	if c.MaxParallelSites <= 0 {
		return eris.New("config: MAX_PARALLEL_SITES must be positive")
	}
	return nil
}

// PostgresDSN builds the pgx connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
}
