package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, "chromedp", cfg.Renderer)
	assert.Equal(t, 30*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, 5*time.Second, cfg.SelectorTimeout)
	assert.Equal(t, 1280, cfg.ViewportWidth)
	assert.Equal(t, 720, cfg.ViewportHeight)
	assert.True(t, cfg.BrowserHeadless)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RENDERER", "rod")
	t.Setenv("NAVIGATION_TIMEOUT", "45s")
	t.Setenv("MAX_PARALLEL_SITES", "4")
	t.Setenv("POSTGRES_DB", "shop")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test,https://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "rod", cfg.Renderer)
	assert.Equal(t, 45*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, 4, cfg.MaxParallelSites)
	assert.Contains(t, cfg.PostgresDSN(), "/shop?sslmode=disable")
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidRenderer(t *testing.T) {
	t.Setenv("RENDERER", "selenium")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RENDERER")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Renderer:          "chromedp",
			NavigationTimeout: time.Second,
			SelectorTimeout:   time.Second,
			ViewportWidth:     10,
			ViewportHeight:    10,
			UserAgent:         "ua",
			MaxParallelSites:  1,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero navigation timeout", func(c *Config) { c.NavigationTimeout = 0 }},
		{"zero selector timeout", func(c *Config) { c.SelectorTimeout = 0 }},
		{"zero viewport", func(c *Config) { c.ViewportWidth = 0 }},
		{"empty user agent", func(c *Config) { c.UserAgent = "" }},
		{"no parallelism", func(c *Config) { c.MaxParallelSites = 0 }},
	}

	require.NoError(t, base().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
