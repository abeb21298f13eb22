package entity

import "time"

// CategoryTarget is one listing page crawled within a run.
type CategoryTarget struct {
	URL string `mapstructure:"url" yaml:"url"`
	// MaxWait overrides the default listing-selector wait when non-zero.
	MaxWait time.Duration `mapstructure:"max_wait" yaml:"max_wait"`
}

// SelectorSet holds the CSS selectors used to pull listings out of a page.
type SelectorSet struct {
	Listing     string `mapstructure:"listing" yaml:"listing"`
	ProductLink string `mapstructure:"product_link" yaml:"product_link"`
	Title       string `mapstructure:"title" yaml:"title"`
	Price       string `mapstructure:"price" yaml:"price"`
	Image       string `mapstructure:"image" yaml:"image"`
}

// SiteConfig is everything site-specific the engine needs.
type SiteConfig struct {
	Name        string           `mapstructure:"name" yaml:"name"`
	BaseURL     string           `mapstructure:"base_url" yaml:"base_url"`
	ProductPath string           `mapstructure:"product_path" yaml:"product_path"`
	Targets     []CategoryTarget `mapstructure:"targets" yaml:"targets"`
	Selectors   SelectorSet      `mapstructure:"selectors" yaml:"selectors"`
}
