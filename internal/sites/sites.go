// Package sites holds the per-site crawl configuration: base URL, category
// targets and the selectors used against their rendered pages.
package sites

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"

	"github.com/user/catalog-crawler/internal/entity"
)

// shopifySelectors fits the storefront theme the supported sites share.
var shopifySelectors = entity.SelectorSet{
	Listing:     `a[href*="/products/"], .product-item, [data-product]`,
	ProductLink: `a[href*="/products/"]`,
	Title:       `h2, h3, .product-title, [data-product-title]`,
	Price:       `.price, [data-price], .product-price`,
	Image:       `img`,
}

func storefront(name, baseURL string, collections ...string) entity.SiteConfig {
	targets := make([]entity.CategoryTarget, 0, len(collections))
	for _, c := range collections {
		targets = append(targets, entity.CategoryTarget{URL: baseURL + "/collections/" + c})
	}
	return entity.SiteConfig{
		Name:        name,
		BaseURL:     baseURL,
		ProductPath: "/products/",
		Targets:     targets,
		Selectors:   shopifySelectors,
	}
}

// Builtin returns the sites supported out of the box.
func Builtin() []entity.SiteConfig {
	return []entity.SiteConfig{
		storefront("snitch", "https://www.snitch.com", "new-arrivals", "mens", "womens", "basics"),
		storefront("rarerabit", "https://www.thehouseofrare.com", "new-arrivals", "shirts", "t-shirts", "trousers"),
		storefront("offduety", "https://offduty.in", "new-arrivals", "men", "women", "bestsellers"),
	}
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// Key normalises a website name into a registry key: "Rare-Rabit" -> "rarerabit".
func Key(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(name), "")
}

// Registry maps website names to their SiteConfig.
type Registry struct {
	mu    sync.RWMutex
	sites map[string]entity.SiteConfig
}

func NewRegistry(configs ...entity.SiteConfig) *Registry {
	r := &Registry{sites: make(map[string]entity.SiteConfig, len(configs))}
	for _, c := range configs {
		r.Register(c)
	}
	return r
}

// Register adds cfg, replacing any site with the same key.
func (r *Registry) Register(cfg entity.SiteConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sites[Key(cfg.Name)] = cfg
}

func (r *Registry) Lookup(name string) (entity.SiteConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.sites[Key(name)]
	return cfg, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sites))
	for k := range r.sites {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LoadFile reads extra site configs from a YAML file with a top-level `sites`
// list. Missing selectors default to the storefront set and a missing
// product_path defaults to "/products/".
func LoadFile(path string) ([]entity.SiteConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, eris.Wrapf(err, "sites: read %s", path)
	}

	var file struct {
		Sites []entity.SiteConfig `mapstructure:"sites"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, eris.Wrapf(err, "sites: decode %s", path)
	}

	for i := range file.Sites {
		if err := normalize(&file.Sites[i]); err != nil {
			return nil, eris.Wrapf(err, "sites: entry %d in %s", i, path)
		}
	}
	return file.Sites, nil
}

func normalize(cfg *entity.SiteConfig) error {
	if cfg.Name == "" {
		return eris.New("name is required")
	}
	if cfg.BaseURL == "" {
		return eris.Errorf("%s: base_url is required", cfg.Name)
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if len(cfg.Targets) == 0 {
		return eris.Errorf("%s: at least one target is required", cfg.Name)
	}
	if cfg.ProductPath == "" {
		cfg.ProductPath = "/products/"
	}
	s := &cfg.Selectors
	if s.Listing == "" {
		s.Listing = shopifySelectors.Listing
	}
	if s.ProductLink == "" {
		s.ProductLink = shopifySelectors.ProductLink
	}
	if s.Title == "" {
		s.Title = shopifySelectors.Title
	}
	if s.Price == "" {
		s.Price = shopifySelectors.Price
	}
	if s.Image == "" {
		s.Image = shopifySelectors.Image
	}
	return nil
}
