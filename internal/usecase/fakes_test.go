package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/user/catalog-crawler/internal/entity"
	"github.com/user/catalog-crawler/internal/repository"
)

// pageScript scripts what a fake page does once navigated to a URL.
type pageScript struct {
	navErr  error
	waitErr error
	snapErr error
	html    string
}

type fakeRenderer struct {
	acquireErr error
	session    *fakeSession
	acquired   int
}

func (r *fakeRenderer) AcquireSession(ctx context.Context) (repository.Session, error) {
	r.acquired++
	if r.acquireErr != nil {
		return nil, r.acquireErr
	}
	return r.session, nil
}

type fakeSession struct {
	mu      sync.Mutex
	scripts map[string]pageScript
	openErr error
	onOpen  func(n int) // called with the 1-based page number before opening
	opened  int
	closed  int // pages closed
	visited []string
	waits   []time.Duration
	pageCfg []repository.PageOptions
	ended   bool
}

func newFakeSession(scripts map[string]pageScript) *fakeSession {
	return &fakeSession{scripts: scripts}
}

func (s *fakeSession) OpenPage(ctx context.Context) (repository.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	if s.onOpen != nil {
		s.onOpen(s.opened + 1)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.opened++
	return &fakePage{session: s}, nil
}

func (s *fakeSession) Close() error {
	s.ended = true
	return nil
}

type fakePage struct {
	session *fakeSession
	url     string
}

func (p *fakePage) Configure(ctx context.Context, opts repository.PageOptions) error {
	p.session.pageCfg = append(p.session.pageCfg, opts)
	return nil
}

func (p *fakePage) Navigate(ctx context.Context, url string, opts repository.NavigateOptions) error {
	p.url = url
	p.session.visited = append(p.session.visited, url)
	return p.session.scripts[url].navErr
}

func (p *fakePage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	p.session.waits = append(p.session.waits, timeout)
	return p.session.scripts[p.url].waitErr
}

func (p *fakePage) Snapshot(ctx context.Context) (*entity.PageSnapshot, error) {
	sc := p.session.scripts[p.url]
	if sc.snapErr != nil {
		return nil, sc.snapErr
	}
	return &entity.PageSnapshot{URL: p.url, HTML: sc.html}, nil
}

func (p *fakePage) Close() error {
	p.session.mu.Lock()
	defer p.session.mu.Unlock()
	p.session.closed++
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	failOn   map[string]error
	writes   int
}

func newFakeProductRepo(existing ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[string]*entity.Product{}, failOn: map[string]error{}}
	for _, p := range existing {
		r.products[p.URL] = p
	}
	return r
}

func (r *fakeProductRepo) Upsert(ctx context.Context, websiteID string, l entity.CanonicalListing) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failOn[l.URL]; err != nil {
		return false, err
	}
	r.writes++
	if p, ok := r.products[l.URL]; ok {
		p.Price = l.Price
		p.ImageURL = l.ImageURL
		return false, nil
	}
	r.products[l.URL] = &entity.Product{
		ID:        int64(len(r.products) + 1),
		WebsiteID: websiteID,
		Title:     l.Title,
		URL:       l.URL,
		Price:     l.Price,
		ImageURL:  l.ImageURL,
	}
	return true, nil
}

// productCard renders one storefront tile.
func productCard(href, title, price, img string) string {
	var b strings.Builder
	b.WriteString(`<div class="product-item">`)
	fmt.Fprintf(&b, `<a href="%s">`, href)
	if img != "" {
		fmt.Fprintf(&b, `<img src="%s">`, img)
	}
	if title != "" {
		fmt.Fprintf(&b, `<h3 class="product-title">%s</h3>`, title)
	}
	b.WriteString(`</a>`)
	if price != "" {
		fmt.Fprintf(&b, `<span class="price">%s</span>`, price)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func page(cards ...string) string {
	return "<html><body><main>" + strings.Join(cards, "\n") + "</main></body></html>"
}

func testSite(targets ...string) entity.SiteConfig {
	site := entity.SiteConfig{
		Name:        "snitch",
		BaseURL:     "https://www.snitch.com",
		ProductPath: "/products/",
		Selectors: entity.SelectorSet{
			Listing:     `.product-item`,
			ProductLink: `a[href*="/products/"]`,
			Title:       `h2, h3, .product-title, [data-product-title]`,
			Price:       `.price, [data-price], .product-price`,
			Image:       `img`,
		},
	}
	for _, t := range targets {
		site.Targets = append(site.Targets, entity.CategoryTarget{URL: t})
	}
	return site
}

func price(v float64) *float64 { return &v }
