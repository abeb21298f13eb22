package proxy

import (
	"net/url"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
)

// Rotator hands out browser proxies round-robin. A Rotator with no proxies
// always returns "", meaning a direct connection.
type Rotator struct {
	mu      sync.Mutex
	proxies []string
	next    int
}

// NewRotator validates every proxy URL up front so a bad entry fails at
// startup instead of in the middle of a run.
func NewRotator(proxies []string) (*Rotator, error) {
	r := &Rotator{}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		u, err := url.Parse(p)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, eris.Errorf("invalid proxy %q", p)
		}
		r.proxies = append(r.proxies, p)
	}
	return r, nil
}

// Next returns the proxy for the next browser session.
func (r *Rotator) Next() string {
	if r == nil || len(r.proxies) == 0 {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.proxies[r.next]
	r.next = (r.next + 1) % len(r.proxies)
	return p
}

// Len reports how many proxies are rotated.
func (r *Rotator) Len() int {
	if r == nil {
		return 0
	}
	return len(r.proxies)
}
