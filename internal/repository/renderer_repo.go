package repository

import (
	"context"
	"time"

	"github.com/user/catalog-crawler/internal/entity"
)

// WaitCondition tells Navigate when a page counts as loaded.
type WaitCondition int

const (
	// WaitNetworkIdle waits until the page has at most a couple of in-flight
	// requests left.
	WaitNetworkIdle WaitCondition = iota
	WaitLoad
)

type NavigateOptions struct {
	Timeout       time.Duration
	WaitCondition WaitCondition
}

type PageOptions struct {
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
}

// Renderer hands out browser sessions. Every acquired Session must be closed.
type Renderer interface {
	AcquireSession(ctx context.Context) (Session, error)
}

// Session is one browser instance, owned by a single run.
type Session interface {
	// OpenPage opens a new tab. Every opened Page must be closed.
	OpenPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single browser tab.
type Page interface {
	Configure(ctx context.Context, opts PageOptions) error
	// Navigate fails with ErrNavigationTimeout, ErrNavigationFailed or ErrPageCrashed.
	Navigate(ctx context.Context, url string, opts NavigateOptions) error
	// WaitForSelector fails with ErrSelectorTimeout when nothing matched in time.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	Snapshot(ctx context.Context) (*entity.PageSnapshot, error)
	Close() error
}
