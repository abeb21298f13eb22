package repository

import "errors"

var (
	// ErrSessionUnavailable means no browser session could be started. It is
	// the only error that fails a whole run.
	ErrSessionUnavailable = errors.New("browser session unavailable")

	ErrNavigationTimeout = errors.New("navigation timed out")
	ErrNavigationFailed  = errors.New("navigation failed")
	ErrPageCrashed       = errors.New("page crashed")
	// ErrSelectorTimeout is soft: the page simply has no listings yet.
	ErrSelectorTimeout = errors.New("selector wait timed out")

	ErrNotFound = errors.New("record not found")
)
