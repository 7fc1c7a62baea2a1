package domain

import (
	"context"
	"time"
)

// BrowserLauncher starts one browser session per call.
type BrowserLauncher interface {
	Launch(ctx context.Context) (BrowserSession, error)
}

// BrowserSession is a single page in a running browser. Implementations are
// not safe for concurrent use.
type BrowserSession interface {
	// Navigate loads url and waits until the network is mostly idle or
	// timeout elapses.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// ClickFirst clicks the first element matching any selector, in order.
	// It reports the matched selector, or "" when none matched.
	ClickFirst(ctx context.Context, selectors []string) (string, error)
	// ScrollBy scrolls the review pane (or the document) by dy pixels.
	ScrollBy(ctx context.Context, dy int) error
	// Snapshot returns the rendered DOM and the current page location.
	Snapshot(ctx context.Context) (html string, location string, err error)
	Close() error
}

type PlacesClient interface {
	Autocomplete(ctx context.Context, input string) ([]byte, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ScrapeRun is audit metadata for one pipeline execution. Review content is
// not part of it.
type ScrapeRun struct {
	ID        string
	TargetURL string
	Strategy  string
	Count     int
	Synthetic bool
	NavErr    string
	Duration  time.Duration
	CreatedAt time.Time
}

type RunRecorder interface {
	RecordRun(ctx context.Context, r ScrapeRun) error
	ListRuns(ctx context.Context, limit int) ([]ScrapeRun, error)
}
