package browser

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
)

const idleEvent = "networkAlmostIdle"

type docKey struct {
	frame  cdp.FrameID
	loader cdp.LoaderID
}

// idleWaiter records which documents reached network idle. Events can arrive
// before the navigation reports its ids, so they are kept rather than matched
// on arrival.
type idleWaiter struct {
	mu     sync.Mutex
	seen   map[docKey]bool
	notify chan struct{}
}

func newIdleWaiter() *idleWaiter {
	return &idleWaiter{seen: make(map[docKey]bool), notify: make(chan struct{}, 1)}
}

func (w *idleWaiter) observe(e *page.EventLifecycleEvent) {
	if e == nil || e.Name != idleEvent {
		return
	}
	w.mu.Lock()
	w.seen[docKey{frame: e.FrameID, loader: e.LoaderID}] = true
	w.mu.Unlock()
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *idleWaiter) reached(frame cdp.FrameID, loader cdp.LoaderID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seen[docKey{frame: frame, loader: loader}]
}

// wait blocks until the given document went idle or ctx ends.
func (w *idleWaiter) wait(ctx context.Context, frame cdp.FrameID, loader cdp.LoaderID) error {
	for {
		if w.reached(frame, loader) {
			return nil
		}
		select {
		case <-w.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
