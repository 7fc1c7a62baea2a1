package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const defaultActionTimeout = 15 * time.Second

// Session is one tab in a browser started by Launcher.
type Session struct {
	ctx           context.Context
	cancelTab     context.CancelFunc
	cancelAlloc   context.CancelFunc
	actionTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// derive returns a context for one action: a child of the tab context that is
// also cancelled when ctx is, bounded by d.
func (s *Session) derive(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(s.ctx, d)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// Navigate loads url and waits for networkAlmostIdle on the document this
// navigation created. Events from child frames or the previous document are
// ignored.
func (s *Session) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	runCtx, cancel := s.derive(ctx, timeout)
	defer cancel()

	idle := newIdleWaiter()
	listenCtx, stopListen := context.WithCancel(runCtx)
	defer stopListen()
	chromedp.ListenTarget(listenCtx, func(ev any) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok {
			idle.observe(e)
		}
	})

	var (
		frameID  cdp.FrameID
		loaderID cdp.LoaderID
	)
	if err := chromedp.Run(runCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			fid, lid, errText, err := page.Navigate(url).Do(ctx)
			if err != nil {
				return err
			}
			if errText != "" {
				return errors.New(errText)
			}
			frameID, loaderID = fid, lid
			return nil
		}),
	); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}

	// same-document navigations create no loader and fire no lifecycle events
	if loaderID == "" {
		return nil
	}
	if err := idle.wait(runCtx, frameID, loaderID); err != nil {
		return fmt.Errorf("navigate %s: waiting for network idle: %w", url, err)
	}
	return nil
}

func (s *Session) ClickFirst(ctx context.Context, selectors []string) (string, error) {
	if len(selectors) == 0 {
		return "", nil
	}
	b, err := json.Marshal(selectors)
	if err != nil {
		return "", err
	}
	runCtx, cancel := s.derive(ctx, s.actionTimeout)
	defer cancel()

	idx := -1
	if err := chromedp.Run(runCtx, chromedp.Evaluate(fmt.Sprintf(clickFirstJS, b), &idx)); err != nil {
		return "", fmt.Errorf("click: %w", err)
	}
	if idx < 0 || idx >= len(selectors) {
		return "", nil
	}
	return selectors[idx], nil
}

func (s *Session) ScrollBy(ctx context.Context, dy int) error {
	runCtx, cancel := s.derive(ctx, s.actionTimeout)
	defer cancel()

	var pane bool
	if err := chromedp.Run(runCtx, chromedp.Evaluate(fmt.Sprintf(scrollJS, dy), &pane)); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return nil
}

// Snapshot serialises the live DOM after client-side rendering.
func (s *Session) Snapshot(ctx context.Context) (string, string, error) {
	runCtx, cancel := s.derive(ctx, s.actionTimeout)
	defer cancel()

	var html, loc string
	if err := chromedp.Run(runCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&loc),
	); err != nil {
		return "", "", fmt.Errorf("snapshot: %w", err)
	}
	return html, loc, nil
}

// Close shuts the tab and the browser process. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		err := chromedp.Cancel(s.ctx)
		s.cancelTab()
		s.cancelAlloc()
		s.closeErr = teardownErr(err)
	})
	return s.closeErr
}

// teardownErr drops the errors an already finished context produces; a
// pipeline deadline that fired is not a teardown failure.
func teardownErr(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return fmt.Errorf("close browser: %w", err)
}
