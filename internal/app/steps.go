package app

import (
	"context"
	"errors"
	"time"

	"review_scraper/internal/domain"
)

// stepOutcome is what a best-effort step reports back to the driver. Errors
// from steps are logged and never abort the pipeline.
type stepOutcome string

const (
	stepDone    stepOutcome = "done"
	stepSkipped stepOutcome = "skipped"
	stepFailed  stepOutcome = "failed"
)

type step struct {
	name string
	run  func(ctx context.Context, sess domain.BrowserSession, res *domain.ExtractionResult) (stepOutcome, error)
}

func (s *ScrapeService) steps() []step {
	return []step{
		{name: "navigate", run: s.navigate},
		{name: "consent", run: s.dismissConsent},
		{name: "reveal", run: s.reveal},
		{name: "scroll", run: s.scroll},
	}
}

// navigate loads the target. A failed navigation still leaves whatever the
// page managed to render, so the settle delay runs either way.
func (s *ScrapeService) navigate(ctx context.Context, sess domain.BrowserSession, res *domain.ExtractionResult) (stepOutcome, error) {
	navErr := sess.Navigate(ctx, res.TargetURL, s.cfg.NavTimeout)
	if navErr != nil {
		res.NavErr = navErr.Error()
	}
	if err := s.sleep(ctx, s.cfg.NavSettle); err != nil {
		return stepFailed, errors.Join(navErr, err)
	}
	if navErr != nil {
		return stepFailed, navErr
	}
	return stepDone, nil
}

func (s *ScrapeService) dismissConsent(ctx context.Context, sess domain.BrowserSession, _ *domain.ExtractionResult) (stepOutcome, error) {
	return s.clickAndSettle(ctx, sess, s.cfg.ConsentSelectors, s.cfg.ConsentSettle)
}

func (s *ScrapeService) reveal(ctx context.Context, sess domain.BrowserSession, _ *domain.ExtractionResult) (stepOutcome, error) {
	return s.clickAndSettle(ctx, sess, s.cfg.RevealSelectors, s.cfg.RevealSettle)
}

func (s *ScrapeService) clickAndSettle(ctx context.Context, sess domain.BrowserSession, selectors []string, settle time.Duration) (stepOutcome, error) {
	matched, err := sess.ClickFirst(ctx, selectors)
	if err != nil {
		return stepFailed, err
	}
	if matched == "" {
		return stepSkipped, nil
	}
	if err := s.sleep(ctx, settle); err != nil {
		return stepFailed, err
	}
	return stepDone, nil
}

// scroll always runs every step so lazy content gets a chance to load even
// when one scroll call fails.
func (s *ScrapeService) scroll(ctx context.Context, sess domain.BrowserSession, _ *domain.ExtractionResult) (stepOutcome, error) {
	var errs []error
	for i := 0; i < s.cfg.ScrollSteps; i++ {
		if err := sess.ScrollBy(ctx, s.cfg.ScrollPx); err != nil {
			errs = append(errs, err)
		}
		if err := s.sleep(ctx, s.cfg.ScrollSettle); err != nil {
			errs = append(errs, err)
			break
		}
	}
	if len(errs) > 0 {
		return stepFailed, errors.Join(errs...)
	}
	return stepDone, nil
}

// sleepCtx waits for d or returns ctx.Err() if ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
