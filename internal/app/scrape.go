package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_scraper/internal/adapters/observability"
	"review_scraper/internal/domain"
	"review_scraper/internal/extract"
)

type ScrapeConfig struct {
	NavTimeout    time.Duration
	NavSettle     time.Duration
	ConsentSettle time.Duration
	RevealSettle  time.Duration
	ScrollSettle  time.Duration
	ScrollSteps   int
	ScrollPx      int
	Timeout       time.Duration // whole pipeline; 0 means none
	MaxSessions   int

	ConsentSelectors []string
	RevealSelectors  []string
}

func DefaultScrapeConfig() ScrapeConfig {
	return ScrapeConfig{
		NavTimeout:    30 * time.Second,
		NavSettle:     3 * time.Second,
		ConsentSettle: 1 * time.Second,
		RevealSettle:  2 * time.Second,
		ScrollSettle:  1 * time.Second,
		ScrollSteps:   3,
		ScrollPx:      500,
		Timeout:       90 * time.Second,
		MaxSessions:   2,
		ConsentSelectors: []string{
			`button[aria-label*="consent" i]`,
			`button[aria-label*="accept" i]`,
			`button[jsname="higCR"]`,
			`form[action*="consent"] button`,
		},
		RevealSelectors: []string{
			`button[aria-label*="more reviews" i]`,
			`button[jsaction*="moreReviews"]`,
			`button[role="tab"][aria-label*="reviews" i]`,
			`div[role="tab"][aria-label*="reviews" i]`,
			`a[href*="reviews"]`,
		},
	}
}

// ScrapeService runs the review pipeline: launch, navigate, dismiss consent,
// reveal, extract, fall back, tear down. Each call owns one browser session.
type ScrapeService struct {
	launcher  domain.BrowserLauncher
	extractor *extract.Extractor
	runs      domain.RunRecorder
	sem       *semaphore.Weighted
	cfg       ScrapeConfig

	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

type ScrapeOption func(*ScrapeService)

// WithRunRecorder stores run metadata after every scrape.
func WithRunRecorder(r domain.RunRecorder) ScrapeOption {
	return func(s *ScrapeService) { s.runs = r }
}

// WithSleep replaces the settle-delay clock.
func WithSleep(f func(ctx context.Context, d time.Duration) error) ScrapeOption {
	return func(s *ScrapeService) { s.sleep = f }
}

func NewScrapeService(l domain.BrowserLauncher, ex *extract.Extractor, cfg ScrapeConfig, opts ...ScrapeOption) *ScrapeService {
	if cfg.MaxSessions < 1 {
		cfg.MaxSessions = 1
	}
	s := &ScrapeService{
		launcher:  l,
		extractor: ex,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(int64(cfg.MaxSessions)),
		sleep:     sleepCtx,
		newID:     func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Scrape returns real or fallback reviews for req. Only an invalid request or
// a browser that fails to start is an error; every later failure degrades to
// the fallback set, which is flagged Synthetic.
func (s *ScrapeService) Scrape(ctx context.Context, req domain.ScrapeRequest) (domain.ExtractionResult, error) {
	target, err := req.TargetURL()
	if err != nil {
		return domain.ExtractionResult{}, err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("wait for browser slot: %w", err)
	}
	defer s.sem.Release(1)

	start := time.Now()
	id := s.newID()
	l := log.With().Str("run", id).Str("url", target).Logger()
	res := domain.ExtractionResult{TargetURL: target}

	l.Debug().Str("state", "launching").Msg("scrape")
	sess, err := s.launcher.Launch(ctx)
	if err != nil {
		observability.ObserveScrape("", "failed", time.Since(start))
		l.Error().Err(err).Str("state", "failed").Msg("scrape")
		if !errors.Is(err, domain.ErrLaunch) {
			err = fmt.Errorf("%w: %v", domain.ErrLaunch, err)
		}
		return domain.ExtractionResult{}, err
	}
	observability.ActiveSessions.Inc()
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			observability.TeardownFailures.Inc()
			l.Warn().Err(cerr).Msg("browser teardown failed")
		}
		observability.ActiveSessions.Dec()
		l.Debug().Str("state", "torn_down").Msg("scrape")
	}()

	for _, st := range s.steps() {
		l.Debug().Str("state", st.name).Msg("scrape")
		outcome, serr := st.run(ctx, sess, &res)
		if serr != nil {
			outcome = stepFailed
			l.Info().Err(serr).Str("step", st.name).Msg("step failed, continuing")
		}
		observability.ObserveStep(st.name, string(outcome))
	}

	l.Debug().Str("state", "extracting").Msg("scrape")
	res.Records, res.Strategy = s.extract(ctx, l, sess, target)
	if len(res.Records) == 0 {
		l.Info().Msg("no reviews found, returning fallback set")
		res.Records = extract.Fallback()
		res.Synthetic = true
	}

	dur := time.Since(start)
	observability.ObserveScrape(res.Strategy, res.Source(), dur)
	s.record(ctx, l, domain.ScrapeRun{
		ID:        id,
		TargetURL: target,
		Strategy:  res.Strategy,
		Count:     len(res.Records),
		Synthetic: res.Synthetic,
		NavErr:    res.NavErr,
		Duration:  dur,
		CreatedAt: start.UTC(),
	})
	l.Info().
		Str("strategy", res.Strategy).
		Str("source", res.Source()).
		Int("count", len(res.Records)).
		Dur("duration", dur).
		Msg("scrape finished")
	return res, nil
}

func (s *ScrapeService) extract(ctx context.Context, l zerolog.Logger, sess domain.BrowserSession, target string) ([]domain.ReviewRecord, string) {
	html, loc, err := sess.Snapshot(ctx)
	if err != nil {
		l.Warn().Err(err).Msg("dom snapshot failed")
		return nil, ""
	}
	if loc == "" {
		loc = target
	}
	recs, strategy, err := s.extractor.Extract(html, loc)
	if err != nil {
		l.Warn().Err(err).Msg("extraction failed")
		return nil, ""
	}
	return recs, strategy
}

// record is best-effort and outlives a cancelled request context.
func (s *ScrapeService) record(ctx context.Context, l zerolog.Logger, run domain.ScrapeRun) {
	if s.runs == nil {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.runs.RecordRun(rctx, run); err != nil {
		l.Warn().Err(err).Msg("record scrape run failed")
	}
}
