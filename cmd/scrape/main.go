// Command scrape runs the review pipeline for one or more targets outside the
// HTTP server and prints one JSON line per target.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_scraper/internal/adapters/browser"
	"review_scraper/internal/adapters/observability"
	"review_scraper/internal/app"
	"review_scraper/internal/domain"
	"review_scraper/internal/extract"
	"review_scraper/internal/shared"
)

type multi []string

func (m *multi) String() string     { return strings.Join(*m, ",") }
func (m *multi) Set(v string) error { *m = append(*m, v); return nil }

type line struct {
	Target   string                `json:"target"`
	Source   string                `json:"source,omitempty"`
	Strategy string                `json:"strategy,omitempty"`
	Reviews  []domain.ReviewRecord `json:"reviews,omitempty"`
	Error    string                `json:"error,omitempty"`
}

func main() {
	var links, placeIDs multi
	flag.Var(&links, "link", "map page URL to scrape (repeatable)")
	flag.Var(&placeIDs, "place", "place id to scrape (repeatable)")
	workers := flag.Int("workers", 0, "concurrent browser sessions (default MAX_SESSIONS)")
	flag.Parse()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	var reqs []domain.ScrapeRequest
	for _, l := range links {
		reqs = append(reqs, domain.ScrapeRequest{Link: l})
	}
	for _, p := range placeIDs {
		reqs = append(reqs, domain.ScrapeRequest{PlaceID: p})
	}
	if len(reqs) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *workers <= 0 {
		*workers = cfg.MaxSessions
	}

	strategies, err := extract.LoadStrategies(cfg.Strategies)
	if err != nil {
		log.Fatal().Err(err).Msg("load extraction strategies")
	}
	scfg := app.DefaultScrapeConfig()
	scfg.Timeout = cfg.ScrapeTimeout
	scfg.MaxSessions = *workers
	svc := app.NewScrapeService(browser.NewLauncher(browser.Options{
		Env:          cfg.ExecEnv,
		ChromePath:   cfg.ChromePath,
		PackagedPath: cfg.PackagedPath,
		UserAgent:    cfg.UserAgent,
		Headless:     cfg.Headless,
	}), extract.New(strategies), scfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Int("targets", len(reqs)).Int("workers", *workers).Msg("scrape starting")

	sem := semaphore.NewWeighted(int64(*workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	enc := json.NewEncoder(os.Stdout)
	failed := 0

	for _, req := range reqs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("interrupted")
			break
		}

		wg.Add(1)
		go func(req domain.ScrapeRequest) {
			defer wg.Done()
			defer sem.Release(1)

			out := line{Target: req.Link}
			if out.Target == "" {
				out.Target = req.PlaceID
			}
			res, err := svc.Scrape(ctx, req)
			if err != nil {
				out.Error = err.Error()
			} else {
				out.Source, out.Strategy, out.Reviews = res.Source(), res.Strategy, res.Records
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
			}
			if err := enc.Encode(out); err != nil {
				log.Error().Err(err).Msg("write result")
			}
		}(req)
	}

	wg.Wait()
	log.Info().Int("failed", failed).Msg("scrape completed")
	if failed > 0 {
		os.Exit(1)
	}
}
