package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"review_scraper/internal/adapters/browser"
	server "review_scraper/internal/adapters/http_server"
	"review_scraper/internal/adapters/observability"
	"review_scraper/internal/adapters/places"
	redisad "review_scraper/internal/adapters/redis"
	"review_scraper/internal/app"
	"review_scraper/internal/domain"
	"review_scraper/internal/extract"
	"review_scraper/internal/shared"
	mysqlrepo "review_scraper/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	// one registry backs both the API /metrics route and METRICS_ADDR
	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	strategies, err := extract.LoadStrategies(cfg.Strategies)
	if err != nil {
		log.Fatal().Err(err).Msg("load extraction strategies")
	}

	launcher := browser.NewLauncher(browser.Options{
		Env:          cfg.ExecEnv,
		ChromePath:   cfg.ChromePath,
		PackagedPath: cfg.PackagedPath,
		UserAgent:    cfg.UserAgent,
		Headless:     cfg.Headless,
	})

	scfg := app.DefaultScrapeConfig()
	scfg.Timeout = cfg.ScrapeTimeout
	scfg.MaxSessions = cfg.MaxSessions

	var opts []app.ScrapeOption
	var runs domain.RunRecorder
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok, scrape runs are recorded")
		runs = mysqlrepo.New(db)
		opts = append(opts, app.WithRunRecorder(runs))
	}
	scraper := app.NewScrapeService(launcher, extract.New(strategies), scfg, opts...)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		pctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(pctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, autocomplete cache disabled")
		} else {
			cache = rc
		}
		cancel()
	}

	var placesSvc *app.PlacesService
	if client, err := places.New(cfg.PlacesBase, cfg.GoogleKey, cfg.PlacesRPS); err != nil {
		log.Warn().Err(err).Msg("places client disabled")
	} else {
		placesSvc = app.NewPlacesService(client, cache, cfg.AutocompleteTT)
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Scrape:        scraper,
		Places:        placesSvc,
		Runs:          runs,
		ScrapeTimeout: cfg.ScrapeTimeout,
		StaticDir:     cfg.StaticDir,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("exec_env", string(cfg.ExecEnv)).
			Int("max_sessions", cfg.MaxSessions).
			Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	// in-flight scrapes get their own deadline to finish and tear down
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ScrapeTimeout+15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
