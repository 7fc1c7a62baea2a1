package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"review_scraper/internal/domain"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	StaticDir   string

	ExecEnv       domain.ExecEnv
	ChromePath    string
	PackagedPath  string
	UserAgent     string
	Headless      bool
	MaxSessions   int
	ScrapeTimeout time.Duration
	Strategies    string

	GoogleKey      string
	PlacesBase     string
	PlacesRPS      int
	AutocompleteTT time.Duration

	RedisAddr string
	RedisDB   int
	RedisPass string
	MySQLDSN  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first without overriding variables already set.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env not loaded")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv; tests pass a map lookup.
func FromEnv(getenv func(string) string) Config {
	env := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}
	atoi := func(k string, def int) int {
		if v := getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	boolean := func(k string, def bool) bool {
		if v := getenv(k); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not a boolean, using default")
		}
		return def
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":"+env("PORT", "3001")),
		MetricsAddr: getenv("METRICS_ADDR"),
		StaticDir:   getenv("STATIC_DIR"),

		ExecEnv:       execEnv(getenv),
		ChromePath:    getenv("CHROME_PATH"),
		PackagedPath:  env("CHROME_PACKAGED_PATH", "/opt/chromium/chromium"),
		UserAgent:     getenv("USER_AGENT"),
		Headless:      boolean("HEADLESS", true),
		MaxSessions:   atoi("MAX_SESSIONS", 2),
		ScrapeTimeout: time.Duration(atoi("SCRAPE_TIMEOUT_SECONDS", 90)) * time.Second,
		Strategies:    getenv("STRATEGIES_FILE"),

		GoogleKey:      env("GOOGLE_API_KEY", getenv("VITE_GOOGLE_API_KEY")),
		PlacesBase:     env("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesRPS:      atoi("PLACES_RPS", 5),
		AutocompleteTT: time.Duration(atoi("AUTOCOMPLETE_CACHE_TTL_SECONDS", 300)) * time.Second,

		RedisAddr: getenv("REDIS_ADDR"),
		RedisPass: getenv("REDIS_PASSWORD"),
		RedisDB:   atoi("REDIS_DB", 0),
		MySQLDSN:  getenv("MYSQL_DSN"),
	}
	if c.MaxSessions < 1 {
		c.MaxSessions = 1
	}
	if c.GoogleKey == "" {
		log.Warn().Msg("GOOGLE_API_KEY is empty; autocomplete will fail")
	}
	return c
}

// execEnv honours EXEC_ENV, else detects hosted runtimes the way the
// deployment targets advertise themselves.
func execEnv(getenv func(string) string) domain.ExecEnv {
	if v := getenv("EXEC_ENV"); v != "" {
		e, err := domain.ParseExecEnv(v)
		if err == nil {
			return e
		}
		log.Warn().Err(err).Msg("EXEC_ENV ignored")
	}
	if getenv("AWS_REGION") != "" || getenv("AWS_LAMBDA_FUNCTION_NAME") != "" || strings.TrimSpace(getenv("VERCEL")) == "1" {
		return domain.EnvServerless
	}
	return domain.EnvLocal
}
