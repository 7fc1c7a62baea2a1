// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"review_scraper/internal/app"
	"review_scraper/internal/domain"
)

const (
	HeaderReviewSource   = "X-Review-Source"
	HeaderReviewStrategy = "X-Review-Strategy"

	maxRequestBody = 64 << 10
)

type Handlers struct {
	Scrape *app.ScrapeService
	Places *app.PlacesService // nil disables autocomplete
	Runs   domain.RunRecorder // nil disables the run log

	ScrapeTimeout time.Duration
	StaticDir     string
}

type message struct {
	Message string `json:"message"`
}

type runView struct {
	ID         string    `json:"id"`
	TargetURL  string    `json:"targetUrl"`
	Strategy   string    `json:"strategy,omitempty"`
	Count      int       `json:"count"`
	Synthetic  bool      `json:"synthetic"`
	NavError   string    `json:"navError,omitempty"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (s *Server) MountHandlers(h *Handlers) {
	scrapeTimeout := h.ScrapeTimeout
	if scrapeTimeout <= 0 {
		scrapeTimeout = 90 * time.Second
	}

	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.With(Timeout(15*time.Second)).Get("/api/places/autocomplete", h.autocomplete)
	// leave room for teardown after the pipeline deadline
	s.mux.With(Timeout(scrapeTimeout+10*time.Second)).Post("/api/scrape-reviews", h.scrapeReviews)
	s.mux.With(Timeout(15*time.Second)).Get("/api/scrape-runs", h.listRuns)

	if h.StaticDir != "" {
		s.mux.NotFound(spa(h.StaticDir))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, message{Message: msg})
}

// reason turns "invalid request: either link ..." into "Either link ...".
func reason(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidRequest.Error()+": ")
	if msg == "" {
		return "Bad Request"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func (h *Handlers) scrapeReviews(w http.ResponseWriter, r *http.Request) {
	var req domain.ScrapeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Request body must be a JSON object")
		return
	}
	// validate before any browser work
	if _, err := req.TargetURL(); err != nil {
		writeMessage(w, http.StatusBadRequest, reason(err))
		return
	}

	res, err := h.Scrape.Scrape(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			writeMessage(w, http.StatusBadRequest, reason(err))
			return
		}
		log.Error().Err(err).Msg("scrape failed")
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set(HeaderReviewSource, res.Source())
	if res.Strategy != "" {
		w.Header().Set(HeaderReviewStrategy, res.Strategy)
	}
	writeJSON(w, http.StatusOK, res.Records)
}

func (h *Handlers) autocomplete(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")
	if strings.TrimSpace(input) == "" {
		writeMessage(w, http.StatusBadRequest, "Input query is required")
		return
	}
	if h.Places == nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch place suggestions")
		return
	}
	body, err := h.Places.Autocomplete(r.Context(), input)
	if err != nil {
		log.Error().Err(err).Msg("places autocomplete failed")
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch place suggestions")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write autocomplete body")
	}
}

func (h *Handlers) listRuns(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeMessage(w, http.StatusNotFound, "Run log is not enabled")
		return
	}
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeMessage(w, http.StatusBadRequest, "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	runs, err := h.Runs.ListRuns(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list scrape runs failed")
		writeMessage(w, http.StatusInternalServerError, "Failed to list scrape runs")
		return
	}
	out := make([]runView, 0, len(runs))
	for _, run := range runs {
		out = append(out, runView{
			ID:         run.ID,
			TargetURL:  run.TargetURL,
			Strategy:   run.Strategy,
			Count:      run.Count,
			Synthetic:  run.Synthetic,
			NavError:   run.NavErr,
			DurationMs: run.Duration.Milliseconds(),
			CreatedAt:  run.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// spa serves the built front-end: existing files as-is, any other GET path
// as index.html so client-side routes resolve.
func spa(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead || strings.HasPrefix(r.URL.Path, "/api/") {
			writeMessage(w, http.StatusNotFound, "Not Found")
			return
		}
		p := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}
