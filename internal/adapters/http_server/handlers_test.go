package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	httpserver "review_scraper/internal/adapters/http_server"
	"review_scraper/internal/app"
	"review_scraper/internal/domain"
	"review_scraper/internal/extract"
)

const onePage = `<html><body>
<div class="jftiEf"><div class="d4r55">Ana</div><span role="img" aria-label="4 stars"></span><span class="wiI7pd">Lovely</span><span class="rsqaWe">a week ago</span></div>
</body></html>`

type stubSession struct{ html string }

func (s *stubSession) Navigate(context.Context, string, time.Duration) error { return nil }
func (s *stubSession) ClickFirst(context.Context, []string) (string, error) { return "", nil }
func (s *stubSession) ScrollBy(context.Context, int) error                  { return nil }
func (s *stubSession) Snapshot(context.Context) (string, string, error)     { return s.html, "", nil }
func (s *stubSession) Close() error                                         { return nil }

type stubLauncher struct {
	html  string
	err   error
	calls int
}

func (l *stubLauncher) Launch(context.Context) (domain.BrowserSession, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return &stubSession{html: l.html}, nil
}

type stubPlaces struct {
	body []byte
	err  error
}

func (p stubPlaces) Autocomplete(context.Context, string) ([]byte, error) { return p.body, p.err }

type stubRuns struct{ runs []domain.ScrapeRun }

func (r *stubRuns) RecordRun(_ context.Context, run domain.ScrapeRun) error {
	r.runs = append(r.runs, run)
	return nil
}

func (r *stubRuns) ListRuns(_ context.Context, limit int) ([]domain.ScrapeRun, error) {
	if limit < len(r.runs) {
		return r.runs[:limit], nil
	}
	return r.runs, nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func newTestServer(t *testing.T, l *stubLauncher, h httpserver.Handlers) *httptest.Server {
	t.Helper()
	var opts []app.ScrapeOption
	opts = append(opts, app.WithSleep(noSleep))
	if h.Runs != nil {
		opts = append(opts, app.WithRunRecorder(h.Runs))
	}
	h.Scrape = app.NewScrapeService(l, extract.New(extract.DefaultStrategies()), app.DefaultScrapeConfig(), opts...)
	srv := httpserver.New()
	srv.MountHandlers(&h)
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func postScrape(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	res, err := http.Post(ts.URL+"/api/scrape-reviews", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decodeMessage(t *testing.T, res *http.Response) string {
	t.Helper()
	var m struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return m.Message
}

func TestScrapeReviews_BadRequestNeverLaunches(t *testing.T) {
	l := &stubLauncher{html: onePage}
	ts := newTestServer(t, l, httpserver.Handlers{})

	cases := map[string]struct {
		body string
		msg  string
	}{
		"empty object": {`{}`, "Either link or placeId is required"},
		"blank values": {`{"link":"  ","placeId":""}`, "Either link or placeId is required"},
		"empty body":   {``, "Either link or placeId is required"},
		"not json":     {`link=x`, "Request body must be a JSON object"},
		"relative":     {`{"link":"/maps/place/x"}`, "Link must be an absolute http(s) URL"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res := postScrape(t, ts, tc.body)
			if res.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", res.StatusCode)
			}
			if got := decodeMessage(t, res); got != tc.msg {
				t.Fatalf("message = %q, want %q", got, tc.msg)
			}
		})
	}
	if l.calls != 0 {
		t.Fatalf("launcher called %d times", l.calls)
	}
}

func TestScrapeReviews_RealReviews(t *testing.T) {
	runs := &stubRuns{}
	ts := newTestServer(t, &stubLauncher{html: onePage}, httpserver.Handlers{Runs: runs})

	res := postScrape(t, ts, `{"placeId":"ChIJabc"}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if got := res.Header.Get(httpserver.HeaderReviewSource); got != "scraped" {
		t.Fatalf("%s = %q", httpserver.HeaderReviewSource, got)
	}
	if got := res.Header.Get(httpserver.HeaderReviewStrategy); got != "place-panel" {
		t.Fatalf("%s = %q", httpserver.HeaderReviewStrategy, got)
	}
	var got []domain.ReviewRecord
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []domain.ReviewRecord{{Name: "Ana", Rating: 4, Text: "Lovely", Date: "a week ago"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
	if len(runs.runs) != 1 || runs.runs[0].TargetURL != "https://www.google.com/maps/place/?q=place_id:ChIJabc" {
		t.Fatalf("runs = %+v", runs.runs)
	}
}

func TestScrapeReviews_FallbackIsFlagged(t *testing.T) {
	ts := newTestServer(t, &stubLauncher{html: "<html><body></body></html>"}, httpserver.Handlers{})

	res := postScrape(t, ts, `{"link":"https://maps.example/place/1"}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if got := res.Header.Get(httpserver.HeaderReviewSource); got != "fallback" {
		t.Fatalf("%s = %q", httpserver.HeaderReviewSource, got)
	}
	var raw []map[string]any
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 10 || raw[0]["name"] != "John Doe" || raw[0]["synthetic"] != true {
		t.Fatalf("unexpected fallback body: %v", raw)
	}
}

func TestScrapeReviews_LaunchFailureIs500(t *testing.T) {
	ts := newTestServer(t, &stubLauncher{err: errors.New("no chrome")}, httpserver.Handlers{})

	res := postScrape(t, ts, `{"link":"https://maps.example/place/1"}`)
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", res.StatusCode)
	}
	if msg := decodeMessage(t, res); !strings.Contains(msg, "no chrome") {
		t.Fatalf("message = %q", msg)
	}
}

func TestAutocomplete(t *testing.T) {
	payload := `{"predictions":[{"description":"Cafe"}],"status":"OK"}`

	cases := []struct {
		name   string
		places *app.PlacesService
		query  string
		status int
		body   string
	}{
		{"missing input", app.NewPlacesService(stubPlaces{body: []byte(payload)}, nil, time.Minute), "", 400, `{"message":"Input query is required"}`},
		{"passthrough", app.NewPlacesService(stubPlaces{body: []byte(payload)}, nil, time.Minute), "?input=caf", 200, payload},
		{"upstream error", app.NewPlacesService(stubPlaces{err: errors.New("boom")}, nil, time.Minute), "?input=caf", 500, `{"message":"Failed to fetch place suggestions"}`},
		{"not configured", nil, "?input=caf", 500, `{"message":"Failed to fetch place suggestions"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, &stubLauncher{}, httpserver.Handlers{Places: tc.places})
			res, err := http.Get(ts.URL + "/api/places/autocomplete" + tc.query)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			defer res.Body.Close()
			if res.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", res.StatusCode, tc.status)
			}
			var got, want any
			if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			_ = json.Unmarshal([]byte(tc.body), &want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("body (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScrapeRuns_LimitValidation(t *testing.T) {
	runs := &stubRuns{runs: []domain.ScrapeRun{{ID: "a", TargetURL: "https://x", Count: 10, Synthetic: true, Duration: 1500 * time.Millisecond}}}
	ts := newTestServer(t, &stubLauncher{}, httpserver.Handlers{Runs: runs})

	res, err := http.Get(ts.URL + "/api/scrape-runs?limit=0")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("limit=0 status = %d", res.StatusCode)
	}

	res, err = http.Get(ts.URL + "/api/scrape-runs")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	var got []map[string]any
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0]["id"] != "a" || got[0]["durationMs"] != float64(1500) {
		t.Fatalf("runs = %v", got)
	}
}

func TestStaticFallbackServesIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>app</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, &stubLauncher{}, httpserver.Handlers{StaticDir: dir})

	get := func(path string) (int, string) {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer res.Body.Close()
		b, err := io.ReadAll(res.Body)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		return res.StatusCode, string(b)
	}

	if code, body := get("/app.js"); code != 200 || body != "console.log(1)" {
		t.Fatalf("/app.js = %d %q", code, body)
	}
	if code, body := get("/place/123"); code != 200 || body != "<h1>app</h1>" {
		t.Fatalf("/place/123 = %d %q", code, body)
	}
	if code, _ := get("/api/unknown"); code != 404 {
		t.Fatalf("/api/unknown = %d", code)
	}
}
