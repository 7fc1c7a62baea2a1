package extract_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"review_scraper/internal/extract"
)

func TestDefaultStrategies_Order(t *testing.T) {
	ss := extract.DefaultStrategies()
	if ss.Version < 1 {
		t.Fatalf("version: %d", ss.Version)
	}
	if len(ss.List) < 2 {
		t.Fatalf("expected at least two strategies, got %d", len(ss.List))
	}
	if ss.List[0].Name != "place-panel" || ss.List[1].Name != "local-reviews" {
		t.Fatalf("unexpected priority order: %q, %q", ss.List[0].Name, ss.List[1].Name)
	}
}

func TestParseStrategies_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty list": "version: 1\nstrategies: []\n",
		"duplicate": `version: 1
strategies:
  - {name: a, since: 1, container: div, author: b, rating: c, text: d, date: e}
  - {name: a, since: 1, container: div, author: b, rating: c, text: d, date: e}
`,
		"missing locator": `version: 1
strategies:
  - {name: a, since: 1, container: div, author: b, rating: c, text: d}
`,
		"unknown key": `version: 1
strategies:
  - {name: a, since: 1, container: div, author: b, rating: c, text: d, date: e, photo: img}
`,
		"bad selector": `version: 1
strategies:
  - {name: a, since: 1, container: "div[", author: b, rating: c, text: d, date: e}
`,
		"future since": `version: 1
strategies:
  - {name: a, since: 2, container: div, author: b, rating: c, text: d, date: e}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := extract.ParseStrategies([]byte(doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadStrategies_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	doc := `version: 4
strategies:
  - name: custom
    since: 4
    container: div.review
    author: .who
    rating: .stars
    text: .body
    date: .when
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	ss, err := extract.LoadStrategies(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ss.List) != 1 || ss.List[0].Author != ".who" {
		t.Fatalf("unexpected strategies: %+v", ss)
	}

	if _, err := extract.LoadStrategies(filepath.Join(t.TempDir(), "missing.yaml")); err == nil || !strings.Contains(err.Error(), "read strategies") {
		t.Fatalf("expected read error, got %v", err)
	}
}
