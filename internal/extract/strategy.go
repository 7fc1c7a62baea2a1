package extract

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

//go:embed strategies.yaml
var defaultStrategiesYAML []byte

// Strategy is one page-layout variant: a container locator plus four field
// locators evaluated inside each matched container.
type Strategy struct {
	Name      string `yaml:"name"`
	Since     int    `yaml:"since"`
	Container string `yaml:"container"`
	Author    string `yaml:"author"`
	Rating    string `yaml:"rating"`
	Text      string `yaml:"text"`
	Date      string `yaml:"date"`
}

// Strategies is the versioned, ordered list of known layouts.
type Strategies struct {
	Version int        `yaml:"version"`
	List    []Strategy `yaml:"strategies"`
}

func (ss Strategies) validate() error {
	if len(ss.List) == 0 {
		return fmt.Errorf("strategies: empty list")
	}
	names := make(map[string]bool, len(ss.List))
	for i, s := range ss.List {
		if s.Name == "" {
			return fmt.Errorf("strategies[%d]: missing name", i)
		}
		if names[s.Name] {
			return fmt.Errorf("strategies: duplicate name %q", s.Name)
		}
		names[s.Name] = true
		locators := []struct{ field, sel string }{
			{"container", s.Container}, {"author", s.Author}, {"rating", s.Rating}, {"text", s.Text}, {"date", s.Date},
		}
		for _, l := range locators {
			if strings.TrimSpace(l.sel) == "" {
				return fmt.Errorf("strategy %q: missing %s locator", s.Name, l.field)
			}
			if _, err := cascadia.ParseGroup(l.sel); err != nil {
				return fmt.Errorf("strategy %q: bad %s locator %q: %w", s.Name, l.field, l.sel, err)
			}
		}
		if s.Since > ss.Version {
			return fmt.Errorf("strategy %q: since %d is newer than document version %d", s.Name, s.Since, ss.Version)
		}
	}
	return nil
}

// ParseStrategies decodes and validates a strategy document. Unknown keys are
// rejected so a typo does not silently drop a locator.
func ParseStrategies(b []byte) (Strategies, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var ss Strategies
	if err := dec.Decode(&ss); err != nil {
		return Strategies{}, fmt.Errorf("parse strategies: %w", err)
	}
	if err := ss.validate(); err != nil {
		return Strategies{}, err
	}
	return ss, nil
}

// DefaultStrategies returns the embedded layouts.
func DefaultStrategies() Strategies {
	ss, err := ParseStrategies(defaultStrategiesYAML)
	if err != nil {
		panic("embedded strategies.yaml: " + err.Error())
	}
	return ss
}

// LoadStrategies reads path, or returns the embedded defaults when path is "".
func LoadStrategies(path string) (Strategies, error) {
	if path == "" {
		return DefaultStrategies(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Strategies{}, fmt.Errorf("read strategies: %w", err)
	}
	return ParseStrategies(b)
}
