// Package browser runs review pages in headless Chrome via chromedp.
package browser

import (
	"context"
	"fmt"
	"runtime"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"review_scraper/internal/domain"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultWidth     = 1366
	DefaultHeight    = 768
)

type Options struct {
	Env          domain.ExecEnv
	ChromePath   string // local: preferred binary
	PackagedPath string // serverless: packaged binary
	UserAgent    string
	Headless     bool
	Width        int
	Height       int
}

func DefaultOptions() Options {
	return Options{
		Env:          domain.EnvLocal,
		PackagedPath: "/opt/chromium/chromium",
		UserAgent:    DefaultUserAgent,
		Headless:     true,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
	}
}

type Launcher struct {
	opts   Options
	goos   string
	exists func(string) bool
}

func NewLauncher(opts Options) *Launcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultWidth, DefaultHeight
	}
	return &Launcher{opts: opts, goos: runtime.GOOS, exists: fileExists}
}

// execPath returns the binary to start, or "" for chromedp's default lookup.
func (l *Launcher) execPath() string {
	if l.opts.Env == domain.EnvServerless {
		return l.opts.PackagedPath
	}
	return resolveLocal(l.opts.ChromePath, l.goos, l.exists)
}

func (l *Launcher) flags() map[string]any {
	f := map[string]any{
		"ignore-certificate-errors": true,
		"disable-blink-features":    "AutomationControlled",
	}
	if l.opts.Headless {
		f["headless"] = "new"
	} else {
		f["headless"] = false
	}
	switch l.opts.Env {
	case domain.EnvServerless:
		f["no-sandbox"] = true
		f["single-process"] = true
		f["no-zygote"] = true
		f["disable-dev-shm-usage"] = true
		f["disable-gpu"] = true
	default:
		f["no-sandbox"] = true
		f["disable-setuid-sandbox"] = true
	}
	return f
}

func (l *Launcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(l.opts.Width, l.opts.Height),
		chromedp.UserAgent(l.opts.UserAgent),
	)
	for k, v := range l.flags() {
		opts = append(opts, chromedp.Flag(k, v))
	}
	if p := l.execPath(); p != "" {
		opts = append(opts, chromedp.ExecPath(p))
	}
	return opts
}

// Launch starts a browser bound to ctx and opens one tab with the desktop
// viewport applied. The caller owns the returned session and must Close it.
func (l *Launcher) Launch(ctx context.Context) (domain.BrowserSession, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, l.allocatorOptions()...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) { log.Debug().Msgf("chromedp: "+format, args...) }),
	)

	// first Run starts the browser process
	if err := chromedp.Run(tabCtx, chromedp.EmulateViewport(int64(l.opts.Width), int64(l.opts.Height))); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("%w: %v", domain.ErrLaunch, err)
	}

	log.Debug().
		Str("env", string(l.opts.Env)).
		Str("exec", l.execPath()).
		Msg("browser launched")

	return &Session{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc, actionTimeout: defaultActionTimeout}, nil
}
