// Package browser wraps a single live browser tab (the "page" and
// "context" of the runtime state in spec.md §3) behind the narrow surface
// the act/extract/observe loops need: navigation, DOM serialization,
// settle synchronization, and primitive dispatch. It is the concrete
// implementation of the "DOM Bridge" (C1) and "Settle Synchronizer" (C2)
// components.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kamilturan/browserloop/internal/logging"
)

// Environment selects where the controlled browser runs, mirroring
// spec.md §6's env option.
type Environment string

const (
	Local  Environment = "LOCAL"
	Remote Environment = "REMOTE"
)

// DefaultSettleTimeout is spec.md §3's default DOM-settle deadline.
const DefaultSettleTimeout = 60 * time.Second

// Options configures a Session. All fields are read once at NewSession and
// never mutated afterward, matching the immutable session configuration of
// spec.md §3.
type Options struct {
	Environment      Environment
	Headless         bool
	ConnectURL       string // CDP websocket endpoint, required when Environment == Remote
	DOMSettleTimeout time.Duration
	DebugDOM         bool
}

// Session exclusively owns the active Page and its enclosing Context, as
// spec.md §3 requires: it is never shared across Sessions. The Page handle
// itself is never replaced — when the Act Loop follows a spawned tab
// (spec.md §4.6 Phase F) the new tab is closed and the owned Page is
// navigated to its URL instead, see HandlePostClick in navigation.go.
type Session struct {
	opts Options
	log  *logging.Logger

	pw      *playwright.Playwright
	browser playwright.Browser

	mu      sync.Mutex
	Context playwright.BrowserContext
	Page    playwright.Page

	newTabCh chan playwright.Page
}

// NewSession launches (Local) or attaches to (Remote) a Chromium instance
// and opens its first page.
func NewSession(opts Options, log *logging.Logger) (*Session, error) {
	if opts.DOMSettleTimeout <= 0 {
		opts.DOMSettleTimeout = DefaultSettleTimeout
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright driver: %w", err)
	}

	s := &Session{opts: opts, log: log, pw: pw}

	var browserHandle playwright.Browser
	switch opts.Environment {
	case Remote:
		if opts.ConnectURL == "" {
			pw.Stop()
			return nil, fmt.Errorf("remote environment requires a connect URL")
		}
		ProbeRemote(context.Background(), opts.ConnectURL, log)
		browserHandle, err = pw.Chromium.ConnectOverCDP(opts.ConnectURL)
		if err != nil {
			pw.Stop()
			return nil, fmt.Errorf("connect over cdp: %w", err)
		}
	default:
		browserHandle, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(opts.Headless),
			Args: []string{
				"--disable-blink-features=AutomationControlled",
			},
		})
		if err != nil {
			pw.Stop()
			return nil, fmt.Errorf("launch chromium: %w", err)
		}
	}
	s.browser = browserHandle

	var ctx playwright.BrowserContext
	if len(browserHandle.Contexts()) > 0 {
		ctx = browserHandle.Contexts()[0]
	} else {
		viewport := &playwright.Size{Width: 1280, Height: 720}
		ctx, err = browserHandle.NewContext(playwright.BrowserNewContextOptions{
			Viewport: viewport,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("new browser context: %w", err)
		}
	}
	s.Context = ctx

	var page playwright.Page
	if len(ctx.Pages()) > 0 {
		page = ctx.Pages()[0]
	} else {
		page, err = ctx.NewPage()
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("new page: %w", err)
		}
	}
	s.Page = page

	s.newTabCh = make(chan playwright.Page, 4)
	s.Context.OnPage(func(p playwright.Page) {
		select {
		case s.newTabCh <- p:
		default:
		}
	})

	if err := s.installScripts(); err != nil {
		s.Close()
		return nil, fmt.Errorf("install dom scripts: %w", err)
	}

	return s, nil
}

// Close tears down the context and the underlying driver.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if s.Context != nil {
		if err := s.Context.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Goto navigates the owned page and waits for it to settle, per spec.md
// §4.1's rule that the navigation primitive always invokes WaitForSettled
// immediately after goto.
func (s *Session) Goto(url string) error {
	s.mu.Lock()
	page := s.Page
	s.mu.Unlock()

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	s.WaitForSettled(0)
	return nil
}

// URL returns the owned page's current URL.
func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Page.URL()
}

func (s *Session) installScripts() error {
	combined := walkerInstallScript()
	if _, err := s.Page.Evaluate(combined); err != nil {
		return err
	}
	if err := s.Page.AddInitScript(playwright.Script{Content: playwright.String(combined)}); err != nil {
		return err
	}
	return nil
}
