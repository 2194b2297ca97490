package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// NewTabTimeout and NetworkIdleTimeout are the fixed internal deadlines
// from spec.md §4.6 Phase F / §5.
const (
	NewTabTimeout      = 1500 * time.Millisecond
	NetworkIdleTimeout = 5000 * time.Millisecond
)

// AwaitNewTab races the context's "page" event against timeout, per
// spec.md §4.6 Phase F step 1. A timeout is "no new tab", not an error.
func (s *Session) AwaitNewTab(timeout time.Duration) (playwright.Page, bool) {
	select {
	case page := <-s.newTabCh:
		return page, true
	case <-time.After(timeout):
		return nil, false
	}
}

// HandlePostClick implements spec.md §4.6 Phase F in full: it looks for a
// new tab opened by the click, and if one appears, closes it and navigates
// the main page to its URL instead (preserving the single-tab invariant),
// then waits for domcontentloaded and settle. It then races networkidle
// with a soft timeout and reports whether the URL changed from preURL.
func (s *Session) HandlePostClick(preURL string) (urlChanged bool, newURL string) {
	if newPage, ok := s.AwaitNewTab(NewTabTimeout); ok {
		targetURL := newPage.URL()
		_ = newPage.Close()

		s.mu.Lock()
		page := s.Page
		s.mu.Unlock()

		if targetURL != "" && targetURL != "about:blank" {
			if _, err := page.Goto(targetURL, playwright.PageGotoOptions{
				WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			}); err != nil {
				s.log.V(1).Info("failed to navigate main page to new-tab url", "url", targetURL, "error", err)
			}
			s.WaitForSettled(0)
		}
	}

	s.mu.Lock()
	page := s.Page
	s.mu.Unlock()

	networkIdle := playwright.LoadStateNetworkidle
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   networkIdle,
		Timeout: playwright.Float(float64(NetworkIdleTimeout.Milliseconds())),
	}); err != nil {
		s.log.V(1).Info("networkidle wait timed out, treating as settled", "error", err)
	}

	currentURL := page.URL()
	return currentURL != preURL, currentURL
}
