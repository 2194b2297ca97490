package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kamilturan/browserloop/internal/domscript"
)

// WaitForSettled implements the Settle Synchronizer (C2): it returns when
// the first of waitForDomSettle resolving, domcontentloaded being reached,
// a body element becoming queryable, or the timeout elapsing occurs. It
// never fails — a timeout is logged at verbosity 1 and treated as settled,
// because the surrounding loops cannot make progress without some DOM view
// and a hard failure here would be worse than best-effort.
func (s *Session) WaitForSettled(timeout time.Duration) {
	if timeout <= 0 {
		timeout = s.opts.DOMSettleTimeout
	}

	s.mu.Lock()
	page := s.Page
	s.mu.Unlock()

	done := make(chan string, 3)

	go func() {
		state := playwright.LoadStateDomcontentloaded
		if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   state,
			Timeout: playwright.Float(float64(timeout.Milliseconds())),
		}); err == nil {
			done <- "domcontentloaded"
		}
	}()

	go func() {
		if _, err := page.WaitForSelector("body", playwright.PageWaitForSelectorOptions{
			Timeout: playwright.Float(float64(timeout.Milliseconds())),
		}); err == nil {
			done <- "body-present"
		}
	}()

	go func() {
		stabilityMs := 300
		maxWaitMs := int(timeout.Milliseconds())
		if _, err := page.Evaluate(domscript.WaitForDomSettle, stabilityMs, maxWaitMs); err == nil {
			done <- "dom-settled"
		}
	}()

	select {
	case reason := <-done:
		s.log.V(2).Info("settle synchronizer resolved", "reason", reason)
	case <-time.After(timeout):
		s.log.V(1).Info("settle synchronizer timed out, proceeding anyway", "timeoutMs", timeout.Milliseconds())
	}
}
