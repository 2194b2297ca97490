package browser

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrInvalidMethod is returned by Dispatch when the requested method name
// is not one of the supported primitives, matching spec.md §4.6 Phase G's
// "Internal error: Chosen method … is invalid" case.
var ErrInvalidMethod = fmt.Errorf("chosen method is invalid")

// Locate resolves elementID against selectorMap and returns the first
// matching locator, per spec.md §4.6: "All dispatches use the first
// element matching xpath=selectorMap[elementId]."
func (s *Session) Locate(elementID int, selectorMap map[int]string) (playwright.Locator, error) {
	xpath, ok := selectorMap[elementID]
	if !ok {
		return nil, fmt.Errorf("element id %d not present in selector map", elementID)
	}

	s.mu.Lock()
	page := s.Page
	s.mu.Unlock()

	return page.Locator("xpath=" + xpath).First(), nil
}

// Dispatch executes one act-loop primitive against elementID, implementing
// the method table of spec.md §4.6 Phase E. Methods outside the table
// resolve to ErrInvalidMethod rather than being attempted.
func (s *Session) Dispatch(method string, elementID int, selectorMap map[int]string, args []any) error {
	locator, err := s.Locate(elementID, selectorMap)
	if err != nil {
		return err
	}

	switch method {
	case "scrollIntoView":
		_, err := locator.Evaluate(`el => el.scrollIntoView({behavior: "smooth", block: "center"})`, nil)
		return err

	case "fill", "type":
		text := argString(args, 0)
		return s.typeHumanlike(locator, text)

	case "press":
		key := argString(args, 0)
		s.mu.Lock()
		page := s.Page
		s.mu.Unlock()
		return page.Keyboard().Press(key)

	case "hover":
		return locator.Hover()

	case "check":
		return locator.Check()

	case "uncheck":
		return locator.Uncheck()

	case "focus":
		return locator.Focus()

	case "blur":
		_, err := locator.Evaluate(`el => el.blur()`, nil)
		return err

	case "selectOption":
		values := make([]string, 0, len(args))
		for _, a := range args {
			if str, ok := a.(string); ok {
				values = append(values, str)
			}
		}
		_, err := locator.SelectOption(playwright.SelectOptionValues{Values: &values})
		return err

	case "click":
		return locator.Click()

	default:
		return fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
}

// typeHumanlike clears the field, clicks it, then types the given text one
// character at a time with a random 25-75ms delay between keystrokes, per
// spec.md §4.6 Phase E — simulating human input so naive bot-detection
// heuristics that key off perfectly uniform keystroke timing don't trip.
func (s *Session) typeHumanlike(locator playwright.Locator, text string) error {
	if err := locator.Clear(); err != nil {
		return fmt.Errorf("clear field: %w", err)
	}
	if err := locator.Click(); err != nil {
		return fmt.Errorf("click field: %w", err)
	}

	s.mu.Lock()
	page := s.Page
	s.mu.Unlock()
	keyboard := page.Keyboard()

	for _, ch := range text {
		if err := keyboard.Type(string(ch)); err != nil {
			return fmt.Errorf("type character: %w", err)
		}
		delay := 25 + rand.Intn(51) // 25-75ms inclusive
		time.Sleep(time.Duration(delay) * time.Millisecond)
	}
	return nil
}

func argString(args []any, index int) string {
	if index >= len(args) {
		return ""
	}
	s, _ := args[index].(string)
	return s
}
