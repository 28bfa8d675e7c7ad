package session

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"go-rental-agent/internal/browser"
)

const (
	inactivityWindow = 5 * time.Minute
	navTimeoutMs     = 30000
)

var ErrNoSession = errors.New("no active browser session")

// Action is one primitive input relayed into the live page.
type Action struct {
	Type     string  `json:"type"` // click | type | press
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Text     string  `json:"text"`
	Key      string  `json:"key"`
	Selector string  `json:"selector,omitempty"`
}

// View is what the UI polls: the current frame plus login state.
type View struct {
	Screenshot    string `json:"screenshot"`
	LoginDetected bool   `json:"loginDetected"`
	URL           string `json:"url"`
}

// live is one running interactive session. The token ties timers and
// teardown to this particular session so an expiry firing late cannot kill
// a successor.
type live struct {
	token         string
	context       playwright.BrowserContext
	page          playwright.Page
	timer         *time.Timer
	capturedEmail string
}

// Manager is the registry for the interactive login session. At most one
// session exists at a time: starting a new one preempts the current one.
type Manager struct {
	mu       sync.Mutex
	browser  *browser.Manager
	loginURL string
	domain   string
	cur      *live
}

func NewManager(b *browser.Manager, loginURL, siteDomain string) *Manager {
	return &Manager{browser: b, loginURL: loginURL, domain: siteDomain}
}

// LoginDetected is the URL-shape heuristic for a completed login: on the
// site's domain but no longer on a login path. It is deliberately a shape
// check, not a content check.
func LoginDetected(url, domain string) bool {
	return strings.Contains(url, domain) &&
		!strings.Contains(url, "/login") &&
		!strings.Contains(url, "/inloggen")
}

// ObserveEmail folds one observation into the accumulator: the latest
// non-empty address wins, anything else keeps the current value.
func ObserveEmail(current, observed string) string {
	observed = strings.TrimSpace(observed)
	if observed != "" && strings.Contains(observed, "@") {
		return observed
	}
	return current
}

// Start launches a fresh session on the login page, tearing down any
// existing one first. Returns the initial view.
func (m *Manager) Start() (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur != nil {
		m.teardownLocked()
	}

	ctx, err := m.browser.NewInteractiveContext()
	if err != nil {
		return View{}, err
	}
	page, err := ctx.NewPage()
	if err != nil {
		ctx.Close()
		return View{}, fmt.Errorf("could not create page: %w", err)
	}

	if _, err := page.Goto(m.loginURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navTimeoutMs),
	}); err != nil {
		ctx.Close()
		return View{}, fmt.Errorf("could not open login page: %w", err)
	}
	page.WaitForTimeout(2000)

	browser.DismissConsent(page)

	s := &live{
		token:   uuid.New().String(),
		context: ctx,
		page:    page,
	}
	m.cur = s
	m.resetTimerLocked(s)

	view, err := m.viewLocked(s)
	if err != nil {
		// a session that cannot produce its first frame is unusable; tear it
		// down so Active() and the error agree
		m.teardownLocked()
		return View{}, err
	}
	log.Printf("🖥️ Interactive session %s started", s.token[:8])
	return view, nil
}

// PerformAction relays one input into the page and returns the new view.
// Every action resets the inactivity window. The login-form email is
// observed both before and after the action, so whichever moment the field
// happens to be populated is captured.
func (m *Manager) PerformAction(a Action) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.cur
	if s == nil {
		return View{}, ErrNoSession
	}
	m.resetTimerLocked(s)

	m.observeEmailLocked(s)

	switch a.Type {
	case "click":
		if a.Selector != "" {
			if err := s.page.Locator(a.Selector).First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
				return View{}, fmt.Errorf("click failed: %w", err)
			}
		} else {
			if err := s.page.Mouse().Click(a.X, a.Y); err != nil {
				return View{}, fmt.Errorf("click failed: %w", err)
			}
		}
		s.page.WaitForTimeout(300)
	case "type":
		if a.Selector != "" {
			if err := s.page.Locator(a.Selector).First().Fill(a.Text); err != nil {
				return View{}, fmt.Errorf("type failed: %w", err)
			}
		} else {
			if err := s.page.Keyboard().Type(a.Text, playwright.KeyboardTypeOptions{Delay: playwright.Float(30)}); err != nil {
				return View{}, fmt.Errorf("type failed: %w", err)
			}
		}
	case "press":
		if err := s.page.Keyboard().Press(a.Key); err != nil {
			return View{}, fmt.Errorf("press failed: %w", err)
		}
		s.page.WaitForTimeout(200)
	default:
		return View{}, fmt.Errorf("unknown action type: %s", a.Type)
	}

	s.page.WaitForTimeout(500)

	m.observeEmailLocked(s)

	return m.viewLocked(s)
}

// View returns the current frame without relaying input.
func (m *Manager) View() (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.cur
	if s == nil {
		return View{}, ErrNoSession
	}
	return m.viewLocked(s)
}

// CaptureAuthState snapshots the session's cookies and storage. Called once
// login is detected, before teardown.
func (m *Manager) CaptureAuthState() (*browser.AuthState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur == nil {
		return nil, ErrNoSession
	}
	return browser.CaptureAuthState(m.cur.context)
}

// CapturedEmail returns the best-effort email observed on the login form.
func (m *Manager) CapturedEmail() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur == nil {
		return ""
	}
	return m.cur.capturedEmail
}

func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur != nil
}

// Close tears the session down. Safe to call when nothing is running.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
}

func (m *Manager) viewLocked(s *live) (View, error) {
	shot, err := browser.JPEGScreenshot(s.page)
	if err != nil {
		return View{}, err
	}
	url := s.page.URL()
	return View{
		Screenshot:    shot,
		LoginDetected: LoginDetected(url, m.domain),
		URL:           url,
	}, nil
}

// observeEmailLocked reads the typed email off the login form. Only runs
// while still on a login path; errors are swallowed, this is best effort.
func (m *Manager) observeEmailLocked(s *live) {
	url := s.page.URL()
	if !strings.Contains(url, "/login") && !strings.Contains(url, "/inloggen") {
		return
	}
	result, err := s.page.Evaluate(`() => {
		const el = document.querySelector('input[type="email"], input[name="email"], input[name*="mail"], input[id*="mail"]');
		return el ? el.value : null;
	}`)
	if err != nil {
		return
	}
	if observed, ok := result.(string); ok {
		s.capturedEmail = ObserveEmail(s.capturedEmail, observed)
	}
}

func (m *Manager) resetTimerLocked(s *live) {
	if s.timer != nil {
		s.timer.Stop()
	}
	token := s.token
	s.timer = time.AfterFunc(inactivityWindow, func() {
		m.expire(token)
	})
}

// expire tears down the session after the inactivity window, but only if
// the same session is still the current one.
func (m *Manager) expire(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur == nil || m.cur.token != token {
		return
	}
	log.Printf("⏳ Interactive session %s timed out", token[:8])
	m.teardownLocked()
}

func (m *Manager) teardownLocked() {
	s := m.cur
	if s == nil {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			log.Printf("⚠️ Could not close page: %v", err)
		}
	}
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			log.Printf("⚠️ Could not close context: %v", err)
		}
	}
	m.cur = nil
}
