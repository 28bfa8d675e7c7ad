package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

const desktopUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Manager owns the playwright driver and one Chromium process. Browser
// contexts are handed out per workflow: a windowed one for the interactive
// login session, storage-state-seeded ones for headless applies.
type Manager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewManager(headless bool) (*Manager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args:     []string{"--no-sandbox", "--disable-setuid-sandbox"},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	return &Manager{pw: pw, browser: browser}, nil
}

// NewInteractiveContext creates the small-viewport context used for the
// human-in-the-loop login session.
func (m *Manager) NewInteractiveContext() (playwright.BrowserContext, error) {
	ctx, err := m.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:  &playwright.Size{Width: 900, Height: 650},
		UserAgent: playwright.String(desktopUserAgent),
		Locale:    playwright.String("nl-NL"),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create interactive context: %w", err)
	}
	return ctx, nil
}

// NewAuthContext creates a context seeded with a previously captured auth
// state so the target site treats it as the same logged-in user.
func (m *Manager) NewAuthContext(state *AuthState) (playwright.BrowserContext, error) {
	ctx, err := m.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:     &playwright.Size{Width: 1280, Height: 900},
		UserAgent:    playwright.String(desktopUserAgent),
		Locale:       playwright.String("nl-NL"),
		StorageState: state.ToOptional(),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create authenticated context: %w", err)
	}
	return ctx, nil
}

func (m *Manager) Close() error {
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			return err
		}
	}
	if m.pw != nil {
		return m.pw.Stop()
	}
	return nil
}
