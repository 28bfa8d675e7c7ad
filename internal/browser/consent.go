package browser

import (
	"log"

	"github.com/playwright-community/playwright-go"
)

const consentSelectors = `button:has-text("Accepteer"), button:has-text("Allow all"), button:has-text("Agree"), button:has-text("Akkoord"), button:has-text("Alles accepteren")`

// DismissConsent clicks through cookie/consent overlays when present.
// Best effort with a bounded wait; navigation continues either way.
func DismissConsent(page playwright.Page) {
	// OneTrust overlay first
	onetrust := page.Locator("#onetrust-accept-btn-handler, .onetrust-close-btn-handler")
	if VisibleWithin(onetrust, 1500) {
		if err := onetrust.Click(); err != nil {
			log.Printf("⚠️ Could not dismiss OneTrust overlay: %v", err)
		}
		page.WaitForTimeout(800)
	}

	// Generic consent buttons
	btn := page.Locator(consentSelectors).First()
	if VisibleWithin(btn, 1500) {
		if err := btn.Click(); err != nil {
			log.Printf("⚠️ Could not dismiss consent banner: %v", err)
		}
		page.WaitForTimeout(800)
	}
}

// VisibleWithin waits up to timeoutMs for the locator to become visible.
func VisibleWithin(loc playwright.Locator, timeoutMs float64) bool {
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(timeoutMs),
	})
	return err == nil
}
