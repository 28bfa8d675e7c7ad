package browser

import (
	"encoding/base64"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// JPEGScreenshot captures the page as a base64 JPEG suitable for polling
// over JSON. Quality 70 keeps frames small enough for ~1Hz polling.
func JPEGScreenshot(page playwright.Page) (string, error) {
	buf, err := page.Screenshot(playwright.PageScreenshotOptions{
		Type:    playwright.ScreenshotTypeJpeg,
		Quality: playwright.Int(70),
	})
	if err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
