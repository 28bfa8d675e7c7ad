package resolver

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Snapshot harvests the pieces of a live page the strategies work on.
func Snapshot(page playwright.Page) (PageSnapshot, error) {
	snap := PageSnapshot{URL: page.URL()}

	hrefs, err := page.Evaluate(`() => Array.from(document.querySelectorAll('a[href]')).map(a => a.href)`)
	if err != nil {
		return snap, fmt.Errorf("could not collect anchors: %w", err)
	}
	if list, ok := hrefs.([]interface{}); ok {
		for _, h := range list {
			if s, ok := h.(string); ok {
				snap.AnchorHrefs = append(snap.AnchorHrefs, s)
			}
		}
	}

	html, err := page.Content()
	if err != nil {
		return snap, fmt.Errorf("could not read page content: %w", err)
	}
	snap.HTML = html
	return snap, nil
}
