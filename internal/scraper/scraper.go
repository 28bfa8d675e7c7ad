// Define an interface for all listing scrapers
// Ensure consistency

package scraper

import (
	"context"

	"github.com/playwright-community/playwright-go"

	"go-rental-agent/internal/models"
)

//Scraper defines the interface that all listing-site scrapers must implement
type Scraper interface {
	//Scrape listings from a search-results URL
	Scrape(ctx context.Context, page playwright.Page, searchURL string) ([]models.Property, error)

	//Name is the listing site name
	Name() string
}
