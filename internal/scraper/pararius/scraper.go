package pararius

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"go-rental-agent/internal/browser"
	"go-rental-agent/internal/models"
)

const (
	maxResults  = 50
	perPage     = 30
	navTimeout  = 30000
	siteBaseURL = "https://www.pararius.com"
)

var (
	searchURLRe = regexp.MustCompile(`^(https://)(www\.)?(pararius\.com/apartments)(/(?:[a-zA-Z0-9\-]+))+?(/page-\d{1,2})?/?$`)
	zipRe       = regexp.MustCompile(`^\d{4}\s[A-Z]{2}`)
	hoodRe      = regexp.MustCompile(`\(([^)]+)\)`)
)

type ParariusScraper struct{}

func New() *ParariusScraper {
	return &ParariusScraper{}
}

func (s *ParariusScraper) Name() string {
	return "Pararius"
}

// NormalizeSearchURL validates a search URL and strips any page suffix.
func NormalizeSearchURL(raw string) (string, error) {
	raw = strings.TrimRight(raw, "/")
	if !searchURLRe.MatchString(raw) {
		return "", fmt.Errorf("invalid Pararius search URL: %s", raw)
	}
	if idx := strings.Index(raw, "/page-"); idx >= 0 {
		raw = raw[:idx]
	}
	return raw, nil
}

func (s *ParariusScraper) Scrape(ctx context.Context, page playwright.Page, searchURL string) ([]models.Property, error) {
	cleanURL, err := NormalizeSearchURL(searchURL)
	if err != nil {
		return nil, err
	}
	log.Printf("📋 Searching Pararius: %s", cleanURL)

	all, totalCount, err := s.scrapePage(page, cleanURL+"/page-1")
	if err != nil {
		return nil, err
	}

	if totalCount > maxResults {
		totalCount = maxResults
	}
	totalPages := (totalCount + perPage - 1) / perPage

	for i := 2; i <= totalPages && len(all) < maxResults; i++ {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		browser.RandomDelay(300, 800)
		pageProps, _, err := s.scrapePage(page, fmt.Sprintf("%s/page-%d", cleanURL, i))
		if err != nil {
			log.Printf("⚠️ Error fetching page %d: %v", i, err)
			continue
		}
		all = append(all, pageProps...)
	}

	if len(all) > maxResults {
		all = all[:maxResults]
	}
	log.Printf("📦 Found %d listings", len(all))
	return all, nil
}

func (s *ParariusScraper) scrapePage(page playwright.Page, url string) ([]models.Property, int, error) {
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navTimeout),
	}); err != nil {
		return nil, 0, fmt.Errorf("could not open %s: %w", url, err)
	}

	browser.DismissConsent(page)
	if err := browser.HumanScroll(page); err != nil {
		log.Printf("⚠️ Scroll failed: %v", err)
	}

	countText, _ := page.Locator("h1.search-list-header__heading").TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(2000),
	})
	totalCount, _ := strconv.Atoi(leadingDigits(strings.TrimSpace(countText)))

	cards, err := page.Locator("li.search-list__item--listing section.listing-search-item").All()
	if err != nil {
		return nil, totalCount, fmt.Errorf("could not find listing cards: %w", err)
	}

	var props []models.Property
	for _, card := range cards {
		prop, ok := parseCard(card)
		if !ok {
			continue
		}
		props = append(props, prop)
	}
	if totalCount == 0 {
		totalCount = len(props)
	}
	return props, totalCount, nil
}

func parseCard(card playwright.Locator) (models.Property, bool) {
	titleEl := card.Locator("a.listing-search-item__link--title").First()
	name, _ := titleEl.TextContent(playwright.LocatorTextContentOptions{Timeout: playwright.Float(500)})
	href, _ := titleEl.GetAttribute("href")
	name = collapseSpaces(name)
	if name == "" || href == "" {
		return models.Property{}, false
	}

	id, _ := card.Locator("form[data-listing-id]").First().GetAttribute("data-listing-id", playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(500),
	})
	if id == "" {
		id = idFromHref(href)
	}
	if id == "" {
		return models.Property{}, false
	}

	priceRaw, _ := card.Locator("span.listing-search-item__price-main").First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(500),
	})

	subTitle, _ := card.Locator("div.listing-search-item__sub-title").First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(500),
	})
	zipCode, neighborhood, city := ParseSubTitle(subTitle)

	agentEl := card.Locator("div.listing-search-item__info > a.listing-search-item__link").First()
	agentName, _ := agentEl.TextContent(playwright.LocatorTextContentOptions{Timeout: playwright.Float(500)})
	agentURL, _ := agentEl.GetAttribute("href")

	surfaceRaw, _ := card.Locator("li.illustrated-features__item--surface-area").First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(500),
	})
	roomsRaw, _ := card.Locator("li.illustrated-features__item--number-of-rooms").First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(500),
	})
	furniture, _ := card.Locator("li.illustrated-features__item--interior").First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(500),
	})

	totalRooms, _ := strconv.Atoi(leadingDigits(strings.TrimSpace(roomsRaw)))
	bedrooms := totalRooms
	if totalRooms > 1 {
		bedrooms = totalRooms - 1
	}

	return models.Property{
		ID:            id,
		Name:          name,
		URL:           siteBaseURL + strings.TrimSpace(href),
		Price:         ParsePrice(priceRaw),
		ZipCode:       zipCode,
		City:          city,
		Neighborhood:  neighborhood,
		AgentName:     collapseSpaces(agentName),
		AgentURL:      strings.TrimSpace(agentURL),
		SurfaceArea:   parseLeadingInt(surfaceRaw),
		Bedrooms:      bedrooms,
		Furniture:     strings.TrimSpace(furniture),
		State:         models.PropertyNew,
		DiscoveryDate: time.Now().Format("02-01-2006"),
	}, true
}

// ParsePrice extracts the integer monthly rent from a display string like
// "€1,850 per month".
func ParsePrice(raw string) int {
	cleaned := strings.NewReplacer("€", "", ",", "", ".", "").Replace(strings.TrimSpace(raw))
	return parseLeadingInt(cleaned)
}

// ParseSubTitle splits a card subtitle like "1017 KN Amsterdam (Grachtengordel)"
// into zip code, neighborhood and city.
func ParseSubTitle(subTitle string) (zipCode, neighborhood, city string) {
	subTitle = collapseSpaces(subTitle)
	zipCode = zipRe.FindString(subTitle)
	if m := hoodRe.FindStringSubmatch(subTitle); m != nil {
		neighborhood = m[1]
	}

	city = subTitle
	city = strings.Replace(city, zipCode, "", 1)
	if neighborhood != "" {
		city = strings.Replace(city, "("+neighborhood+")", "", 1)
	}
	city = strings.TrimSpace(strings.ReplaceAll(city, ",", ""))
	return zipCode, neighborhood, city
}

// idFromHref pulls the listing id out of a detail-page path like
// /apartment-for-rent/amsterdam/deadbeef/keizersgracht.
func idFromHref(href string) string {
	parts := strings.Split(strings.TrimSpace(href), "/")
	if len(parts) > 3 {
		return parts[3]
	}
	return ""
}

// collapseSpaces trims a string and collapses runs of whitespace into
// single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parseLeadingInt(s string) int {
	n, _ := strconv.Atoi(leadingDigits(strings.TrimSpace(s)))
	return n
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
