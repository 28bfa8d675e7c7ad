// Layered contact-endpoint resolution for rental listings.
// Each layer is a pure strategy over a page snapshot; the first one that
// yields an address wins. The last layer always yields, so navigation (not
// resolution) is where a bad address surfaces.

package resolver

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	contactPathRe = regexp.MustCompile(`(?i)/contact/([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)
	urlSlugRe     = regexp.MustCompile(`(?i)/([0-9a-f]{8})/`)
)

// PageSnapshot is everything the strategies need from a listing page,
// harvested once so the strategies stay browser-free.
type PageSnapshot struct {
	URL         string
	AnchorHrefs []string // resolved (absolute) anchor targets
	HTML        string
}

// Listing identifies the property whose contact form is being resolved.
type Listing struct {
	ID  string
	URL string
}

// Strategy tries one resolution layer. ok is false when the layer yields
// nothing and the next layer should be tried.
type Strategy func(snap PageSnapshot, listing Listing) (address string, ok bool)

// Resolver resolves the application-form address for a listing page.
type Resolver struct {
	baseURL    string
	strategies []Strategy
}

func New(baseURL string) *Resolver {
	r := &Resolver{baseURL: strings.TrimRight(baseURL, "/")}
	r.strategies = []Strategy{
		r.directAnchor,
		r.pageScan,
		r.slugDerived,
		r.storedID,
	}
	return r
}

// Resolve walks the layers in order. It never fails: the final layer falls
// back to the listing's stored id.
func (r *Resolver) Resolve(snap PageSnapshot, listing Listing) string {
	for _, strategy := range r.strategies {
		if addr, ok := strategy(snap, listing); ok {
			return addr
		}
	}
	// unreachable: storedID always yields
	return r.contactURL(listing.ID)
}

// directAnchor: an anchor that already points at the contact path.
func (r *Resolver) directAnchor(snap PageSnapshot, _ Listing) (string, bool) {
	for _, href := range snap.AnchorHrefs {
		if path := hrefPath(href); strings.HasPrefix(path, "/contact/") {
			if strings.HasPrefix(href, "/") {
				return r.baseURL + href, true
			}
			return href, true
		}
	}
	return "", false
}

// pageScan: any contact-path token in anchor targets, then the raw markup.
func (r *Resolver) pageScan(snap PageSnapshot, _ Listing) (string, bool) {
	for _, href := range snap.AnchorHrefs {
		if m := contactPathRe.FindStringSubmatch(href); m != nil {
			return r.contactURL(m[1]), true
		}
	}
	if m := contactPathRe.FindStringSubmatch(snap.HTML); m != nil {
		return r.contactURL(m[1]), true
	}
	return "", false
}

// slugDerived: the listing URL carries a short 8-hex identifier; look for a
// full identifier with that prefix anywhere in the page source (images,
// scripts, data attributes).
func (r *Resolver) slugDerived(snap PageSnapshot, listing Listing) (string, bool) {
	m := urlSlugRe.FindStringSubmatch(listing.URL)
	if m == nil {
		return "", false
	}
	slug := m[1]

	fullRe, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(slug) + `-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	if err != nil {
		return "", false
	}
	if full := fullRe.FindString(snap.HTML); full != "" {
		return r.contactURL(full), true
	}
	return "", false
}

// storedID: last resort, the identifier already known for the listing.
// It may be stale; the navigation step after resolution catches that.
func (r *Resolver) storedID(_ PageSnapshot, listing Listing) (string, bool) {
	return r.contactURL(listing.ID), true
}

func (r *Resolver) contactURL(id string) string {
	return r.baseURL + "/contact/" + id
}

func hrefPath(href string) string {
	if strings.HasPrefix(href, "/") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Path
}
