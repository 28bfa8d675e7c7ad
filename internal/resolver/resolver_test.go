package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	base     = "https://example.test"
	fullUUID = "deadbeef-1234-5678-9abc-def012345678"
)

func TestDirectAnchorWins(t *testing.T) {
	r := New(base)
	snap := PageSnapshot{
		AnchorHrefs: []string{
			"https://example.test/about",
			"https://example.test/contact/" + fullUUID,
		},
		// markup carries a different token; the direct anchor must win
		HTML: `<a href="/contact/cafebabe-0000-0000-0000-000000000000">x</a>`,
	}

	got := r.Resolve(snap, Listing{ID: "stored-id"})
	assert.Equal(t, base+"/contact/"+fullUUID, got)
}

func TestDirectAnchorRelativeHref(t *testing.T) {
	r := New(base)
	snap := PageSnapshot{AnchorHrefs: []string{"/contact/" + fullUUID}}

	got := r.Resolve(snap, Listing{})
	assert.Equal(t, base+"/contact/"+fullUUID, got)
}

func TestPageScanFromAnchors(t *testing.T) {
	r := New(base)
	// no anchor on the contact path itself, but one embeds the token
	snap := PageSnapshot{
		AnchorHrefs: []string{"https://cdn.example.test/img?src=/contact/" + fullUUID + ".jpg"},
	}

	got := r.Resolve(snap, Listing{ID: "stored-id"})
	assert.Equal(t, base+"/contact/"+fullUUID, got)
}

func TestPageScanFromMarkup(t *testing.T) {
	r := New(base)
	snap := PageSnapshot{
		AnchorHrefs: []string{"https://example.test/english"},
		HTML:        `<script>var contact = "/contact/` + fullUUID + `";</script>`,
	}

	got := r.Resolve(snap, Listing{ID: "stored-id"})
	assert.Equal(t, base+"/contact/"+fullUUID, got)
}

func TestPageScanIsCaseInsensitive(t *testing.T) {
	r := New(base)
	upper := "DEADBEEF-1234-5678-9ABC-DEF012345678"
	snap := PageSnapshot{HTML: `<div data-url="/Contact/` + upper + `"></div>`}

	got := r.Resolve(snap, Listing{ID: "stored-id"})
	assert.Equal(t, base+"/contact/"+upper, got)
}

func TestSlugDerived(t *testing.T) {
	r := New(base)
	snap := PageSnapshot{
		// no contact token anywhere, but the full identifier appears in an
		// image URL and shares its prefix with the listing URL slug
		HTML: `<img src="https://cdn.example.test/photos/` + fullUUID + `/1.jpg">`,
	}
	listing := Listing{
		ID:  "stale-id",
		URL: "https://example.test/apartment-for-rent/amsterdam/deadbeef/keizersgracht",
	}

	got := r.Resolve(snap, listing)
	assert.Equal(t, base+"/contact/"+fullUUID, got)
}

func TestStoredIDFallbackNeverFails(t *testing.T) {
	r := New(base)

	got := r.Resolve(PageSnapshot{}, Listing{ID: fullUUID})
	assert.Equal(t, base+"/contact/"+fullUUID, got)

	// even with nothing at all we still get an address
	got = r.Resolve(PageSnapshot{}, Listing{})
	assert.Equal(t, base+"/contact/", got)
}

func TestLayerOrdering(t *testing.T) {
	r := New(base)
	listing := Listing{
		ID:  "stored-id",
		URL: "https://example.test/apartment-for-rent/amsterdam/deadbeef/gracht",
	}

	// layer 2 beats layer 3: token in markup wins over slug derivation
	snap := PageSnapshot{
		HTML: `/contact/cafebabe-0000-0000-0000-000000000000 and ` + fullUUID,
	}
	got := r.Resolve(snap, listing)
	assert.Equal(t, base+"/contact/cafebabe-0000-0000-0000-000000000000", got)

	// layer 3 beats layer 4 when only the prefixed identifier is present
	snap = PageSnapshot{HTML: "photo: " + fullUUID}
	got = r.Resolve(snap, listing)
	assert.Equal(t, base+"/contact/"+fullUUID, got)
}
