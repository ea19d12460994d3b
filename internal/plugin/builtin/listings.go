package builtin

import (
	"context"
	"fmt"
	"html"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/listing"
	"git.home.luguber.info/inful/sitegen/internal/plugin"
)

// DetailHref returns the site-absolute link to a listing's detail page.
func DetailHref(mlsID string) string {
	return "/listing/listing_" + mlsID + ".html"
}

// Listings renders the first N feed entries as featured cards.
type Listings struct {
	File string
}

// Generate implements plugin.Generator.
func (g Listings) Generate(ctx context.Context, req plugin.Request) (string, error) {
	if err := ensureContext(ctx); err != nil {
		return "", err
	}
	n, err := count(req)
	if err != nil {
		return "", err
	}
	records, err := listing.LoadFeed(resolve(req.Root, g.File))
	if err != nil {
		return "", err
	}
	if n < len(records) {
		records = records[:n]
	}

	e := html.EscapeString
	var b strings.Builder
	b.WriteString("<section class=\"re-listings-section\">\n<div class=\"re-listings-grid\">\n")
	for _, r := range records {
		price := ""
		if r.Has(listing.KeyListPrice) {
			price = listing.FormatPriceValue(r.Properties[listing.KeyListPrice])
		}
		b.WriteString("<div class=\"re-listing-item\">\n")
		fmt.Fprintf(&b, "<img src=\"%s\" alt=\"Listing Photo\">\n", e(r.String(listing.KeyListingPhoto)))
		fmt.Fprintf(&b, "<p>%s</p>\n", e(r.Address()))
		fmt.Fprintf(&b, "<p>Bedrooms: %s, Bathrooms: %s, Area: %s sqft</p>\n",
			e(r.String(listing.KeyBedrooms)), e(r.String(listing.KeyBathrooms)), e(r.String(listing.KeyArea)))
		fmt.Fprintf(&b, "<p class=\"re-listing-price\">Price: %s</p>\n", e(price))
		fmt.Fprintf(&b, "<a href=\"%s\">More Information</a>\n", e(DetailHref(r.MLSID())))
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n</section>")
	return b.String(), nil
}
