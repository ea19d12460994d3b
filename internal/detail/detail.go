// Package detail renders one page per listing, named listing_{mlsId}.html.
package detail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/listing"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/tmpl"
)

// absentPrice is shown on a detail page when a listing has no price.
const absentPrice = "N/A"

// Templates holds the templates a detail pass renders with.
type Templates struct {
	Content     *tmpl.Template
	Master      *tmpl.Template
	Attribution *tmpl.Template
}

// LoadTemplates reads the listing content, filled master and attribution
// templates from dir.
func LoadTemplates(dir string) (Templates, error) {
	all, err := tmpl.LoadAll(dir, tmpl.ListingContentTemplateFile, tmpl.FilledMasterTemplateFile, tmpl.AttributionTemplateFile)
	if err != nil {
		return Templates{}, err
	}
	return Templates{
		Content:     all[tmpl.ListingContentTemplateFile],
		Master:      all[tmpl.FilledMasterTemplateFile],
		Attribution: all[tmpl.AttributionTemplateFile],
	}, nil
}

// FileName returns the detail page name for a listing id.
func FileName(mlsID string) string {
	return "listing_" + mlsID + ".html"
}

// Feature is one labelled attribute in a feature section.
type Feature struct {
	Category string
	Value    string
}

// Section renders features as one div per category, with the paragraph only
// when the value is present.
func Section(features []Feature) string {
	var b strings.Builder
	for _, f := range features {
		fmt.Fprintf(&b, "<div class=\"%s\">\n", f.Category)
		if f.Value != "" {
			fmt.Fprintf(&b, "    <p><strong>%s:</strong> %s</p>\n", f.Category, f.Value)
		}
		b.WriteString("</div>\n")
	}
	return b.String()
}

// Gallery renders one img per image.
func Gallery(images []string) string {
	tags := make([]string, len(images))
	for i, img := range images {
		tags[i] = fmt.Sprintf(`<img src="%s" alt="Image of property">`, img)
	}
	return strings.Join(tags, "\n")
}

// Builder writes detail pages into one namespace directory.
type Builder struct {
	Templates Templates
	// Now stamps the attribution's last_updated_date.
	Now    func() time.Time
	Logger *slog.Logger
}

// NewBuilder creates a builder stamping pages with the current date.
func NewBuilder(t Templates, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{Templates: t, Now: time.Now, Logger: logger}
}

// Build writes a page for each record with an id. Records without one, or
// whose id is not usable in a file name, are skipped with a warning.
func (b *Builder) Build(ctx context.Context, records []listing.Record, w *output.Writer) (*output.GeneratedFileSet, error) {
	if b.Templates.Content == nil || b.Templates.Master == nil || b.Templates.Attribution == nil {
		return nil, ferrors.InternalError("detail templates not loaded").Build()
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	attribution := b.Templates.Attribution.Render(tmpl.Values{
		"last_updated_date": now().Format(time.DateOnly),
	})

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := rec.MLSID()
		if id == "" {
			b.Logger.Warn("Skipping listing without mlsId", slog.Int("index", i))
			continue
		}
		name := FileName(id)
		if err := output.ValidName(name); err != nil {
			b.Logger.Warn("Skipping listing with unusable mlsId", slog.Int("index", i), slog.String("mls_id", id))
			continue
		}
		content := b.Templates.Content.Render(Values(rec, attribution))
		page := b.Templates.Master.Render(tmpl.Values{
			"content": content,
			"title":   rec.Address(),
		})
		if _, err := w.Write(name, page); err != nil {
			return nil, err
		}
	}
	b.Logger.Debug("Wrote listing details", logfields.Path(w.Dir()), logfields.Count(w.Set().Len()))
	return w.Set(), nil
}

// Values computes the listing content template values for rec.
func Values(rec listing.Record, attribution string) tmpl.Values {
	price := absentPrice
	if p := listingPrice(rec); p != "" {
		price = p
	}

	area := ""
	if rec.Has(listing.KeyArea) {
		area = rec.String(listing.KeyArea) + " sqft"
	}

	values := rec.Values()
	return values.Merge(tmpl.Values{
		"remarks":       rec.String(listing.KeyRemarks),
		"address":       rec.Address(),
		"listPrice":     price,
		"image_gallery": Gallery(rec.Images()),
		"interior_features": Section([]Feature{
			{"Bedrooms", rec.String(listing.KeyBedrooms)},
			{"Bathrooms", rec.String(listing.KeyBathrooms)},
			{"Area", area},
			{"Flooring", rec.String("flooring")},
			{"Year Built", rec.String("yearBuilt")},
			{"Cooling", rec.String("cooling")},
			{"Heating", rec.String("heating")},
		}),
		"exterior_features": Section([]Feature{
			{"View", rec.String("view")},
			{"Water", rec.String("water")},
			{"Construction", rec.String("construction")},
		}),
		"area_lot_features": Section([]Feature{
			{"Lot Size", rec.String("lotSize")},
		}),
		"financial_features": Section([]Feature{
			{"List Price", listingPrice(rec)},
			{"Sub Type", rec.String("subType")},
			{"Subdivision", rec.String("subdivision")},
			{"Parking", rec.String("parking")},
		}),
		"mls_attribution": attribution,
	})
}

func listingPrice(rec listing.Record) string {
	if !rec.Has(listing.KeyListPrice) {
		return ""
	}
	return listing.FormatPriceValue(rec.Properties[listing.KeyListPrice])
}
