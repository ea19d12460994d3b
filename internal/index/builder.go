package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/listing"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/tmpl"
)

// Templates holds the templates an index pass renders with.
type Templates struct {
	// Row is rendered once per listing with the record's values.
	Row *tmpl.Template
	// Master wraps every page; it receives content and title.
	Master *tmpl.Template
}

// LoadTemplates reads the row template and the filled master template from dir.
func LoadTemplates(dir string) (Templates, error) {
	row, err := tmpl.Load(dir, tmpl.ListingRowTemplateFile)
	if err != nil {
		return Templates{}, err
	}
	master, err := tmpl.Load(dir, tmpl.FilledMasterTemplateFile)
	if err != nil {
		return Templates{}, err
	}
	return Templates{Row: row, Master: master}, nil
}

// Builder writes index pages into one namespace directory.
type Builder struct {
	Templates Templates
	Orderings []Ordering
	PageSize  int
	Logger    *slog.Logger
}

// NewBuilder creates a builder with the default orderings and page size.
func NewBuilder(t Templates, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{Templates: t, Orderings: DefaultOrderings(), PageSize: DefaultPageSize, Logger: logger}
}

// Build writes every page of every ordering through w and returns the set of
// files written. Reconciling the set is left to the caller, after the whole
// pass has succeeded.
func (b *Builder) Build(ctx context.Context, records []listing.Record, w *output.Writer) (*output.GeneratedFileSet, error) {
	if b.Templates.Row == nil || b.Templates.Master == nil {
		return nil, ferrors.InternalError("index templates not loaded").Build()
	}
	pageSize := b.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	orderings := b.Orderings
	if len(orderings) == 0 {
		orderings = DefaultOrderings()
	}

	rows := make([]string, len(records))
	for i := range records {
		rows[i] = b.Templates.Row.Render(records[i].Values()) + "\n"
	}
	orderNav := OrderingNavigation(orderings)

	for _, o := range orderings {
		sorted := make([]string, 0, len(rows))
		for _, i := range Permutation(records, o) {
			sorted = append(sorted, rows[i])
		}
		total := PageCount(len(sorted), pageSize)
		for page := 1; page <= total; page++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			start, end := PageBounds(page, pageSize, len(sorted))
			content := renderPage(orderNav, sorted[start:end], Navigation(o, page, total))
			values := tmpl.Values{
				"content": content,
				"title":   PageTitle(o, page),
			}
			name := PageFileName(o, page)
			if _, err := w.Write(name, b.Templates.Master.Render(values)); err != nil {
				return nil, err
			}
		}
		b.Logger.Debug("Wrote index ordering", logfields.Ordering(o.Label()), logfields.Count(total))
	}
	return w.Set(), nil
}

// PageTitle is the title of an index page.
func PageTitle(o Ordering, page int) string {
	return fmt.Sprintf("%s Listings - Page %d", o.Name, page)
}

func renderPage(orderNav string, rows []string, nav string) string {
	var sb strings.Builder
	sb.WriteString("<div class='listing-table'>")
	sb.WriteString(orderNav)
	for _, r := range rows {
		sb.WriteString(r)
	}
	sb.WriteString("</div><nav class='pagination'>")
	sb.WriteString(nav)
	sb.WriteString("</nav>")
	return sb.String()
}
