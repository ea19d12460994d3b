package index

import (
	"fmt"
	"strconv"
	"strings"
)

// PageCount returns ceil(n/pageSize). Zero records yield zero pages.
func PageCount(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// PageBounds returns the half-open record range [start, end) of 1-based page.
func PageBounds(page, pageSize, n int) (int, int) {
	start := min((page-1)*pageSize, n)
	end := min(page*pageSize, n)
	return start, end
}

// PageFileName names page n of an ordering. Page 1 of the default ordering is
// the site's index.html.
func PageFileName(o Ordering, page int) string {
	if page == 1 && o.Label() == MostRecent.Label() {
		return "index.html"
	}
	return fmt.Sprintf("%s_page_%d.html", o.Label(), page)
}

// navWindow is how many pages either side of the current page get a link.
const navWindow = 2

// NavItem is one entry of the pagination bar. Page is zero for an ellipsis.
type NavItem struct {
	Page    int
	Href    string
	Current bool
}

// Ellipsis reports whether the item marks a gap.
func (n NavItem) Ellipsis() bool { return n.Page == 0 }

// NavItems computes the numbered part of the pagination bar for current of
// total. The first and last page are always present, pages within the window
// around current are present, and a single ellipsis marks every gap.
func NavItems(o Ordering, current, total int) []NavItem {
	var items []NavItem
	last := 0
	for p := 1; p <= total; p++ {
		if p != 1 && p != total && (p < current-navWindow || p > current+navWindow) {
			continue
		}
		if last != 0 && p-last > 1 {
			items = append(items, NavItem{})
		}
		items = append(items, NavItem{Page: p, Href: PageFileName(o, p), Current: p == current})
		last = p
	}
	return items
}

// Navigation renders the pagination bar: Previous, the numbered links and
// Next. Previous is omitted on the first page and Next on the last.
func Navigation(o Ordering, current, total int) string {
	parts := make([]string, 0, total+2)
	if current > 1 {
		parts = append(parts, fmt.Sprintf(`<a href="%s">&laquo; Previous</a>`, PageFileName(o, current-1)))
	}
	for _, item := range NavItems(o, current, total) {
		switch {
		case item.Ellipsis():
			parts = append(parts, "...")
		case item.Current:
			parts = append(parts, "<span>"+strconv.Itoa(item.Page)+"</span>")
		default:
			parts = append(parts, fmt.Sprintf(`<a href="%s">%d</a>`, item.Href, item.Page))
		}
	}
	if current < total {
		parts = append(parts, fmt.Sprintf(`<a href="%s">Next &raquo;</a>`, PageFileName(o, current+1)))
	}
	return strings.Join(parts, " ")
}

// OrderingNavigation renders the links switching between orderings.
func OrderingNavigation(orderings []Ordering) string {
	links := make([]string, 0, len(orderings))
	for _, o := range orderings {
		links = append(links, fmt.Sprintf(`<a href="%s">%s</a>`, PageFileName(o, 1), o.Name))
	}
	return `<div class="listing-navigation"> ` + strings.Join(links, " | ") + `</div>`
}
