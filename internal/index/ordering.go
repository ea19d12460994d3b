// Package index builds the paginated listing index: one page sequence per
// ordering, with pagination and ordering navigation on every page.
package index

import (
	"cmp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/listing"
)

// DefaultPageSize is the number of listings per index page.
const DefaultPageSize = 20

// Ordering is a named sort of the listing records. An empty Key keeps the
// source order.
type Ordering struct {
	Name       string
	Key        string
	Descending bool
}

// Label is the ordering name with spaces replaced by underscores, used in
// page file names.
func (o Ordering) Label() string {
	return strings.ReplaceAll(o.Name, " ", "_")
}

// Default orderings, in navigation order.
var (
	MostRecent        = Ordering{Name: "Most Recent"}
	HighestPriceFirst = Ordering{Name: "Highest Price First", Key: listing.KeyListPrice, Descending: true}
	LowestPriceFirst  = Ordering{Name: "Lowest Price First", Key: listing.KeyListPrice}
)

// DefaultOrderings returns the three standard orderings.
func DefaultOrderings() []Ordering {
	return []Ordering{MostRecent, HighestPriceFirst, LowestPriceFirst}
}

// Sort returns the records in the ordering's order without modifying the
// input. The sort is stable and a record missing the key sorts as zero.
func Sort(records []listing.Record, o Ordering) []listing.Record {
	out := make([]listing.Record, 0, len(records))
	for _, i := range Permutation(records, o) {
		out = append(out, records[i])
	}
	return out
}

// Permutation returns the indexes of records in the ordering's order.
func Permutation(records []listing.Record, o Ordering) []int {
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	if o.Key == "" {
		return idx
	}
	keys := make([]float64, len(records))
	for i, r := range records {
		keys[i] = r.SortValue(o.Key)
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		c := cmp.Compare(keys[a], keys[b])
		if o.Descending {
			return -c
		}
		return c
	})
	return idx
}
