// Package listing models real-estate listing records and the documents they
// are read from: the GeoJSON-shaped listings feed and the site-data document
// maintained by the admin tooling.
package listing

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/tmpl"
)

// Property keys read from a feature's properties.
const (
	KeyMLSID         = "mlsId"
	KeyFullAddress   = "fullAddress"
	KeyPrettyAddress = "prettyPrinted"
	KeyListPrice     = "listPrice"
	KeyArea          = "area"
	KeyBedrooms      = "bedrooms"
	KeyBathrooms     = "bathrooms"
	KeyFeaturedImage = "featuredImage"
	KeyOtherImages   = "otherImages"
	KeyListingPhoto  = "listingPhoto"
	KeyRemarks       = "remarks"
)

// Geometry is the GeoJSON geometry of a feature.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Record is one listing: a feed feature with flattened attribute properties.
// Properties keep their decoded JSON form (numbers as json.Number).
type Record struct {
	Properties map[string]any `json:"properties"`
	Geometry   *Geometry      `json:"geometry,omitempty"`
}

// MLSID returns the listing identifier, or "" when absent.
func (r Record) MLSID() string {
	return tmpl.Stringify(r.Properties[KeyMLSID])
}

// Has reports whether key is present with a non-null value.
func (r Record) Has(key string) bool {
	v, ok := r.Properties[key]
	return ok && v != nil
}

// String returns the property as display text; absent values are "".
func (r Record) String(key string) string {
	return tmpl.Stringify(r.Properties[key])
}

// Number returns the property as a float. ok is false when the property is
// absent or not numeric.
func (r Record) Number(key string) (float64, bool) {
	return toFloat(r.Properties[key])
}

// SortValue returns the numeric value used for ordering. Missing or
// unparseable values sort as zero.
func (r Record) SortValue(key string) float64 {
	v, _ := r.Number(key)
	return v
}

// Address flattens the nested address into one display string.
func (r Record) Address() string {
	switch v := r.Properties[KeyFullAddress].(type) {
	case string:
		return v
	case map[string]any:
		if pretty, ok := v[KeyPrettyAddress].(string); ok && pretty != "" {
			return pretty
		}
		var parts []string
		for _, k := range []string{"streetNumber", "streetName", "street", "city", "state", "postalCode", "zip"} {
			if s := strings.TrimSpace(tmpl.Stringify(v[k])); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// Images returns the featured image followed by the other images, skipping empties.
func (r Record) Images() []string {
	var out []string
	if s := r.String(KeyFeaturedImage); s != "" {
		out = append(out, s)
	}
	if list, ok := r.Properties[KeyOtherImages].([]any); ok {
		for _, item := range list {
			if s := tmpl.Stringify(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Values flattens the record into template values: scalars are stringified,
// nested objects contribute `parent_child` keys, the address is flattened into
// fullAddress and fullAddressPrettyPrinted, and listPrice is formatted as
// currency. Null values become "".
func (r Record) Values() tmpl.Values {
	out := tmpl.Values{}
	flatten(out, "", r.Properties)

	addr := r.Address()
	out[KeyFullAddress] = addr
	out[KeyFullAddress+"PrettyPrinted"] = addr

	if r.Has(KeyListPrice) {
		out[KeyListPrice] = FormatPriceValue(r.Properties[KeyListPrice])
	} else {
		out[KeyListPrice] = ""
	}
	return out
}

func flatten(out tmpl.Values, prefix string, m map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		key := k
		if prefix != "" {
			key = prefix + "_" + k
		}
		if nested, ok := m[k].(map[string]any); ok {
			flatten(out, key, nested)
			continue
		}
		out[key] = tmpl.Stringify(m[k])
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(n, ",", "")), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
