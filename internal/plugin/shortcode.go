package plugin

import (
	"fmt"
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// Shortcodes look like [plugin:name key1=val1,key2=val2]. The older
// [script:name ...] prefix is accepted as an alias.
//
// Values run verbatim to the next comma or the closing bracket; there is no
// escaping, so values cannot contain ',' or ']'. Keys and values are trimmed.
var shortcodePattern = regexp.MustCompile(`\[(?:plugin|script):(\w+)(?:\s+([^\]]*))?\]`)

// Invocation is a parsed shortcode.
type Invocation struct {
	Name   string
	Params map[string]string
	// Raw is the shortcode text as it appeared in the content.
	Raw string
}

// ParseParams parses a comma-separated key=value blob. Empty segments are
// ignored; a segment without '=' or with an empty key is an error.
func ParseParams(blob string) (map[string]string, error) {
	params := make(map[string]string)
	if strings.TrimSpace(blob) == "" {
		return params, nil
	}
	for _, pair := range strings.Split(blob, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, ferrors.PluginError(ErrMalformedShortcode.Message()).
				WithCause(fmt.Errorf("parameter %q is not key=value", strings.TrimSpace(pair))).
				Build()
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}

// ParseShortcode parses a single shortcode string.
func ParseShortcode(raw string) (Invocation, error) {
	m := shortcodePattern.FindStringSubmatch(raw)
	if m == nil || m[0] != raw {
		return Invocation{}, ferrors.PluginError(ErrMalformedShortcode.Message()).
			WithContext("shortcode", raw).
			Build()
	}
	params, err := ParseParams(m[2])
	if err != nil {
		return Invocation{Name: m[1], Raw: raw}, err
	}
	return Invocation{Name: m[1], Params: params, Raw: raw}, nil
}
