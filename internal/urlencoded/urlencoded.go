// Package urlencoded decodes application/x-www-form-urlencoded bodies
// into key/value pairs, using net/url for percent-decoding.
package urlencoded

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/minum-go/minum/internal/herr"
)

// nullSentinel is the literal value that normalizes to the empty
// string.
const nullSentinel = "%NULL%"

// Parse decodes raw as "k=v&k2=v2...". A token without '=' is a parse
// error. An empty key (token begins with '=') fails naming the blank
// key. A repeated key fails naming the key and quoting both values. An
// empty value (token ends with '=') maps the key to "".
func Parse(raw string) (map[string]string, error) {
	out := map[string]string{}
	if raw == "" {
		return out, nil
	}

	for _, tok := range strings.Split(raw, "&") {
		eq := strings.IndexByte(tok, '=')
		if eq < 0 {
			return nil, fmt.Errorf("token %q has no '=': %w", tok, herr.ErrParse)
		}

		rawKey, rawVal := tok[:eq], tok[eq+1:]
		if rawKey == "" {
			return nil, fmt.Errorf("The key must not be blank: %w", herr.ErrParse)
		}

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("bad percent-encoding in key %q: %w", rawKey, herr.ErrParse)
		}

		var value string
		if rawVal == "" {
			value = ""
		} else if rawVal == nullSentinel {
			value = ""
		} else {
			value, err = url.QueryUnescape(rawVal)
			if err != nil {
				return nil, fmt.Errorf("bad percent-encoding in value %q: %w", rawVal, herr.ErrParse)
			}
		}

		if existing, ok := out[key]; ok {
			return nil, fmt.Errorf(
				"%s was duplicated in the post body - had values of %s and %s: %w",
				key, existing, value, herr.ErrParse,
			)
		}
		out[key] = value
	}

	return out, nil
}
