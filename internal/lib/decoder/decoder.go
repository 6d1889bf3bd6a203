// Package decoder turns qs-style query strings (duration[gt]=90&genre[]=Drama)
// into structs tagged for gorilla/schema.
package decoder

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
)

type URLDecoder struct {
	schema *schema.Decoder
}

func New() *URLDecoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return &URLDecoder{schema: d}
}

func (d *URLDecoder) Decode(dst any, src url.Values) error {
	return d.schema.Decode(dst, Normalize(src))
}

// Normalize rewrites bracket keys into dotted paths. Array forms
// (genre[]=a, genre[0]=a) collapse into repeated values of the bare key,
// ordered by index.
func Normalize(src url.Values) url.Values {
	type indexed struct {
		idx   int
		value string
	}
	out := make(url.Values, len(src))
	arrays := make(map[string][]indexed)
	for key, values := range src {
		path, idx, isArray := parseKey(key)
		if isArray {
			for _, v := range values {
				arrays[path] = append(arrays[path], indexed{idx, v})
			}
			continue
		}
		out[path] = append(out[path], values...)
	}
	for path, items := range arrays {
		sort.SliceStable(items, func(i, j int) bool { return items[i].idx < items[j].idx })
		for _, item := range items {
			out[path] = append(out[path], item.value)
		}
	}
	return out
}

// parseKey splits "a[b][c]" into "a.b.c". A trailing "[]" or "[N]" marks an array element.
func parseKey(key string) (path string, idx int, isArray bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, 0, false
	}
	parts := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return key, 0, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return key, 0, false
		}
		parts = append(parts, rest[1:end])
		rest = rest[end+1:]
	}
	last := parts[len(parts)-1]
	if last == "" {
		return strings.Join(parts[:len(parts)-1], "."), 0, true
	}
	if n, err := strconv.Atoi(last); err == nil {
		return strings.Join(parts[:len(parts)-1], "."), n, true
	}
	return strings.Join(parts, "."), 0, false
}
