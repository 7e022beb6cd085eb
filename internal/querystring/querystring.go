// Package querystring encodes and decodes the flat key/value query strings
// the storefront mirrors its filters into.
package querystring

import (
	"net/url"
	"sort"
	"strings"
)

// Params is a flat query: one value per key.
type Params map[string]string

// Get returns the value for key, or "" when absent.
func (p Params) Get(key string) string {
	return p[key]
}

// Parse decodes raw ("a=1&b=2", with or without a leading "?"). Pairs without
// "=" and pairs with an empty key are skipped. When a key repeats, the last
// value wins. Undecodable escapes are kept verbatim.
func Parse(raw string) Params {
	raw = strings.TrimPrefix(raw, "?")
	params := Params{}
	if raw == "" {
		return params
	}
	for _, pair := range strings.Split(raw, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		params[unescape(key)] = unescape(value)
	}
	return params
}

// Encode renders params with keys sorted. Empty values are dropped.
func Encode(params Params) string {
	keys := make([]string, 0, len(params))
	for key, value := range params {
		if key == "" || value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(key))
		b.WriteByte('=')
		b.WriteString(escape(params[key]))
	}
	return b.String()
}

// escape matches encodeURIComponent: spaces become %20, not "+".
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// unescape keeps "+" literal, like decodeURIComponent.
func unescape(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
