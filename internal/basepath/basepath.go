// Package basepath maps between application paths ("/product/1") and the
// full paths shown in the address bar when the app is served under a prefix.
package basepath

import "strings"

// Resolver strips and adds a fixed prefix. The zero value has no prefix.
type Resolver struct {
	Base string
}

// New normalises base: surrounding whitespace and any trailing slash are
// removed, and a missing leading slash is added.
func New(base string) Resolver {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base != "" && !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return Resolver{Base: base}
}

// AppPath strips the base from full. An empty remainder becomes "/". Paths
// outside the base are returned unchanged.
func (r Resolver) AppPath(full string) string {
	if r.Base == "" {
		return orRoot(full)
	}
	if full != r.Base && !strings.HasPrefix(full, r.Base+"/") && !strings.HasPrefix(full, r.Base+"?") {
		return full
	}
	return orRoot(strings.TrimPrefix(full, r.Base))
}

// FullPath prefixes app with the base.
func (r Resolver) FullPath(app string) string {
	if !strings.HasPrefix(app, "/") {
		app = "/" + app
	}
	return r.Base + app
}

func orRoot(p string) string {
	if p == "" || strings.HasPrefix(p, "?") {
		return "/" + p
	}
	return p
}
