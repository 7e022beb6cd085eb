package ui

import (
	"strconv"
	"strings"

	"github.com/five82/shopfront/internal/dom"
)

func isCheckbox(el dom.Element) bool {
	return el.Tag() == "input" && strings.EqualFold(el.Attr("type"), "checkbox")
}

// isTextInput reports whether el takes typed text.
func isTextInput(el dom.Element) bool {
	if el.Tag() != "input" {
		return false
	}
	switch strings.ToLower(el.Attr("type")) {
	case "checkbox", "radio", "hidden", "button", "submit":
		return false
	}
	return true
}

// nextOption returns the value of the option after the selected one,
// wrapping around.
func nextOption(sel dom.Element) (string, bool) {
	options := sel.QuerySelectorAll("option")
	if len(options) == 0 {
		return "", false
	}
	current := sel.Value()
	for i, opt := range options {
		if optionValue(opt) == current {
			return optionValue(options[(i+1)%len(options)]), true
		}
	}
	return optionValue(options[0]), true
}

func optionValue(opt dom.Element) string {
	if opt.HasAttr("value") {
		return opt.Attr("value")
	}
	return opt.Text()
}

// identity attributes, in key order
var keyAttrs = []string{"id", "class", "href", "data-product-id", "data-category1", "data-category2", "data-breadcrumb"}

// focusKeys gives every focusable a key that survives re-rendering: the
// element's identifying attributes plus its position among elements with the
// same attributes.
func focusKeys(focusables []dom.Element) map[dom.Element]string {
	keys := make(map[dom.Element]string, len(focusables))
	seen := make(map[string]int, len(focusables))
	for _, el := range focusables {
		var b strings.Builder
		b.WriteString(el.Tag())
		for _, attr := range keyAttrs {
			if v := el.Attr(attr); v != "" {
				b.WriteString("|")
				b.WriteString(attr)
				b.WriteString("=")
				b.WriteString(v)
			}
		}
		base := b.String()
		n := seen[base]
		seen[base] = n + 1
		keys[el] = base + "#" + strconv.Itoa(n)
	}
	return keys
}
