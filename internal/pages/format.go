package pages

import (
	"html/template"
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/five82/shopfront/internal/catalog"
)

var (
	printer = message.NewPrinter(language.Korean)
	ugc     = bluemonday.UGCPolicy()
)

// FormatPrice renders a price in won with grouped thousands ("12,300원").
func FormatPrice(p catalog.Price) string {
	return printer.Sprintf("%d원", int(p))
}

// FormatCount groups the thousands of n.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// Stars renders a five star rating. A partial star counts as lit.
func Stars(rating float64) string {
	if math.IsNaN(rating) || rating < 0 {
		rating = 0
	}
	lit := int(math.Ceil(rating))
	if lit > 5 {
		lit = 5
	}
	return strings.Repeat("★", lit) + strings.Repeat("☆", 5-lit)
}

// Description sanitises the product description for the detail page and
// falls back to the title when there is none.
func Description(p catalog.Product) template.HTML {
	desc := strings.TrimSpace(ugc.Sanitize(p.Description))
	if desc == "" {
		return template.HTML(template.HTMLEscapeString(p.Title))
	}
	return template.HTML(desc)
}
