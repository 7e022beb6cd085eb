package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/five82/shopfront/internal/catalog"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0원", FormatPrice(0))
	assert.Equal(t, "990원", FormatPrice(990))
	assert.Equal(t, "12,300원", FormatPrice(12300))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
}

func TestStars(t *testing.T) {
	tests := map[float64]string{
		0:   "☆☆☆☆☆",
		3:   "★★★☆☆",
		3.5: "★★★★☆",
		5:   "★★★★★",
		9:   "★★★★★",
		-1:  "☆☆☆☆☆",
	}
	for rating, want := range tests {
		assert.Equal(t, want, Stars(rating), "Stars(%v)", rating)
	}
}

func TestDescriptionIsSanitised(t *testing.T) {
	got := Description(catalog.Product{
		Title:       "Kettle",
		Description: `<p>Boils <b>fast</b></p><script>alert(1)</script><a href="javascript:alert(1)">x</a>`,
	})
	assert.Contains(t, string(got), "<p>Boils <b>fast</b></p>")
	assert.NotContains(t, string(got), "script")
	assert.NotContains(t, string(got), "javascript:")

	assert.Equal(t, "Tea &amp; cups", string(Description(catalog.Product{Title: "Tea & cups"})))
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{" 4.5 ", 4, true},
		{"12abc", 12, true},
		{"-2", -2, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseLeadingInt(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
