package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Sort orders accepted by the list endpoint.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
)

// SortOrders lists the valid sort values in display order.
var SortOrders = []string{SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc}

// ValidSort reports whether s is a known sort order.
func ValidSort(s string) bool {
	for _, o := range SortOrders {
		if o == s {
			return true
		}
	}
	return false
}

// Price is an amount in won.
type Price int

// UnmarshalJSON accepts 1200, "1200" and "".
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*p = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("parse price %q: %w", s, err)
		}
		*p = Price(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parse price: %w", err)
	}
	*p = Price(n)
	return nil
}

// Product is a catalog entry. The detail endpoint fills the fields after
// Category4.
type Product struct {
	ProductID   string `json:"productId"`
	Title       string `json:"title"`
	Link        string `json:"link,omitempty"`
	Image       string `json:"image"`
	LPrice      Price  `json:"lprice"`
	HPrice      Price  `json:"hprice,omitempty"`
	MallName    string `json:"mallName,omitempty"`
	ProductType string `json:"productType,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Maker       string `json:"maker,omitempty"`
	Category1   string `json:"category1,omitempty"`
	Category2   string `json:"category2,omitempty"`
	Category3   string `json:"category3,omitempty"`
	Category4   string `json:"category4,omitempty"`

	Description string   `json:"description,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	ReviewCount int      `json:"reviewCount,omitempty"`
	Stock       int      `json:"stock,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// ListQuery selects a page of products. Zero fields are omitted from the
// request and the server defaults apply.
type ListQuery struct {
	Page      int
	Limit     int
	Search    string
	Category1 string
	Category2 string
	Sort      string
}

// Pagination describes the page returned by the list endpoint.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Filters echoes the filters the server applied.
type Filters struct {
	Search    string `json:"search"`
	Category1 string `json:"category1"`
	Category2 string `json:"category2"`
	Sort      string `json:"sort"`
}

// ProductList is the list endpoint payload.
type ProductList struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
	Filters    Filters    `json:"filters"`
}

// Categories maps each category1 to its category2 names, sorted.
type Categories map[string][]string

// Top returns the category1 names, sorted.
func (c Categories) Top() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnmarshalJSON reads the nested-object form {"cat1": {"cat2": {}}}.
func (c *Categories) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Categories, len(raw))
	for top, children := range raw {
		names := make([]string, 0, len(children))
		for name := range children {
			names = append(names, name)
		}
		sort.Strings(names)
		out[top] = names
	}
	*c = out
	return nil
}

// MarshalJSON writes the nested-object form.
func (c Categories) MarshalJSON() ([]byte, error) {
	raw := make(map[string]map[string]struct{}, len(c))
	for top, children := range c {
		nested := make(map[string]struct{}, len(children))
		for _, name := range children {
			nested[name] = struct{}{}
		}
		raw[top] = nested
	}
	return json.Marshal(raw)
}
