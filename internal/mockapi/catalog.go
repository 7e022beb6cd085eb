package mockapi

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/five82/shopfront/internal/catalog"
)

//go:embed seed.yaml
var seedYAML []byte

// List defaults and bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	ProductID   string   `yaml:"productId"`
	Title       string   `yaml:"title"`
	Link        string   `yaml:"link"`
	Image       string   `yaml:"image"`
	LPrice      int      `yaml:"lprice"`
	HPrice      int      `yaml:"hprice"`
	MallName    string   `yaml:"mallName"`
	ProductType string   `yaml:"productType"`
	Brand       string   `yaml:"brand"`
	Maker       string   `yaml:"maker"`
	Category1   string   `yaml:"category1"`
	Category2   string   `yaml:"category2"`
	Category3   string   `yaml:"category3"`
	Category4   string   `yaml:"category4"`
	Description string   `yaml:"description"`
	Rating      float64  `yaml:"rating"`
	ReviewCount int      `yaml:"reviewCount"`
	Stock       int      `yaml:"stock"`
	Images      []string `yaml:"images"`
}

func (p seedProduct) product() catalog.Product {
	images := p.Images
	if len(images) == 0 && p.Image != "" {
		images = []string{p.Image}
	}
	return catalog.Product{
		ProductID:   p.ProductID,
		Title:       p.Title,
		Link:        p.Link,
		Image:       p.Image,
		LPrice:      catalog.Price(p.LPrice),
		HPrice:      catalog.Price(p.HPrice),
		MallName:    p.MallName,
		ProductType: p.ProductType,
		Brand:       p.Brand,
		Maker:       p.Maker,
		Category1:   p.Category1,
		Category2:   p.Category2,
		Category3:   p.Category3,
		Category4:   p.Category4,
		Description: p.Description,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		Stock:       p.Stock,
		Images:      images,
	}
}

// Catalog answers product queries from an in-memory product set.
type Catalog struct {
	products []catalog.Product
	byID     map[string]int
}

// LoadSeed parses the embedded seed catalog.
func LoadSeed() (*Catalog, error) {
	return ParseSeed(seedYAML)
}

// ParseSeed parses a YAML document with a top-level products list.
func ParseSeed(data []byte) (*Catalog, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	products := make([]catalog.Product, 0, len(file.Products))
	for _, p := range file.Products {
		products = append(products, p.product())
	}
	return NewCatalog(products)
}

// NewCatalog indexes products. Product ids must be unique and non-empty.
func NewCatalog(products []catalog.Product) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(products))}
	for _, p := range products {
		if p.ProductID == "" {
			return nil, fmt.Errorf("product %q has no id", p.Title)
		}
		if _, dup := c.byID[p.ProductID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ProductID)
		}
		c.byID[p.ProductID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// Len reports the number of products.
func (c *Catalog) Len() int { return len(c.products) }

// Get returns the full product for id.
func (c *Catalog) Get(id string) (catalog.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return catalog.Product{}, false
	}
	return c.products[i], true
}

// Categories builds the category1 -> category2 tree.
func (c *Catalog) Categories() catalog.Categories {
	seen := map[string]map[string]struct{}{}
	for _, p := range c.products {
		if p.Category1 == "" {
			continue
		}
		if seen[p.Category1] == nil {
			seen[p.Category1] = map[string]struct{}{}
		}
		if p.Category2 != "" {
			seen[p.Category1][p.Category2] = struct{}{}
		}
	}
	out := make(catalog.Categories, len(seen))
	for top, children := range seen {
		names := make([]string, 0, len(children))
		for name := range children {
			names = append(names, name)
		}
		sort.Strings(names)
		out[top] = names
	}
	return out
}

// List filters, sorts and pages the catalog. List entries carry summary
// fields only; detail fields come from Get.
func (c *Catalog) List(q catalog.ListQuery) catalog.ProductList {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	sortOrder := q.Sort
	if !catalog.ValidSort(sortOrder) {
		sortOrder = catalog.SortPriceAsc
	}

	matched := c.filter(q)
	sortProducts(matched, sortOrder)

	total := len(matched)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := make([]catalog.Product, 0, end-start)
	for _, p := range matched[start:end] {
		items = append(items, summary(p))
	}
	return catalog.ProductList{
		Products: items,
		Pagination: catalog.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
		Filters: catalog.Filters{
			Search:    q.Search,
			Category1: q.Category1,
			Category2: q.Category2,
			Sort:      sortOrder,
		},
	}
}

func (c *Catalog) filter(q catalog.ListQuery) []catalog.Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]catalog.Product, 0, len(c.products))
	for _, p := range c.products {
		if q.Category1 != "" && p.Category1 != q.Category1 {
			continue
		}
		if q.Category2 != "" && p.Category2 != q.Category2 {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func sortProducts(products []catalog.Product, order string) {
	names := collate.New(language.Korean)
	byName := func(a, b catalog.Product) int { return names.CompareString(a.Title, b.Title) }

	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch order {
		case catalog.SortPriceDesc:
			if a.LPrice != b.LPrice {
				return a.LPrice > b.LPrice
			}
			return byName(a, b) < 0
		case catalog.SortNameAsc:
			return byName(a, b) < 0
		case catalog.SortNameDesc:
			return byName(a, b) > 0
		default:
			if a.LPrice != b.LPrice {
				return a.LPrice < b.LPrice
			}
			return byName(a, b) < 0
		}
	})
}

func summary(p catalog.Product) catalog.Product {
	p.Description = ""
	p.Rating = 0
	p.ReviewCount = 0
	p.Stock = 0
	p.Images = nil
	return p
}
