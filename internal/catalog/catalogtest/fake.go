// Package catalogtest provides an in-memory catalog.Querier for tests.
package catalogtest

import (
	"context"
	"sync"

	"github.com/five82/shopfront/internal/catalog"
	"github.com/five82/shopfront/internal/mockapi"
)

// Fake serves queries from a mockapi.Catalog and records every call. Set an
// Err field to make the matching call fail.
type Fake struct {
	mu      sync.Mutex
	catalog *mockapi.Catalog

	ListErr       error
	DetailErr     error
	CategoriesErr error

	Lists      []catalog.ListQuery
	Details    []string
	Categories int
}

// New returns a Fake over products. It panics on duplicate ids.
func New(products ...catalog.Product) *Fake {
	c, err := mockapi.NewCatalog(products)
	if err != nil {
		panic(err)
	}
	return &Fake{catalog: c}
}

// Seed returns a Fake over the embedded seed catalog.
func Seed() *Fake {
	c, err := mockapi.LoadSeed()
	if err != nil {
		panic(err)
	}
	return &Fake{catalog: c}
}

// QueryProducts implements catalog.Querier.
func (f *Fake) QueryProducts(_ context.Context, q catalog.ListQuery) (catalog.ProductList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lists = append(f.Lists, q)
	if f.ListErr != nil {
		return catalog.ProductList{}, f.ListErr
	}
	return f.catalog.List(q), nil
}

// QueryProduct implements catalog.Querier.
func (f *Fake) QueryProduct(_ context.Context, id string) (*catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Details = append(f.Details, id)
	if f.DetailErr != nil {
		return nil, f.DetailErr
	}
	p, ok := f.catalog.Get(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

// FetchCategories implements catalog.Querier.
func (f *Fake) FetchCategories(context.Context) (catalog.Categories, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Categories++
	if f.CategoriesErr != nil {
		return nil, f.CategoriesErr
	}
	return f.catalog.Categories(), nil
}

// LastList returns the most recent list query.
func (f *Fake) LastList() catalog.ListQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Lists) == 0 {
		return catalog.ListQuery{}
	}
	return f.Lists[len(f.Lists)-1]
}

var _ catalog.Querier = (*Fake)(nil)
