// Package catalog provides the HTTP client for the storefront's product API.
//
// # Endpoints
//
//	GET /api/products        paged, filtered, sorted product list
//	GET /api/products/{id}   one product with detail fields
//	GET /api/categories      category1 -> category2 tree
//
// # Client Usage
//
//	client, err := catalog.NewClient("127.0.0.1:7490")
//	if err != nil {
//		return err
//	}
//	list, err := client.QueryProducts(ctx, catalog.ListQuery{Page: 1, Limit: 20, Sort: catalog.SortPriceAsc})
//
// A 404 from the detail endpoint is reported as ErrNotFound; other non-2xx
// responses come back as *StatusError.
//
// Prices arrive as JSON numbers or as numeric strings depending on the
// upstream feed, so Price accepts both.
package catalog
