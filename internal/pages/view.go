package pages

import (
	"html/template"
	"strconv"

	"github.com/five82/shopfront/internal/catalog"
	"github.com/five82/shopfront/internal/state"
)

// Page sizes offered by the limit select.
var pageSizes = []int{10, 20, 50, 100}

var sortLabels = map[string]string{
	catalog.SortPriceAsc:  "Price: low to high",
	catalog.SortPriceDesc: "Price: high to low",
	catalog.SortNameAsc:   "Name: A to Z",
	catalog.SortNameDesc:  "Name: Z to A",
}

// maxSkeletons caps the placeholder rows shown while the first page loads.
const maxSkeletons = 8

type option struct {
	Value    string
	Label    string
	Selected bool
}

type category struct {
	Parent   string
	Name     string
	Selected bool
}

type listView struct {
	CartCount         int
	SearchDraft       string
	Filters           state.Filters
	CategoriesLoading bool
	TopCategories     []category
	SubCategories     []category
	Limits            []option
	Sorts             []option
	Skeleton          []int
	Products          []catalog.Product
	IsLoading         bool
	Error             error
	TotalCount        int
	HasMore           bool
}

func newListView(st state.ProductListState, draft string, cartCount int) listView {
	v := listView{
		CartCount:         cartCount,
		SearchDraft:       draft,
		Filters:           st.Filters,
		CategoriesLoading: st.CategoriesLoading,
		Products:          st.Products,
		IsLoading:         st.IsLoading,
		Error:             st.Error,
		TotalCount:        st.TotalCount,
		HasMore:           len(st.Products) < st.TotalCount,
	}
	for _, name := range st.Categories.Top() {
		v.TopCategories = append(v.TopCategories, category{Name: name})
	}
	for _, name := range st.Categories[st.Filters.Category1] {
		v.SubCategories = append(v.SubCategories, category{
			Parent:   st.Filters.Category1,
			Name:     name,
			Selected: name == st.Filters.Category2,
		})
	}
	for _, n := range pageSizes {
		v.Limits = append(v.Limits, option{
			Value:    strconv.Itoa(n),
			Label:    strconv.Itoa(n) + " per page",
			Selected: n == st.Filters.Limit,
		})
	}
	for _, s := range catalog.SortOrders {
		v.Sorts = append(v.Sorts, option{Value: s, Label: sortLabels[s], Selected: s == st.Filters.Sort})
	}
	// A replacing fetch shows placeholders; the next page loads below the
	// products already shown.
	if st.IsLoading && (st.Filters.Page <= 1 || len(st.Products) == 0) {
		n := min(st.Filters.Limit, maxSkeletons)
		v.Skeleton = make([]int, n)
		v.Error = nil
	}
	return v
}

type detailView struct {
	CartCount      int
	Product        *catalog.Product
	Related        []catalog.Product
	Quantity       int
	IsLoading      bool
	RelatedLoading bool
	Failed         bool
	Rating         float64
	ReviewCount    int
	Description    template.HTML
}

func newDetailView(st state.DetailState, cartCount int) detailView {
	v := detailView{
		CartCount:      cartCount,
		Product:        st.Product,
		Related:        st.Related,
		Quantity:       st.Quantity,
		IsLoading:      st.IsLoading,
		RelatedLoading: st.RelatedLoading,
		Failed:         st.Error != nil || st.Product == nil,
		Rating:         st.Rating,
		ReviewCount:    st.ReviewCount,
	}
	if st.Product != nil {
		v.Description = Description(*st.Product)
	}
	return v
}

type cartItemView struct {
	state.Item
	Selected bool
}

type cartView struct {
	Items         []cartItemView
	AllSelected   bool
	SelectedCount int
	SelectedTotal catalog.Price
	Total         catalog.Price
}

func newCartView(items []state.Item, total catalog.Price, selected map[string]bool) cartView {
	v := cartView{Total: total}
	for _, it := range items {
		sel := selected[it.ProductID]
		v.Items = append(v.Items, cartItemView{Item: it, Selected: sel})
		if sel {
			v.SelectedCount++
			v.SelectedTotal += it.Subtotal()
		}
	}
	v.AllSelected = len(v.Items) > 0 && v.SelectedCount == len(v.Items)
	return v
}
