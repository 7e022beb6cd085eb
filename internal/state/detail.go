package state

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/catalog"
	"github.com/five82/shopfront/internal/loop"
)

// Related product query bounds.
const (
	relatedQueryLimit = 20
	relatedMax        = 19
)

// DetailState is a snapshot of the detail view.
type DetailState struct {
	Product        *catalog.Product
	Related        []catalog.Product
	Quantity       int
	IsLoading      bool
	RelatedLoading bool
	Error          error
	Rating         float64
	ReviewCount    int
}

// DetailOptions configure a Detail store.
type DetailOptions struct {
	API    catalog.Querier
	Loop   loop.Loop
	Cart   *Cart
	Logger *zap.Logger
}

// Detail is the product detail view: one product, the quantity picker and
// related products from the same category2.
type Detail struct {
	state      DetailState
	api        catalog.Querier
	loop       loop.Loop
	cart       *Cart
	log        *zap.Logger
	render     func()
	onQuantity func(int)

	// gen identifies the newest FetchDetail; completions from older calls
	// are dropped.
	gen     uint64
	current string
}

// NewDetail returns a detail store in the loading state.
func NewDetail(opts DetailOptions) *Detail {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Detail{
		state:      DetailState{Quantity: 1, IsLoading: true},
		api:        opts.API,
		loop:       opts.Loop,
		cart:       opts.Cart,
		log:        opts.Logger,
		render:     func() {},
		onQuantity: func(int) {},
	}
}

// SetRender installs the page's render callback.
func (s *Detail) SetRender(render func()) {
	if render == nil {
		render = func() {}
	}
	s.render = render
}

// OnQuantity installs the callback that receives quantity changes made
// outside a render (the page writes the value into its input).
func (s *Detail) OnQuantity(fn func(int)) {
	if fn == nil {
		fn = func(int) {}
	}
	s.onQuantity = fn
}

// State returns a snapshot.
func (s *Detail) State() DetailState {
	snap := s.state
	if s.state.Product != nil {
		p := *s.state.Product
		snap.Product = &p
	}
	if len(s.state.Related) > 0 {
		snap.Related = make([]catalog.Product, len(s.state.Related))
		copy(snap.Related, s.state.Related)
	}
	return snap
}

// Quantity returns the selected quantity.
func (s *Detail) Quantity() int { return s.state.Quantity }

// FetchDetail loads product id and then its related products.
func (s *Detail) FetchDetail(ctx context.Context, id string) {
	s.gen++
	gen := s.gen
	s.current = id

	s.state = DetailState{Quantity: 1, IsLoading: true}
	s.render()

	api := s.api
	s.loop.Go(func() func() {
		product, err := api.QueryProduct(ctx, id)
		return func() { s.completeDetail(ctx, gen, product, err) }
	})
}

func (s *Detail) completeDetail(ctx context.Context, gen uint64, product *catalog.Product, err error) {
	if gen != s.gen {
		s.log.Debug("discarding stale product detail", zap.String("product", s.current))
		return
	}

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		s.state.Error = fmt.Errorf("%w: %s", ErrProductNotFound, s.current)
	case err != nil:
		s.state.Error = err
	case product == nil:
		s.state.Error = fmt.Errorf("%w: %s", ErrProductNotFound, s.current)
	default:
		s.state.Product = product
		s.state.Rating = product.Rating
		s.state.ReviewCount = product.ReviewCount
	}
	if s.state.Error != nil {
		s.log.Warn("fetch product detail", zap.String("product", s.current), zap.Error(s.state.Error))
	}

	s.state.IsLoading = false
	s.render()

	if s.state.Product != nil {
		s.loadRelated(ctx, gen, *s.state.Product)
	}
}

func (s *Detail) loadRelated(ctx context.Context, gen uint64, product catalog.Product) {
	s.state.RelatedLoading = true
	s.render()

	q := catalog.ListQuery{Category2: product.Category2, Limit: relatedQueryLimit}
	api := s.api
	s.loop.Go(func() func() {
		list, err := api.QueryProducts(ctx, q)
		return func() {
			if gen != s.gen {
				return
			}
			if err != nil {
				s.log.Warn("fetch related products", zap.String("product", product.ProductID), zap.Error(err))
			} else {
				related := make([]catalog.Product, 0, len(list.Products))
				for _, p := range list.Products {
					if p.ProductID == product.ProductID {
						continue
					}
					related = append(related, p)
					if len(related) == relatedMax {
						break
					}
				}
				s.state.Related = related
			}
			s.state.RelatedLoading = false
			s.render()
		}
	})
}

// maxQuantity is the product's stock; missing stock is unbounded.
func (s *Detail) maxQuantity() int {
	if s.state.Product == nil || s.state.Product.Stock <= 0 {
		return math.MaxInt
	}
	return s.state.Product.Stock
}

// Increase adds one, up to the stock.
func (s *Detail) Increase() {
	if s.state.Quantity < s.maxQuantity() {
		s.state.Quantity++
	}
	s.onQuantity(s.state.Quantity)
}

// Decrease removes one, down to 1.
func (s *Detail) Decrease() {
	if s.state.Quantity > 1 {
		s.state.Quantity--
	}
	s.onQuantity(s.state.Quantity)
}

// UpdateQuantity applies text typed into the quantity input. Text that is not
// a number resets the quantity to 1 and always notifies, so the input gets
// rewritten; a number is clamped to [1, stock] and notifies only when the
// quantity changes.
func (s *Detail) UpdateQuantity(raw string) {
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if raw == "" || err != nil || math.IsNaN(f) {
		s.state.Quantity = 1
		s.onQuantity(1)
		return
	}

	q := leadingInt(raw)
	if q < 1 {
		q = 1
	}
	if ceiling := s.maxQuantity(); q > ceiling {
		q = ceiling
	}
	if q != s.state.Quantity {
		s.state.Quantity = q
		s.onQuantity(q)
	}
}

// leadingInt parses the optional sign and digits at the start of s. It
// returns 0 when there are none and saturates instead of overflowing.
func leadingInt(s string) int {
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		d := int(r - '0')
		if n > (math.MaxInt-d)/10 {
			n = math.MaxInt
			break
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}

// AddToCart adds the selected quantity of the product to the cart.
func (s *Detail) AddToCart() {
	if s.state.Product == nil || s.cart == nil {
		return
	}
	s.cart.Add(*s.state.Product, s.state.Quantity)
}
