package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopfront/internal/catalog"
	"github.com/five82/shopfront/internal/eventbus"
	"github.com/five82/shopfront/internal/storage"
	"github.com/five82/shopfront/internal/toast"
)

type recordingNotifier struct {
	messages []string
	kinds    []toast.Kind
}

func (n *recordingNotifier) Show(message string, kind toast.Kind) {
	n.messages = append(n.messages, message)
	n.kinds = append(n.kinds, kind)
}

type cartFixture struct {
	cart   *Cart
	kv     *storage.Memory
	notes  *recordingNotifier
	events []string
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	f := &cartFixture{kv: storage.NewMemory(), notes: &recordingNotifier{}}
	bus := eventbus.New(nil)
	for _, name := range []string{eventbus.CartAdded, eventbus.CartRemoved, eventbus.CartUpdated, eventbus.CartCleared} {
		name := name
		bus.On(name, func(any) { f.events = append(f.events, name) })
	}
	f.cart = NewCart(CartOptions{Storage: f.kv, Bus: bus, Notifier: f.notes})
	return f
}

func (f *cartFixture) persisted(t *testing.T) []Item {
	t.Helper()
	raw, ok := f.kv.Get(CartStorageKey)
	require.True(t, ok, "cart should be persisted")
	var items []Item
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	return items
}

var (
	soap  = catalog.Product{ProductID: "1", Title: "Soap", LPrice: 220}
	towel = catalog.Product{ProductID: "2", Title: "Towel", LPrice: 1200}
	pan   = catalog.Product{ProductID: "3", Title: "Pan", LPrice: 15000}
)

func TestCartAddMergesAndDefaultsQuantity(t *testing.T) {
	f := newCartFixture(t)
	f.cart.Add(soap, 0)
	f.cart.Add(towel, 2)
	f.cart.Add(soap, 3)

	items := f.cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ProductID, "insertion order is kept")
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, 2, items[1].Quantity)
	assert.Equal(t, 2, f.cart.Count())
	assert.Equal(t, catalog.Price(4*220+2*1200), f.cart.Total())

	assert.Equal(t, items, f.persisted(t))
	assert.Equal(t, []string{eventbus.CartAdded, eventbus.CartAdded, eventbus.CartAdded}, f.events)
	assert.Equal(t, []toast.Kind{toast.Success, toast.Success, toast.Success}, f.notes.kinds)
}

func TestCartRemoveNotifiesOnlyWhenSomethingWasRemoved(t *testing.T) {
	f := newCartFixture(t)
	f.cart.Add(soap, 1)
	f.notes.messages = nil

	f.cart.Remove("missing")
	assert.Empty(t, f.notes.messages)

	f.cart.Remove("1")
	assert.Equal(t, []string{"Removed Soap from cart"}, f.notes.messages)
	assert.Zero(t, f.cart.Count())
	assert.Empty(t, f.persisted(t))
}

func TestCartRemoveSelected(t *testing.T) {
	f := newCartFixture(t)
	f.cart.Add(soap, 1)
	f.cart.Add(towel, 1)
	f.cart.Add(pan, 1)
	f.notes.messages = nil

	f.cart.RemoveSelected([]string{"1", "3", "nope"})
	require.Len(t, f.cart.Items(), 1)
	assert.Equal(t, "2", f.cart.Items()[0].ProductID)
	assert.Equal(t, []string{"Removed 2 selected items"}, f.notes.messages)

	f.cart.RemoveSelected([]string{"nope"})
	assert.Len(t, f.notes.messages, 1)
}

func TestCartUpdateQuantity(t *testing.T) {
	f := newCartFixture(t)
	f.cart.Add(soap, 1)
	f.events = nil

	f.cart.UpdateQuantity("missing", 5)
	assert.Empty(t, f.events)

	f.cart.UpdateQuantity("1", 5)
	item, ok := f.cart.Item("1")
	require.True(t, ok)
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, 5, f.persisted(t)[0].Quantity)

	f.cart.UpdateQuantity("1", 0)
	_, ok = f.cart.Item("1")
	assert.False(t, ok)
	assert.Equal(t, []string{eventbus.CartUpdated, eventbus.CartRemoved}, f.events)
}

func TestCartClear(t *testing.T) {
	f := newCartFixture(t)
	f.cart.Clear()
	assert.Empty(t, f.notes.messages, "clearing an empty cart is silent")

	f.cart.Add(soap, 1)
	f.notes.messages = nil
	f.cart.Clear()
	assert.Equal(t, []string{"Cart cleared"}, f.notes.messages)
	assert.Empty(t, f.persisted(t))
}

func TestCartResetAndClearAll(t *testing.T) {
	f := newCartFixture(t)
	f.cart.Add(soap, 1)
	f.notes.messages = nil

	f.cart.Reset()
	assert.Zero(t, f.cart.Count())
	assert.Empty(t, f.persisted(t))
	assert.Empty(t, f.notes.messages)

	f.cart.Add(soap, 1)
	f.cart.ClearAll()
	_, ok := f.kv.Get(CartStorageKey)
	assert.False(t, ok)
}

func TestCartLoad(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		set   bool
		want  []Item
		start bool
	}{
		{name: "missing key keeps cart", set: false, start: true, want: []Item{{ProductID: "1", Title: "Soap", LPrice: 220, Quantity: 1}}},
		{name: "valid array", set: true, raw: `[{"productId":"9","title":"Lamp","lprice":"5000","quantity":2}]`, want: []Item{{ProductID: "9", Title: "Lamp", LPrice: 5000, Quantity: 2}}},
		{name: "malformed json resets", set: true, raw: `[{`, start: true},
		{name: "non-array resets", set: true, raw: `{"productId":"9"}`, start: true},
		{name: "duplicates merged", set: true, raw: `[{"productId":"9","quantity":1},{"productId":"9","quantity":2},{"title":"no id"}]`, want: []Item{{ProductID: "9", Quantity: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCartFixture(t)
			if tt.start {
				f.cart.Add(soap, 1)
				if tt.set {
					require.NoError(t, f.kv.Set(CartStorageKey, tt.raw))
				} else {
					require.NoError(t, f.kv.Remove(CartStorageKey))
				}
			} else if tt.set {
				require.NoError(t, f.kv.Set(CartStorageKey, tt.raw))
			}

			f.cart.Load()
			assert.Equal(t, tt.want, f.cart.Items())
		})
	}
}
