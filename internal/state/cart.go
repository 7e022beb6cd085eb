package state

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/catalog"
	"github.com/five82/shopfront/internal/eventbus"
	"github.com/five82/shopfront/internal/storage"
	"github.com/five82/shopfront/internal/toast"
)

// CartStorageKey is the storage key the cart persists under.
const CartStorageKey = "shopping_cart"

// Notifier shows user-facing messages.
type Notifier interface {
	Show(message string, kind toast.Kind)
}

// Item is one cart line.
type Item struct {
	ProductID string        `json:"productId"`
	Title     string        `json:"title"`
	Image     string        `json:"image,omitempty"`
	LPrice    catalog.Price `json:"lprice"`
	Brand     string        `json:"brand,omitempty"`
	Quantity  int           `json:"quantity"`
}

// Subtotal is price times quantity.
func (i Item) Subtotal() catalog.Price {
	return i.LPrice * catalog.Price(i.Quantity)
}

// CartChange is the payload of every cart event.
type CartChange struct {
	ProductIDs []string
	Count      int
}

// CartOptions configure a Cart.
type CartOptions struct {
	// Storage defaults to an in-memory store.
	Storage  storage.KV
	Bus      *eventbus.Bus
	Notifier Notifier
	Logger   *zap.Logger
}

// Cart is the shopping cart. Items keep insertion order and are unique by
// product id.
type Cart struct {
	items  []Item
	kv     storage.KV
	bus    *eventbus.Bus
	notify Notifier
	log    *zap.Logger
}

// NewCart returns an empty cart. Call Load to restore the persisted one.
func NewCart(opts CartOptions) *Cart {
	if opts.Storage == nil {
		opts.Storage = storage.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Cart{kv: opts.Storage, bus: opts.Bus, notify: opts.Notifier, log: opts.Logger}
}

// Add puts qty of product in the cart. A non-positive qty counts as 1.
func (c *Cart) Add(product catalog.Product, qty int) {
	if qty <= 0 {
		qty = 1
	}
	if i := c.index(product.ProductID); i >= 0 {
		c.items[i].Quantity += qty
	} else {
		c.items = append(c.items, Item{
			ProductID: product.ProductID,
			Title:     product.Title,
			Image:     product.Image,
			LPrice:    product.LPrice,
			Brand:     product.Brand,
			Quantity:  qty,
		})
	}
	c.save()
	c.emit(eventbus.CartAdded, product.ProductID)
	c.show("Added to cart", toast.Success)
}

// Remove drops the item for id.
func (c *Cart) Remove(id string) {
	i := c.index(id)
	var removed *Item
	if i >= 0 {
		item := c.items[i]
		removed = &item
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	c.save()
	c.emit(eventbus.CartRemoved, id)
	if removed != nil {
		c.show(fmt.Sprintf("Removed %s from cart", removed.Title), toast.Info)
	}
}

// RemoveSelected drops every item whose id is in ids.
func (c *Cart) RemoveSelected(ids []string) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := c.items[:0:0]
	var removed []string
	for _, item := range c.items {
		if drop[item.ProductID] {
			removed = append(removed, item.ProductID)
			continue
		}
		kept = append(kept, item)
	}
	c.items = kept
	c.save()
	c.emit(eventbus.CartRemoved, removed...)
	if len(removed) > 0 {
		c.show(fmt.Sprintf("Removed %d selected items", len(removed)), toast.Info)
	}
}

// UpdateQuantity sets the quantity for id. Unknown ids are ignored and a
// non-positive quantity removes the item.
func (c *Cart) UpdateQuantity(id string, qty int) {
	i := c.index(id)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.Remove(id)
		return
	}
	c.items[i].Quantity = qty
	c.save()
	c.emit(eventbus.CartUpdated, id)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	had := len(c.items)
	c.items = nil
	c.save()
	c.emit(eventbus.CartCleared)
	if had > 0 {
		c.show("Cart cleared", toast.Info)
	}
}

// Reset empties the cart and persists the empty cart without notifying.
func (c *Cart) Reset() {
	c.items = nil
	c.save()
	c.emit(eventbus.CartCleared)
}

// ClearAll empties the cart and deletes the persisted copy.
func (c *Cart) ClearAll() {
	c.items = nil
	if err := c.kv.Remove(CartStorageKey); err != nil {
		c.log.Warn("remove persisted cart", zap.Error(err))
	}
	c.emit(eventbus.CartCleared)
}

// Count is the number of distinct items.
func (c *Cart) Count() int { return len(c.items) }

// Total is the sum of every item's subtotal.
func (c *Cart) Total() catalog.Price {
	var total catalog.Price
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []Item {
	if len(c.items) == 0 {
		return nil
	}
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Item returns the line for id.
func (c *Cart) Item(id string) (Item, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return Item{}, false
}

// Load replaces the in-memory cart with the persisted one. A missing key
// leaves the cart empty; an unreadable value resets it.
func (c *Cart) Load() {
	raw, ok := c.kv.Get(CartStorageKey)
	if !ok {
		return
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.log.Warn("discarding malformed persisted cart", zap.Error(err))
		c.items = nil
		return
	}
	c.items = normalise(items)
}

func normalise(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			continue
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if i, dup := seen[item.ProductID]; dup {
			out[i].Quantity += item.Quantity
			continue
		}
		seen[item.ProductID] = len(out)
		out = append(out, item)
	}
	return out
}

func (c *Cart) index(id string) int {
	for i, item := range c.items {
		if item.ProductID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) save() {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		c.log.Error("encode cart", zap.Error(err))
		return
	}
	if err := c.kv.Set(CartStorageKey, string(data)); err != nil {
		c.log.Warn("persist cart", zap.Error(err))
	}
}

func (c *Cart) emit(event string, ids ...string) {
	if c.bus == nil {
		return
	}
	c.bus.Emit(event, CartChange{ProductIDs: ids, Count: len(c.items)})
}

func (c *Cart) show(message string, kind toast.Kind) {
	if c.notify != nil {
		c.notify.Show(message, kind)
	}
}
