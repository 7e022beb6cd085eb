package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cardMarkup = `
<div class="product-card" data-product-id="42">
  <div class="product-info" data-product-id="42" tabindex="0">
    <h3 class="product-title"> Shampoo </h3>
    <p class="product-price">₩1,200</p>
  </div>
  <button class="add-to-cart-btn" data-product-id="42">Add</button>
</div>
<select id="sort-select">
  <option value="price_asc">Low</option>
  <option value="name_asc" selected>Name</option>
</select>
<input id="quantity-input" type="number" value="3">`

func TestQueryAndAttributes(t *testing.T) {
	doc := New(nil)
	require.NoError(t, doc.SetRootHTML(cardMarkup))

	title := doc.QuerySelector(".product-title")
	require.False(t, title.IsZero())
	assert.Equal(t, "h3", title.Tag())
	assert.Equal(t, "Shampoo", title.Text())

	card := title.Closest(".product-card")
	assert.Equal(t, "42", card.Data("product-id"))
	assert.True(t, card.Contains(title))
	assert.False(t, title.Contains(card))

	assert.True(t, doc.QuerySelector("#missing").IsZero())
	assert.Len(t, doc.QuerySelectorAll("[data-product-id]"), 3)
	assert.Equal(t, doc.QuerySelector(".product-title"), title, "handles to the same node compare equal")
}

func TestFormValues(t *testing.T) {
	doc := New(nil)
	require.NoError(t, doc.SetRootHTML(cardMarkup))

	sel := doc.QuerySelector("#sort-select")
	assert.Equal(t, "name_asc", sel.Value())
	sel.SetValue("price_asc")
	assert.Equal(t, "price_asc", sel.Value())

	input := doc.QuerySelector("#quantity-input")
	assert.Equal(t, "3", input.Value())
	input.SetValue("7")
	assert.Equal(t, "7", input.Value())
}

func TestMutationsBumpRevision(t *testing.T) {
	doc := New(nil)
	start := doc.Revision()
	require.NoError(t, doc.SetRootHTML(`<span class="cart-badge">1</span>`))
	afterRender := doc.Revision()
	assert.Greater(t, afterRender, start)

	badge := doc.QuerySelector(".cart-badge")
	badge.SetText("2")
	assert.Equal(t, "2", badge.Text())
	assert.Greater(t, doc.Revision(), afterRender)

	rev := doc.Revision()
	badge.SetAttr("class", "cart-badge")
	assert.Equal(t, rev, doc.Revision(), "writing the same value is not a change")

	badge.Remove()
	assert.True(t, doc.QuerySelector(".cart-badge").IsZero())
}

func TestBodyHoldsOverlays(t *testing.T) {
	doc := New(nil)
	modal, err := doc.Body().AppendHTML(`<div id="cart-modal-container"><button id="close">x</button></div>`)
	require.NoError(t, err)
	assert.Equal(t, "cart-modal-container", modal.ID())
	assert.False(t, doc.QuerySelector("#close").IsZero())
	assert.True(t, doc.Root().QuerySelector("#close").IsZero(), "overlay lives outside the mount point")

	require.NoError(t, doc.SetRootHTML(`<p>page</p>`))
	assert.False(t, doc.QuerySelector("#cart-modal-container").IsZero(), "rendering the page keeps overlays")
}

func TestCheckboxState(t *testing.T) {
	doc := New(nil)
	require.NoError(t, doc.SetRootHTML(`<input type="checkbox" class="cart-item-checkbox">`))
	box := doc.QuerySelector(".cart-item-checkbox")
	assert.False(t, box.Checked())
	box.SetChecked(true)
	assert.True(t, box.Checked())
	box.SetChecked(false)
	assert.False(t, box.Checked())
}
