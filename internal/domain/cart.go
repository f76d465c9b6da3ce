package domain

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/text/currency"
)

type LineItem struct {
	Artwork  Artwork
	Quantity int
}

func (li LineItem) ItemID() string {
	return li.Artwork.ID
}

func (li LineItem) UnitPrice() Money {
	return li.Artwork.Price
}

func (li LineItem) Subtotal() Money {
	return li.Artwork.Price.Mul(li.Quantity)
}

// Cart holds at most one LineItem per artwork ID. Quantities are always >= 1;
// removal is the only way an item reaches zero.
type Cart struct {
	currency currency.Unit
	items    []LineItem
}

func NewCart(cur currency.Unit) *Cart {
	return &Cart{currency: cur}
}

func (c *Cart) Currency() currency.Unit {
	return c.currency
}

// AddItem merges into an existing line or appends a new one with the price
// snapshotted from the artwork. A price without a currency takes the cart
// currency. The total count must stay within int range.
func (c *Cart) AddItem(artwork Artwork, quantity int) error {
	if artwork.ID == "" {
		return ErrEmptyItemID
	}
	if quantity < 1 {
		return fmt.Errorf("quantity[%d]: %w", quantity, ErrInvalidQuantity)
	}
	if quantity > math.MaxInt-c.Count() {
		return fmt.Errorf("quantity[%d] overflows cart count[%d]: %w", quantity, c.Count(), ErrInvalidQuantity)
	}
	if !artwork.Price.HasCurrency() {
		artwork.Price.Currency = c.currency
	}
	if artwork.Price.Currency != c.currency {
		return fmt.Errorf("artwork[%s] priced in %s, cart in %s: %w",
			artwork.ID, artwork.Price.Currency, c.currency, ErrCurrencyMismatch)
	}

	if i := c.indexOf(artwork.ID); i >= 0 {
		c.items[i].Quantity += quantity
		return nil
	}

	c.items = append(c.items, LineItem{Artwork: artwork, Quantity: quantity})

	return nil
}

func (c *Cart) RemoveItem(itemID string) bool {
	i := c.indexOf(itemID)
	if i < 0 {
		return false
	}

	c.items = slices.Delete(c.items, i, i+1)

	return true
}

// UpdateQuantity replaces the quantity of an existing line. A quantity of zero
// or less removes the line. Unknown IDs are ignored, as is a quantity that
// would overflow the cart count.
func (c *Cart) UpdateQuantity(itemID string, quantity int) bool {
	if quantity <= 0 {
		return c.RemoveItem(itemID)
	}

	i := c.indexOf(itemID)
	if i < 0 {
		return false
	}
	if quantity > math.MaxInt-(c.Count()-c.items[i].Quantity) {
		return false
	}

	c.items[i].Quantity = quantity

	return true
}

// Subtract lowers each matching line by the given quantities and removes lines
// that reach zero. Lines not listed, or added since the quantities were taken,
// are kept. It reports whether anything changed.
func (c *Cart) Subtract(items []LineItem) bool {
	var changed bool
	for _, item := range items {
		i := c.indexOf(item.ItemID())
		if i < 0 || item.Quantity < 1 {
			continue
		}

		changed = true
		if c.items[i].Quantity <= item.Quantity {
			c.items = slices.Delete(c.items, i, i+1)
			continue
		}
		c.items[i].Quantity -= item.Quantity
	}

	return changed
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Contains(itemID string) bool {
	return c.indexOf(itemID) >= 0
}

func (c *Cart) Items() []LineItem {
	return slices.Clone(c.items)
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Count() int {
	var n int
	for _, item := range c.items {
		n += item.Quantity
	}

	return n
}

func (c *Cart) Total() Money {
	total := ZeroMoney(c.currency)
	for _, item := range c.items {
		total.Amount = total.Amount.Add(item.Subtotal().Amount)
	}

	return total
}

func (c *Cart) Clone() *Cart {
	return &Cart{currency: c.currency, items: slices.Clone(c.items)}
}

func (c *Cart) indexOf(itemID string) int {
	return slices.IndexFunc(c.items, func(li LineItem) bool {
		return li.Artwork.ID == itemID
	})
}
