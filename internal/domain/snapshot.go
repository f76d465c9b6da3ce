package domain

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/currency"
)

type cartEntry struct {
	Artwork  Artwork `json:"artwork"`
	Quantity int     `json:"quantity"`
}

// MarshalCartSnapshot encodes the persisted cart layout: an array of
// {"artwork": ..., "quantity": n}. An empty cart encodes as [].
func MarshalCartSnapshot(c *Cart) ([]byte, error) {
	entries := make([]cartEntry, 0, len(c.items))
	for _, item := range c.items {
		entries = append(entries, cartEntry{Artwork: item.Artwork, Quantity: item.Quantity})
	}

	return json.Marshal(entries)
}

// UnmarshalCartSnapshot rebuilds a cart and returns how many entries were
// dropped. Entries with an empty ID, quantity below one or a foreign currency
// are dropped; duplicate IDs are merged by summing quantities.
func UnmarshalCartSnapshot(data []byte, cur currency.Unit) (*Cart, int, error) {
	var entries []cartEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, 0, fmt.Errorf("json.Unmarshal: %w", err)
	}

	cart := NewCart(cur)

	var dropped int
	for _, e := range entries {
		if err := cart.AddItem(e.Artwork, e.Quantity); err != nil {
			dropped++
		}
	}

	return cart, dropped, nil
}

// MarshalWishlistSnapshot encodes the persisted wishlist layout: an array of
// artworks.
func MarshalWishlistSnapshot(w *Wishlist) ([]byte, error) {
	items := w.items
	if items == nil {
		items = []Artwork{}
	}

	return json.Marshal(items)
}

// UnmarshalWishlistSnapshot keeps the first occurrence of each ID and drops
// entries without one.
func UnmarshalWishlistSnapshot(data []byte) (*Wishlist, int, error) {
	var items []Artwork
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, 0, fmt.Errorf("json.Unmarshal: %w", err)
	}

	wishlist := NewWishlist()

	var dropped int
	for _, a := range items {
		added, err := wishlist.Add(a)
		if err != nil || !added {
			dropped++
		}
	}

	return wishlist, dropped, nil
}
