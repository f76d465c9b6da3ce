package domain

import "slices"

// Wishlist is an ordered set of artworks keyed by ID.
type Wishlist struct {
	items []Artwork
}

func NewWishlist() *Wishlist {
	return &Wishlist{}
}

// Add reports whether the artwork was added; re-adding a present ID is a no-op.
func (w *Wishlist) Add(artwork Artwork) (bool, error) {
	if artwork.ID == "" {
		return false, ErrEmptyItemID
	}
	if w.Contains(artwork.ID) {
		return false, nil
	}

	w.items = append(w.items, artwork)

	return true, nil
}

func (w *Wishlist) Remove(itemID string) bool {
	i := w.indexOf(itemID)
	if i < 0 {
		return false
	}

	w.items = slices.Delete(w.items, i, i+1)

	return true
}

// Toggle removes a present artwork or adds an absent one and returns whether
// the artwork is present afterwards.
func (w *Wishlist) Toggle(artwork Artwork) (bool, error) {
	if artwork.ID == "" {
		return false, ErrEmptyItemID
	}
	if w.Remove(artwork.ID) {
		return false, nil
	}

	w.items = append(w.items, artwork)

	return true, nil
}

func (w *Wishlist) Contains(itemID string) bool {
	return w.indexOf(itemID) >= 0
}

func (w *Wishlist) Clear() {
	w.items = nil
}

func (w *Wishlist) Items() []Artwork {
	return slices.Clone(w.items)
}

func (w *Wishlist) Len() int {
	return len(w.items)
}

func (w *Wishlist) indexOf(itemID string) int {
	return slices.IndexFunc(w.items, func(a Artwork) bool {
		return a.ID == itemID
	})
}
