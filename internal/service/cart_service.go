package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/artistry-cart/internal/domain"
	"github.com/nikolayk812/artistry-cart/internal/port"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
)

const aggregateCart = "cart"

// CartService owns a cart for one session and writes a full snapshot to the
// store after every operation. The in-memory cart is authoritative: failed
// writes are logged and dropped.
type CartService struct {
	store port.SnapshotStore
	key   string
	opts  options
	log   logrus.FieldLogger

	mu   sync.Mutex
	cart *domain.Cart
}

func NewCartService(store port.SnapshotStore, key string, cur currency.Unit, opts ...Option) (*CartService, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	o := newOptions(opts)

	return &CartService{
		store: store,
		key:   key,
		opts:  o,
		log:   o.logger.WithFields(logrus.Fields{"aggregate": aggregateCart, "key": key}),
		cart:  domain.NewCart(cur),
	}, nil
}

// Load replaces the cart with the stored snapshot. A missing, unreadable or
// corrupt snapshot leaves an empty cart.
func (s *CartService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.cart.Currency()
	s.cart = domain.NewCart(cur)

	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return
		}
		s.log.WithError(err).Error("cart load failed, starting empty")
		s.opts.countLoadFallback(aggregateCart, "read")
		return
	}

	cart, dropped, err := domain.UnmarshalCartSnapshot(data, cur)
	if err != nil {
		s.log.WithError(err).Error("cart snapshot is corrupt, starting empty")
		s.opts.countLoadFallback(aggregateCart, "corrupt")
		return
	}
	if dropped > 0 {
		s.log.WithField("dropped", dropped).Warn("cart snapshot had invalid entries")
	}

	s.cart = cart
}

func (s *CartService) AddItem(ctx context.Context, artwork domain.Artwork, quantity int) error {
	s.mu.Lock()
	if err := s.cart.AddItem(artwork, quantity); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("cart.AddItem: %w", err)
	}
	s.persistLocked(ctx, "add")
	s.mu.Unlock()

	if s.opts.revealer != nil {
		s.opts.revealer.Open()
	}

	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.cart.RemoveItem(itemID)
	s.persistLocked(ctx, "remove")

	return removed
}

func (s *CartService) UpdateQuantity(ctx context.Context, itemID string, quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.cart.UpdateQuantity(itemID, quantity)
	s.persistLocked(ctx, "update")

	return updated
}

func (s *CartService) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	s.persistLocked(ctx, "clear")
}

// RemovePurchased subtracts purchased quantities from the cart, leaving
// anything added after the purchase snapshot was taken.
func (s *CartService) RemovePurchased(ctx context.Context, items []domain.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Subtract(items)
	s.persistLocked(ctx, "purchase")
}

func (s *CartService) Contains(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Contains(itemID)
}

func (s *CartService) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Items()
}

func (s *CartService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Count()
}

func (s *CartService) Total() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Total()
}

// Snapshot returns a detached copy of the current cart.
func (s *CartService) Snapshot() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone()
}

func (s *CartService) persistLocked(ctx context.Context, op string) {
	s.opts.countMutation(aggregateCart, op)

	data, err := domain.MarshalCartSnapshot(s.cart)
	if err != nil {
		s.log.WithError(err).WithField("op", op).Error("cart snapshot encode failed")
		s.opts.countPersistFailure(aggregateCart)
		return
	}

	if err := s.store.Set(ctx, s.key, data); err != nil {
		s.log.WithError(err).WithField("op", op).Warn("cart persist failed, keeping in-memory state")
		s.opts.countPersistFailure(aggregateCart)
	}
}
