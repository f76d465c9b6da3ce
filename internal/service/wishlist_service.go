package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/artistry-cart/internal/domain"
	"github.com/nikolayk812/artistry-cart/internal/port"
	"github.com/sirupsen/logrus"
)

const aggregateWishlist = "wishlist"

// WishlistService follows the same load and persist rules as CartService.
type WishlistService struct {
	store port.SnapshotStore
	key   string
	opts  options
	log   logrus.FieldLogger

	mu       sync.Mutex
	wishlist *domain.Wishlist
}

func NewWishlistService(store port.SnapshotStore, key string, opts ...Option) (*WishlistService, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	o := newOptions(opts)

	return &WishlistService{
		store:    store,
		key:      key,
		opts:     o,
		log:      o.logger.WithFields(logrus.Fields{"aggregate": aggregateWishlist, "key": key}),
		wishlist: domain.NewWishlist(),
	}, nil
}

func (s *WishlistService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wishlist = domain.NewWishlist()

	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return
		}
		s.log.WithError(err).Error("wishlist load failed, starting empty")
		s.opts.countLoadFallback(aggregateWishlist, "read")
		return
	}

	wishlist, dropped, err := domain.UnmarshalWishlistSnapshot(data)
	if err != nil {
		s.log.WithError(err).Error("wishlist snapshot is corrupt, starting empty")
		s.opts.countLoadFallback(aggregateWishlist, "corrupt")
		return
	}
	if dropped > 0 {
		s.log.WithField("dropped", dropped).Warn("wishlist snapshot had invalid or duplicate entries")
	}

	s.wishlist = wishlist
}

func (s *WishlistService) Add(ctx context.Context, artwork domain.Artwork) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added, err := s.wishlist.Add(artwork)
	if err != nil {
		return false, fmt.Errorf("wishlist.Add: %w", err)
	}
	s.persistLocked(ctx, "add")

	return added, nil
}

// Toggle reports whether the artwork is in the wishlist afterwards.
func (s *WishlistService) Toggle(ctx context.Context, artwork domain.Artwork) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	present, err := s.wishlist.Toggle(artwork)
	if err != nil {
		return false, fmt.Errorf("wishlist.Toggle: %w", err)
	}
	s.persistLocked(ctx, "toggle")

	return present, nil
}

func (s *WishlistService) Remove(ctx context.Context, itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.wishlist.Remove(itemID)
	s.persistLocked(ctx, "remove")

	return removed
}

func (s *WishlistService) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wishlist.Clear()
	s.persistLocked(ctx, "clear")
}

func (s *WishlistService) Contains(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wishlist.Contains(itemID)
}

func (s *WishlistService) Items() []domain.Artwork {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wishlist.Items()
}

func (s *WishlistService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wishlist.Len()
}

func (s *WishlistService) persistLocked(ctx context.Context, op string) {
	s.opts.countMutation(aggregateWishlist, op)

	data, err := domain.MarshalWishlistSnapshot(s.wishlist)
	if err != nil {
		s.log.WithError(err).WithField("op", op).Error("wishlist snapshot encode failed")
		s.opts.countPersistFailure(aggregateWishlist)
		return
	}

	if err := s.store.Set(ctx, s.key, data); err != nil {
		s.log.WithError(err).WithField("op", op).Warn("wishlist persist failed, keeping in-memory state")
		s.opts.countPersistFailure(aggregateWishlist)
	}
}
