package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nikolayk812/artistry-cart/internal/metrics"
	"github.com/nikolayk812/artistry-cart/internal/port"
	"github.com/nikolayk812/artistry-cart/internal/reveal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
)

func CartKey(ownerID string) string {
	return "cart:" + ownerID
}

func WishlistKey(ownerID string) string {
	return "wishlist:" + ownerID
}

// Session groups the aggregates owned by one client.
type Session struct {
	OwnerID  string
	Cart     *CartService
	Wishlist *WishlistService
	Reveal   *reveal.Signal

	checkout sync.Mutex
}

// BeginCheckout claims the session for one checkout. It reports false while
// another checkout for the same owner is running.
func (s *Session) BeginCheckout() (release func(), ok bool) {
	if !s.checkout.TryLock() {
		return nil, false
	}

	return s.checkout.Unlock, true
}

type RegistryConfig struct {
	Store          port.SnapshotStore
	Currency       currency.Unit
	RevealInterval time.Duration
	// IdleTimeout evicts sessions unused for longer. Zero keeps them forever.
	IdleTimeout time.Duration
	Logger      logrus.FieldLogger
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

type sessionEntry struct {
	ready    chan struct{}
	session  *Session
	err      error
	lastUsed time.Time
}

// Registry lazily creates and rehydrates one session per owner. Loading runs
// outside the registry lock; concurrent callers for the same owner wait for
// the first load.
type Registry struct {
	cfg RegistryConfig

	mu        sync.Mutex
	sessions  map[string]*sessionEntry
	lastSweep time.Time
}

func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Registry{
		cfg:      cfg,
		sessions: make(map[string]*sessionEntry),
	}, nil
}

func (r *Registry) Session(ctx context.Context, ownerID string) (*Session, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	now := r.cfg.Now()

	r.mu.Lock()
	r.sweepLocked(now)

	entry, ok := r.sessions[ownerID]
	if ok {
		entry.lastUsed = now
		r.mu.Unlock()

		select {
		case <-entry.ready:
			return entry.session, entry.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	entry = &sessionEntry{ready: make(chan struct{}), lastUsed: now}
	r.sessions[ownerID] = entry
	r.mu.Unlock()

	entry.session, entry.err = r.newSession(ctx, ownerID)
	if entry.err != nil {
		r.mu.Lock()
		if r.sessions[ownerID] == entry {
			delete(r.sessions, ownerID)
		}
		r.mu.Unlock()
	}
	close(entry.ready)

	return entry.session, entry.err
}

func (r *Registry) newSession(ctx context.Context, ownerID string) (*Session, error) {
	logger := r.cfg.Logger.WithField("owner_id", ownerID)
	signal := reveal.New(r.cfg.RevealInterval, reveal.WithOnChange(func(open bool) {
		logger.WithField("open", open).Debug("cart reveal changed")
	}))

	opts := []Option{WithLogger(logger), WithMetrics(r.cfg.Metrics)}

	cart, err := NewCartService(r.cfg.Store, CartKey(ownerID), r.cfg.Currency, append(opts, WithRevealer(signal))...)
	if err != nil {
		return nil, fmt.Errorf("NewCartService: %w", err)
	}

	wishlist, err := NewWishlistService(r.cfg.Store, WishlistKey(ownerID), opts...)
	if err != nil {
		return nil, fmt.Errorf("NewWishlistService: %w", err)
	}

	cart.Load(ctx)
	wishlist.Load(ctx)

	return &Session{
		OwnerID:  ownerID,
		Cart:     cart,
		Wishlist: wishlist,
		Reveal:   signal,
	}, nil
}

// Len returns the number of sessions held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// sweepLocked drops sessions idle for longer than IdleTimeout. It runs at most
// once per half timeout and skips sessions still loading or checking out.
func (r *Registry) sweepLocked(now time.Time) {
	idle := r.cfg.IdleTimeout
	if idle <= 0 || now.Sub(r.lastSweep) < idle/2 {
		return
	}
	r.lastSweep = now

	for ownerID, entry := range r.sessions {
		if now.Sub(entry.lastUsed) <= idle {
			continue
		}

		select {
		case <-entry.ready:
		default:
			continue
		}
		if entry.session == nil {
			continue
		}

		release, ok := entry.session.BeginCheckout()
		if !ok {
			continue
		}
		release()

		entry.session.Reveal.Stop()
		delete(r.sessions, ownerID)
		r.cfg.Logger.WithField("owner_id", ownerID).Debug("idle session evicted")
	}
}

// Close cancels pending reveal timers of every session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.sessions {
		select {
		case <-entry.ready:
			if entry.session != nil {
				entry.session.Reveal.Stop()
			}
		default:
		}
	}
}
