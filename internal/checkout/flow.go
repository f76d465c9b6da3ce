package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/artistry-cart/internal/domain"
	"github.com/nikolayk812/artistry-cart/internal/metrics"
	"github.com/nikolayk812/artistry-cart/internal/port"
	"github.com/sirupsen/logrus"
)

type State int

const (
	Idle State = iota
	Reviewing
	Purchasing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Reviewing:
		return "reviewing"
	case Purchasing:
		return "purchasing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOrderNotRecorded  = errors.New("order was not recorded")
)

// Cart is the part of the cart service the flow drives.
type Cart interface {
	Snapshot() *domain.Cart
	RemoveItem(ctx context.Context, itemID string) bool
	RemovePurchased(ctx context.Context, items []domain.LineItem)
}

// Receipt is the confirmation of a completed purchase. DownloadErr joins every
// failed download; the purchase still counts as completed.
type Receipt struct {
	OrderID     uuid.UUID
	OwnerID     string
	Items       []domain.LineItem
	Count       int
	Total       domain.Money
	Recorded    bool
	CompletedAt time.Time
	DownloadErr error
}

type Config struct {
	OwnerID    string
	Cart       Cart
	Downloader port.Downloader
	// Orders is optional. Without it a purchase has no server-side record.
	Orders  port.OrderRepository
	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

type Flow struct {
	cfg Config
	log logrus.FieldLogger

	mu       sync.Mutex
	state    State
	snapshot *domain.Cart
	err      error
}

func New(cfg Config) (*Flow, error) {
	if cfg.Cart == nil {
		return nil, fmt.Errorf("cart is nil")
	}
	if cfg.Downloader == nil {
		return nil, fmt.Errorf("downloader is nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Flow{
		cfg:   cfg,
		log:   cfg.Logger.WithField("owner_id", cfg.OwnerID),
		state: Idle,
	}, nil
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

// Err returns the error that moved the flow to Failed.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.err
}

// Review captures the current cart contents for display.
func (f *Flow) Review() (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Idle && f.state != Reviewing {
		return nil, f.transitionErr(Reviewing)
	}

	f.snapshot = f.cfg.Cart.Snapshot()
	f.state = Reviewing

	return f.snapshot.Clone(), nil
}

// RemoveItem drops an item while reviewing and returns the refreshed snapshot.
func (f *Flow) RemoveItem(ctx context.Context, itemID string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Reviewing {
		return nil, f.transitionErr(Reviewing)
	}

	f.cfg.Cart.RemoveItem(ctx, itemID)
	f.snapshot = f.cfg.Cart.Snapshot()

	return f.snapshot.Clone(), nil
}

// Purchase records the order when an order repository is configured, triggers
// one download per line item and removes the purchased quantities from the
// cart. Only a failed order record moves the flow to Failed; download failures
// are reported on the receipt.
func (f *Flow) Purchase(ctx context.Context) (Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Reviewing {
		return Receipt{}, f.transitionErr(Purchasing)
	}

	// the cart may have changed since the review
	snapshot := f.cfg.Cart.Snapshot()
	if snapshot.Len() == 0 {
		return Receipt{}, ErrEmptyCart
	}
	f.snapshot = snapshot
	f.state = Purchasing

	receipt := Receipt{
		OrderID: uuid.New(),
		OwnerID: f.cfg.OwnerID,
		Items:   snapshot.Items(),
		Count:   snapshot.Count(),
		Total:   snapshot.Total(),
	}
	log := f.log.WithField("order_id", receipt.OrderID)

	if f.cfg.Orders != nil {
		err := f.cfg.Orders.CreateOrder(ctx, domain.Order{
			ID:      receipt.OrderID,
			OwnerID: f.cfg.OwnerID,
			Items:   receipt.Items,
			Total:   receipt.Total,
		})
		if err != nil {
			f.state = Failed
			f.err = fmt.Errorf("orders.CreateOrder: %w: %w", ErrOrderNotRecorded, err)
			log.WithError(err).Error("checkout failed, cart kept")
			f.countCheckout("failed")
			return Receipt{}, f.err
		}
		receipt.Recorded = true
	}

	var downloadErrs []error
	for _, item := range receipt.Items {
		if err := f.cfg.Downloader.Download(ctx, item.Artwork); err != nil {
			log.WithError(err).WithField("item_id", item.ItemID()).Warn("download failed")
			downloadErrs = append(downloadErrs, fmt.Errorf("download[%s]: %w", item.ItemID(), err))
		}
	}
	receipt.DownloadErr = errors.Join(downloadErrs...)

	// items added while downloads ran stay in the cart
	f.cfg.Cart.RemovePurchased(ctx, receipt.Items)
	receipt.CompletedAt = f.cfg.Now()
	f.state = Completed

	outcome := "completed"
	if receipt.DownloadErr != nil {
		outcome = "completed_with_download_errors"
	}
	f.countCheckout(outcome)

	log.WithFields(logrus.Fields{
		"items":    len(receipt.Items),
		"total":    receipt.Total.String(),
		"recorded": receipt.Recorded,
	}).Info("checkout completed")

	return receipt, nil
}

// Reset returns a finished flow to Idle.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Completed && f.state != Failed {
		return f.transitionErr(Idle)
	}

	f.state = Idle
	f.snapshot = nil
	f.err = nil

	return nil
}

// Run reviews and purchases in one step.
func (f *Flow) Run(ctx context.Context) (Receipt, error) {
	if _, err := f.Review(); err != nil {
		return Receipt{}, err
	}

	return f.Purchase(ctx)
}

func (f *Flow) transitionErr(to State) error {
	return fmt.Errorf("%s -> %s: %w", f.state, to, ErrInvalidTransition)
}

func (f *Flow) countCheckout(outcome string) {
	if f.cfg.Metrics != nil {
		f.cfg.Metrics.Checkouts.WithLabelValues(outcome).Inc()
	}
}
