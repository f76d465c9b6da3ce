package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/nikolayk812/artistry-cart/internal/port"
)

// flakyStore wraps a real store and fails reads or writes on demand.
type flakyStore struct {
	port.SnapshotStore

	mu       sync.Mutex
	failGet  error
	failSet  error
	setCalls int
}

var errStoreDown = errors.New("store is down")

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	err := s.failGet
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return s.SnapshotStore.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.setCalls++
	err := s.failSet
	s.mu.Unlock()

	if err != nil {
		return err
	}

	return s.SnapshotStore.Set(ctx, key, value)
}

func (s *flakyStore) setFailure(getErr, setErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failGet = getErr
	s.failSet = setErr
}

func (s *flakyStore) sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setCalls
}

// blockingStore holds reads of one key until release is closed.
type blockingStore struct {
	port.SnapshotStore

	key     string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == s.key {
		s.once.Do(func() { close(s.started) })
		<-s.release
	}

	return s.SnapshotStore.Get(ctx, key)
}
