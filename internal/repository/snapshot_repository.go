package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/artistry-cart/internal/db"
	"github.com/nikolayk812/artistry-cart/internal/port"
)

type snapshotRepository struct {
	q *db.Queries
}

func NewSnapshotStore(pool *pgxpool.Pool) port.SnapshotStore {
	return &snapshotRepository{
		q: db.New(pool),
	}
}

func (r *snapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	value, err := r.q.GetSnapshot(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrNotFound
		}
		return nil, fmt.Errorf("q.GetSnapshot: %w", err)
	}

	return value, nil
}

func (r *snapshotRepository) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	err := r.q.UpsertSnapshot(ctx, db.UpsertSnapshotParams{
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("q.UpsertSnapshot: %w", err)
	}

	return nil
}

func (r *snapshotRepository) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if _, err := r.q.DeleteSnapshot(ctx, key); err != nil {
		return fmt.Errorf("q.DeleteSnapshot: %w", err)
	}

	return nil
}
