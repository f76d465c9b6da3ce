package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/artistry-cart/internal/domain"
)

type Downloader interface {
	Download(ctx context.Context, artwork domain.Artwork) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
}
