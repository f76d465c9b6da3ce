package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is the server-side record of a completed checkout.
type Order struct {
	ID      uuid.UUID
	OwnerID string
	Items   []LineItem
	Total   Money

	CreatedAt time.Time
}
