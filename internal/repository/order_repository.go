package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/artistry-cart/internal/db"
	"github.com/nikolayk812/artistry-cart/internal/domain"
	"github.com/nikolayk812/artistry-cart/internal/port"
	"golang.org/x/text/currency"
)

type orderRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewOrderRepositoryWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	if order.ID == uuid.Nil {
		return fmt.Errorf("orderID is empty")
	}
	if order.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("order has no items")
	}
	for _, item := range order.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("item[%s] quantity[%d] is not positive", item.ItemID(), item.Quantity)
		}
		if item.UnitPrice().Currency != order.Total.Currency {
			return fmt.Errorf("item[%s] currency[%s] does not match order currency[%s]",
				item.ItemID(), item.UnitPrice().Currency, order.Total.Currency)
		}
	}

	return inTx(ctx, r.pool, r.q, func(q *db.Queries) error {
		err := q.InsertOrder(ctx, db.InsertOrderParams{
			ID:            order.ID,
			OwnerID:       order.OwnerID,
			TotalAmount:   order.Total.Amount,
			TotalCurrency: order.Total.Currency.String(),
		})
		if err != nil {
			return fmt.Errorf("q.InsertOrder: %w", err)
		}

		for i, item := range order.Items {
			err := q.InsertOrderItem(ctx, db.InsertOrderItemParams{
				OrderID:       order.ID,
				Position:      int64(i),
				ArtworkID:     item.Artwork.ID,
				Title:         item.Artwork.Title,
				Creator:       item.Artwork.Creator,
				ImageUrl:      item.Artwork.ImageURL,
				PriceAmount:   item.Artwork.Price.Amount,
				PriceCurrency: item.Artwork.Price.Currency.String(),
				Quantity:      int64(item.Quantity),
			})
			if err != nil {
				return fmt.Errorf("q.InsertOrderItem[%s]: %w", item.Artwork.ID, err)
			}
		}

		return nil
	})
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	if orderID == uuid.Nil {
		return domain.Order{}, fmt.Errorf("orderID is empty")
	}

	row, err := r.q.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, port.ErrNotFound
		}
		return domain.Order{}, fmt.Errorf("q.GetOrder: %w", err)
	}

	itemRows, err := r.q.GetOrderItems(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	totalCurrency, err := currency.ParseISO(row.TotalCurrency)
	if err != nil {
		return domain.Order{}, fmt.Errorf("currency[%s] is not valid: %w", row.TotalCurrency, err)
	}

	items, err := mapOrderItemRowsToDomain(itemRows)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapOrderItemRowsToDomain: %w", err)
	}

	return domain.Order{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Items:     items,
		Total:     domain.Money{Amount: row.TotalAmount, Currency: totalCurrency},
		CreatedAt: row.CreatedAt,
	}, nil
}

func mapOrderItemRowToDomain(row db.GetOrderItemsRow) (domain.LineItem, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.LineItem{
		Artwork: domain.Artwork{
			ID:       row.ArtworkID,
			Title:    row.Title,
			Creator:  row.Creator,
			ImageURL: row.ImageUrl,
			Price:    domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		},
		Quantity: int(row.Quantity),
	}, nil
}

func mapOrderItemRowsToDomain(rows []db.GetOrderItemsRow) ([]domain.LineItem, error) {
	var items []domain.LineItem

	for _, row := range rows {
		item, err := mapOrderItemRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapOrderItemRowToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
