package repository_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/artistry-cart/internal/domain"
	"github.com/nikolayk812/artistry-cart/internal/domain/domaintest"
	"github.com/nikolayk812/artistry-cart/internal/port"
	"github.com/nikolayk812/artistry-cart/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"golang.org/x/text/currency"
)

type orderRepositorySuite struct {
	suite.Suite

	repo      port.OrderRepository
	pool      *pgxpool.Pool
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestOrderRepositorySuite(t *testing.T) {
	suite.Run(t, new(orderRepositorySuite))
}

// before all tests in the suite
func (suite *orderRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startContainer(ctx, postgresBackend)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo = repository.NewOrderRepository(suite.pool)
}

// after all tests in the suite
func (suite *orderRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		_ = testcontainers.TerminateContainer(suite.container)
	}
}

func (suite *orderRepositorySuite) TestCreateOrder() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		order     domain.Order
		wantError string
	}{
		{
			name:  "create order: ok",
			order: randomOrder(3),
		},
		{
			name: "create order with empty ID: error",
			order: func() domain.Order {
				o := randomOrder(1)
				o.ID = uuid.Nil
				return o
			}(),
			wantError: "orderID is empty",
		},
		{
			name: "create order with empty owner: error",
			order: func() domain.Order {
				o := randomOrder(1)
				o.OwnerID = ""
				return o
			}(),
			wantError: "ownerID is empty",
		},
		{
			name:      "create order without items: error",
			order:     randomOrder(0),
			wantError: "order has no items",
		},
		{
			name: "create order with quantity beyond int32: ok",
			order: func() domain.Order {
				o := randomOrder(2)
				o.Items[1].Quantity = 1<<32 + 1
				o.Total = o.Items[0].Subtotal()
				o.Total.Amount = o.Total.Amount.Add(o.Items[1].Subtotal().Amount)
				return o
			}(),
		},
		{
			name: "create order with sub-cent prices: ok",
			order: func() domain.Order {
				o := randomOrder(1)
				o.Items[0].Artwork.Price.Amount = decimal.RequireFromString("12.3456")
				o.Items[0].Quantity = 3
				o.Total = o.Items[0].Subtotal()
				return o
			}(),
		},
		{
			name: "create order with zero quantity: error",
			order: func() domain.Order {
				o := randomOrder(1)
				o.Items[0].Artwork.ID = "a1"
				o.Items[0].Quantity = 0
				return o
			}(),
			wantError: "item[a1] quantity[0] is not positive",
		},
		{
			name: "create order with mixed currencies: error",
			order: func() domain.Order {
				o := randomOrder(1)
				o.Items[0].Artwork.ID = "a1"
				o.Items[0].Artwork.Price.Currency = currency.EUR
				return o
			}(),
			wantError: "item[a1] currency[EUR] does not match order currency[USD]",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			err := suite.repo.CreateOrder(ctx, tt.order)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			got, err := suite.repo.GetOrder(ctx, tt.order.ID)
			require.NoError(t, err)
			assertOrder(t, tt.order, got)
		})
	}
}

func (suite *orderRepositorySuite) TestCreateOrder_DuplicateIDRollsBack() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	order := randomOrder(2)
	require.NoError(t, suite.repo.CreateOrder(ctx, order))

	again := randomOrder(1)
	again.ID = order.ID
	require.Error(t, suite.repo.CreateOrder(ctx, again))

	got, err := suite.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assertOrder(t, order, got)
}

func (suite *orderRepositorySuite) TestCreateOrder_WithTx() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	tx, err := suite.pool.Begin(ctx)
	require.NoError(t, err)

	order := randomOrder(1)
	require.NoError(t, repository.NewOrderRepositoryWithTx(tx).CreateOrder(ctx, order))
	require.NoError(t, tx.Rollback(ctx))

	_, err = suite.repo.GetOrder(ctx, order.ID)
	require.ErrorIs(t, err, port.ErrNotFound)
}

func (suite *orderRepositorySuite) TestGetOrder_NotFound() {
	t := suite.T()

	_, err := suite.repo.GetOrder(t.Context(), uuid.New())
	require.ErrorIs(t, err, port.ErrNotFound)

	_, err = suite.repo.GetOrder(t.Context(), uuid.Nil)
	require.EqualError(t, err, "orderID is empty")
}

func (suite *orderRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE orders CASCADE")
	suite.NoError(err)
}

func randomOrder(n int) domain.Order {
	cart := domain.NewCart(domain.DefaultCurrency)
	for range n {
		_ = cart.AddItem(domaintest.RandomArtwork(), gofakeit.IntRange(1, 5))
	}

	return domain.Order{
		ID:      uuid.New(),
		OwnerID: gofakeit.UUID(),
		Items:   cart.Items(),
		Total:   cart.Total(),
	}
}

func assertOrder(t *testing.T, expected, actual domain.Order) {
	t.Helper()

	opts := append(domaintest.CmpOptions(), cmpopts.IgnoreFields(domain.Order{}, "CreatedAt"))

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	assert.WithinDuration(t, time.Now(), actual.CreatedAt, time.Minute)
}
