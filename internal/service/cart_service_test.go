package service_test

import (
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/artistry-cart/internal/domain"
	"github.com/nikolayk812/artistry-cart/internal/domain/domaintest"
	"github.com/nikolayk812/artistry-cart/internal/metrics"
	"github.com/nikolayk812/artistry-cart/internal/repository"
	"github.com/nikolayk812/artistry-cart/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/currency"
)

type cartServiceSuite struct {
	suite.Suite

	store   *flakyStore
	logs    *test.Hook
	metrics *metrics.Metrics
	key     string
}

func TestCartServiceSuite(t *testing.T) {
	suite.Run(t, new(cartServiceSuite))
}

// before each test
func (suite *cartServiceSuite) SetupTest() {
	suite.store = &flakyStore{SnapshotStore: repository.NewMemoryStore()}
	suite.metrics = metrics.New()
	suite.key = service.CartKey(gofakeit.UUID())
}

func (suite *cartServiceSuite) newService(opts ...service.Option) *service.CartService {
	logger, hook := test.NewNullLogger()
	suite.logs = hook

	opts = append([]service.Option{service.WithLogger(logger), service.WithMetrics(suite.metrics)}, opts...)

	svc, err := service.NewCartService(suite.store, suite.key, domain.DefaultCurrency, opts...)
	suite.Require().NoError(err)

	return svc
}

func (suite *cartServiceSuite) TestNewCartService_Errors() {
	_, err := service.NewCartService(nil, "k", currency.USD)
	suite.EqualError(err, "store is nil")

	_, err = service.NewCartService(repository.NewMemoryStore(), "", currency.USD)
	suite.EqualError(err, "key is empty")
}

func (suite *cartServiceSuite) TestLoad_Missing() {
	svc := suite.newService()
	svc.Load(suite.T().Context())

	suite.Zero(svc.Count())
	suite.Empty(svc.Items())
	suite.Empty(suite.logs.AllEntries())
}

func (suite *cartServiceSuite) TestLoad_Corrupt() {
	t := suite.T()
	ctx := t.Context()

	require.NoError(t, suite.store.Set(ctx, suite.key, []byte(`{"this is":"not a cart"`)))

	svc := suite.newService()
	svc.Load(ctx)

	assert.Empty(t, svc.Items())
	assert.Zero(t, svc.Count())
	assert.True(t, svc.Total().Amount.IsZero())

	require.NotNil(t, suite.logs.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, suite.logs.LastEntry().Level)
	assert.Equal(t, 1.0, testutil.ToFloat64(suite.metrics.LoadFallbacks.WithLabelValues("cart", "corrupt")))
}

func (suite *cartServiceSuite) TestLoad_ReadError() {
	t := suite.T()

	suite.store.setFailure(errStoreDown, nil)

	svc := suite.newService()
	svc.Load(t.Context())

	assert.Empty(t, svc.Items())
	assert.Equal(t, 1.0, testutil.ToFloat64(suite.metrics.LoadFallbacks.WithLabelValues("cart", "read")))
}

func (suite *cartServiceSuite) TestLoad_ReplacesState() {
	t := suite.T()
	ctx := t.Context()

	svc := suite.newService()
	require.NoError(t, svc.AddItem(ctx, domaintest.RandomArtwork(), 1))

	require.NoError(t, suite.store.Delete(ctx, suite.key))
	svc.Load(ctx)

	assert.Empty(t, svc.Items())
}

func (suite *cartServiceSuite) TestRoundTrip() {
	t := suite.T()
	ctx := t.Context()

	svc := suite.newService()
	for range gofakeit.IntRange(2, 6) {
		require.NoError(t, svc.AddItem(ctx, domaintest.RandomArtwork(), gofakeit.IntRange(1, 5)))
	}
	items := svc.Items()
	svc.UpdateQuantity(ctx, items[0].ItemID(), 9)
	svc.RemoveItem(ctx, items[1].ItemID())

	restored := suite.newService()
	restored.Load(ctx)

	opts := append(domaintest.CmpOptions(), cmpopts.SortSlices(func(a, b domain.LineItem) bool {
		return a.ItemID() < b.ItemID()
	}))
	assert.Empty(t, cmp.Diff(svc.Items(), restored.Items(), opts))
	assert.True(t, svc.Total().Equal(restored.Total()))
	assert.Equal(t, svc.Count(), restored.Count())
}

func (suite *cartServiceSuite) TestRemovePurchased() {
	t := suite.T()
	ctx := t.Context()

	svc := suite.newService()
	bought, kept := domaintest.RandomArtwork(), domaintest.RandomArtwork()
	require.NoError(t, svc.AddItem(ctx, bought, 2))
	purchased := svc.Items()

	require.NoError(t, svc.AddItem(ctx, bought, 1))
	require.NoError(t, svc.AddItem(ctx, kept, 4))

	svc.RemovePurchased(ctx, purchased)

	assert.Equal(t, 5, svc.Count())
	assert.True(t, svc.Contains(bought.ID))
	assert.True(t, svc.Contains(kept.ID))

	restored := suite.newService()
	restored.Load(ctx)
	assert.Equal(t, 5, restored.Count())
}

func (suite *cartServiceSuite) TestAddItem_QuantityOverflow() {
	t := suite.T()
	ctx := t.Context()

	svc := suite.newService()
	artwork := domaintest.RandomArtwork()
	require.NoError(t, svc.AddItem(ctx, artwork, math.MaxInt))
	sets := suite.store.sets()

	err := svc.AddItem(ctx, artwork, 1)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, math.MaxInt, svc.Count())
	assert.Equal(t, sets, suite.store.sets())
}

func (suite *cartServiceSuite) TestEveryOperationPersists() {
	t := suite.T()
	ctx := t.Context()

	svc := suite.newService()
	artwork := domaintest.RandomArtwork()

	require.NoError(t, svc.AddItem(ctx, artwork, 1))
	svc.UpdateQuantity(ctx, artwork.ID, 3)
	svc.RemoveItem(ctx, gofakeit.UUID())
	svc.Clear(ctx)

	assert.Equal(t, 4, suite.store.sets())

	data, err := suite.store.Get(ctx, suite.key)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func (suite *cartServiceSuite) TestAddItem_ValidationDoesNotPersist() {
	t := suite.T()
	ctx := t.Context()

	svc := suite.newService()

	err := svc.AddItem(ctx, domaintest.RandomArtwork(), 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	err = svc.AddItem(ctx, domaintest.RandomArtworkIn(currency.GBP), 1)
	require.ErrorIs(t, err, domain.ErrCurrencyMismatch)

	assert.Zero(t, suite.store.sets())
}

func (suite *cartServiceSuite) TestPersistFailure_KeepsMemoryState() {
	t := suite.T()
	ctx := t.Context()

	svc := suite.newService()
	suite.store.setFailure(nil, errStoreDown)

	artwork := domain.Artwork{ID: "a1", Price: domain.Money{Amount: decimal.NewFromInt(20), Currency: currency.USD}}
	require.NoError(t, svc.AddItem(ctx, artwork, 2))

	assert.True(t, svc.Contains("a1"))
	assert.Equal(t, 2, svc.Count())
	assert.True(t, svc.Total().Amount.Equal(decimal.NewFromInt(40)))

	// nothing retried
	assert.Equal(t, 1, suite.store.sets())
	assert.Equal(t, 1.0, testutil.ToFloat64(suite.metrics.PersistFailures.WithLabelValues("cart")))
	require.NotNil(t, suite.logs.LastEntry())
	assert.Equal(t, logrus.WarnLevel, suite.logs.LastEntry().Level)

	// durability is lost for the next session
	suite.store.setFailure(nil, nil)
	restored := suite.newService()
	restored.Load(ctx)
	assert.Empty(t, restored.Items())
}

func (suite *cartServiceSuite) TestUpdateQuantityZeroRemoves() {
	t := suite.T()
	ctx := t.Context()

	svc := suite.newService()
	artwork := domain.Artwork{ID: "a1", Price: domain.Money{Amount: decimal.NewFromInt(20), Currency: currency.USD}}
	require.NoError(t, svc.AddItem(ctx, artwork, 1))

	assert.True(t, svc.UpdateQuantity(ctx, "a1", 0))
	assert.Empty(t, svc.Items())
	assert.Zero(t, svc.Count())
}

func (suite *cartServiceSuite) TestAddItem_OpensReveal() {
	t := suite.T()
	ctx := t.Context()

	revealer := &countingRevealer{}
	svc := suite.newService(service.WithRevealer(revealer))

	require.NoError(t, svc.AddItem(ctx, domaintest.RandomArtwork(), 1))
	require.Error(t, svc.AddItem(ctx, domain.Artwork{}, 1))
	svc.Clear(ctx)

	assert.Equal(t, 1, revealer.opens)
}

func (suite *cartServiceSuite) TestSnapshotIsDetached() {
	t := suite.T()
	ctx := t.Context()

	svc := suite.newService()
	require.NoError(t, svc.AddItem(ctx, domaintest.RandomArtwork(), 1))

	snapshot := svc.Snapshot()
	svc.Clear(ctx)

	assert.Equal(t, 1, snapshot.Len())
	assert.Zero(t, svc.Count())
}

type countingRevealer struct {
	opens int
}

func (r *countingRevealer) Open() {
	r.opens++
}
