// Package domaintest provides random domain fixtures for tests.
package domaintest

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/artistry-cart/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

func RandomArtwork() domain.Artwork {
	return RandomArtworkIn(domain.DefaultCurrency)
}

func RandomArtworkIn(cur currency.Unit) domain.Artwork {
	return domain.Artwork{
		ID:       gofakeit.UUID(),
		Title:    gofakeit.BookTitle(),
		Creator:  gofakeit.Name(),
		ImageURL: gofakeit.URL() + "/" + gofakeit.Word() + ".png",
		Price:    RandomMoney(cur),
	}
}

func RandomMoney(cur currency.Unit) domain.Money {
	return domain.Money{
		Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
		Currency: cur,
	}
}

// CmpOptions compares domain values by meaning: currencies by code and
// decimals by value.
func CmpOptions() cmp.Options {
	return cmp.Options{
		cmp.Comparer(func(x, y currency.Unit) bool {
			return x.String() == y.String()
		}),
		cmp.Comparer(func(x, y decimal.Decimal) bool {
			return x.Equal(y)
		}),
	}
}
