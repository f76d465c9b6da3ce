package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Artwork is the catalog snapshot embedded into carts and wishlists at add
// time. It is never revalidated against the live catalog.
type Artwork struct {
	ID       string
	Title    string
	Creator  string
	ImageURL string
	Price    Money
}

type artworkJSON struct {
	ID       string          `json:"_id"`
	Title    string          `json:"title,omitempty"`
	Creator  string          `json:"creator,omitempty"`
	ImageURL string          `json:"image,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency,omitempty"`
}

func (a Artwork) MarshalJSON() ([]byte, error) {
	raw := artworkJSON{
		ID:       a.ID,
		Title:    a.Title,
		Creator:  a.Creator,
		ImageURL: a.ImageURL,
		Price:    a.Price.Amount,
	}
	if a.Price.HasCurrency() {
		raw.Currency = a.Price.Currency.String()
	}

	return json.Marshal(raw)
}

func (a *Artwork) UnmarshalJSON(data []byte) error {
	var raw artworkJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// without a currency field the price takes the currency of the cart it joins
	var cur currency.Unit
	if raw.Currency != "" {
		parsed, err := currency.ParseISO(raw.Currency)
		if err != nil {
			return fmt.Errorf("currency[%s] is not valid: %w", raw.Currency, err)
		}
		cur = parsed
	}

	*a = Artwork{
		ID:       raw.ID,
		Title:    raw.Title,
		Creator:  raw.Creator,
		ImageURL: raw.ImageURL,
		Price:    Money{Amount: raw.Price, Currency: cur},
	}

	return nil
}
