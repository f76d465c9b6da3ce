package domain

import (
	"errors"

	"golang.org/x/text/currency"
)

// DefaultCurrency is the cart currency when none is configured.
var DefaultCurrency = currency.USD

var (
	ErrEmptyItemID      = errors.New("item ID is empty")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrCurrencyMismatch = errors.New("currency does not match cart currency")
)
