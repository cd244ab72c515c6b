// Package fx fetches exchange-rate snapshots and converts amounts between
// account currencies and the reporting base currency.
package fx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnavailable means the feed could not be reached or answered with a non-200 status.
	ErrUnavailable = errors.New("exchange rate feed unavailable")
	// ErrMalformed means the feed answered but the payload could not be used.
	ErrMalformed = errors.New("exchange rate feed returned a malformed response")
	// ErrUnknownCurrency means the snapshot carries no rate for the requested currency.
	ErrUnknownCurrency = errors.New("no exchange rate for currency")
)

// Snapshot is an immutable set of rates quoted against Base: Rates["USD"] is
// the number of USD one unit of Base buys.
type Snapshot struct {
	Base      string
	Rates     map[string]decimal.Decimal
	Date      string
	FetchedAt time.Time
	Source    string
}

// BaseOnly returns a snapshot that can only convert Base into itself.
func BaseOnly(base string) *Snapshot {
	return &Snapshot{
		Base:      strings.ToUpper(base),
		Rates:     map[string]decimal.Decimal{},
		FetchedAt: time.Now().UTC(),
		Source:    "identity",
	}
}

// NeedsConversion reports whether currency differs from the snapshot base.
func (s *Snapshot) NeedsConversion(currency string) bool {
	return strings.ToUpper(currency) != s.Base
}

// Rate returns units of currency per one unit of base.
func (s *Snapshot) Rate(currency string) (decimal.Decimal, error) {
	c := strings.ToUpper(currency)
	if c == s.Base {
		return decimal.NewFromInt(1), nil
	}
	rate, ok := s.Rates[c]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, c)
	}
	return rate, nil
}

// ToBase converts amount held in from into the base currency.
func (s *Snapshot) ToBase(amount decimal.Decimal, from string) (decimal.Decimal, error) {
	if !s.NeedsConversion(from) {
		return amount, nil
	}
	rate, err := s.Rate(from)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Div(rate), nil
}

// FromBase converts amount held in the base currency into to.
func (s *Snapshot) FromBase(amount decimal.Decimal, to string) (decimal.Decimal, error) {
	if !s.NeedsConversion(to) {
		return amount, nil
	}
	rate, err := s.Rate(to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// Convert converts amount from one currency to another through the base.
func (s *Snapshot) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if strings.EqualFold(from, to) {
		return amount, nil
	}
	inBase, err := s.ToBase(amount, from)
	if err != nil {
		return decimal.Zero, err
	}
	return s.FromBase(inBase, to)
}
