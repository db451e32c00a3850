package internal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrRateNotAvailable = errors.New("rate not available")

// RateConverter computes cross rates from one set of provider properties. Every
// property is priced in the same home currency, so any pair goes through it.
type RateConverter struct {
	perUnit map[CurrencyCode]decimal.Decimal
}

func NewRateConverter(props []Property) *RateConverter {
	perUnit := make(map[CurrencyCode]decimal.Decimal, len(props))
	for _, p := range props {
		if p.Rate == 0 {
			continue
		}
		perUnit[p.Code] = p.PerUnit()
	}
	return &RateConverter{perUnit: perUnit}
}

type PairRate struct {
	Base  CurrencyCode    `json:"base"`
	Quote CurrencyCode    `json:"quote"`
	Rate  decimal.Decimal `json:"rate"`
	Date  *Date           `json:"date,omitempty"`
}

// GetPairRate returns how many units of quote one unit of base buys.
func (c *RateConverter) GetPairRate(base, quote CurrencyCode) (PairRate, error) {
	if !base.IsValid() || !quote.IsValid() {
		return PairRate{}, fmt.Errorf("invalid currency pair %q/%q", base, quote)
	}
	if base == quote {
		return PairRate{Base: base, Quote: quote, Rate: decimal.NewFromInt(1)}, nil
	}

	rBase, err := c.get(base)
	if err != nil {
		return PairRate{}, err
	}
	rQuote, err := c.get(quote)
	if err != nil {
		return PairRate{}, err
	}

	cross := rBase.Div(rQuote) // base -> home -> quote
	return PairRate{Base: base, Quote: quote, Rate: cross}, nil
}

func (c *RateConverter) get(code CurrencyCode) (decimal.Decimal, error) {
	r, ok := c.perUnit[code]
	if !ok || r.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrRateNotAvailable, code)
	}
	return r, nil
}
