package internal

import "github.com/shopspring/decimal"

// Property is one currency rate as published by a provider: Rate is the price
// of Unit units of Code expressed in the provider's home currency.
type Property struct {
	Code CurrencyCode `json:"code"`
	Rate float64      `json:"rate"`
	Unit int          `json:"unit"`
}

// PerUnit returns the price of a single unit of Code.
func (p Property) PerUnit() decimal.Decimal {
	unit := p.Unit
	if unit <= 0 {
		unit = 1
	}
	return decimal.NewFromFloat(p.Rate).Div(decimal.NewFromInt(int64(unit)))
}

// AllowList restricts a property stream to the listed codes. The values are
// markers only; an empty list allows everything.
type AllowList map[CurrencyCode]int

func Allow(codes ...CurrencyCode) AllowList {
	allow := make(AllowList, len(codes))
	for _, c := range codes {
		allow[c] = 1
	}
	return allow
}

func (a AllowList) Allows(code CurrencyCode) bool {
	if len(a) == 0 {
		return true
	}
	_, ok := a[code]
	return ok
}
