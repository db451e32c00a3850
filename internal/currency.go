package internal

import (
	"bytes"
	"fmt"
	"strings"
)

type CurrencyCode string

// NewCurrencyCode normalizes s and checks it looks like an ISO 4217 code.
func NewCurrencyCode(s string) (CurrencyCode, error) {
	ccy := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
	if !ccy.IsValid() {
		return "", fmt.Errorf("invalid currency code %q", s)
	}
	return ccy, nil
}

const (
	CZK CurrencyCode = "CZK"
	EUR CurrencyCode = "EUR"
	USD CurrencyCode = "USD"
	RUB CurrencyCode = "RUB"
	JPY CurrencyCode = "JPY"
)

func (c CurrencyCode) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (c CurrencyCode) String() string { return string(c) }

func (c CurrencyCode) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", c.String())), nil
}

func (c *CurrencyCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := strings.Trim(string(b), "\"")
	ccy, err := NewCurrencyCode(s)
	if err != nil {
		return err
	}
	*c = ccy
	return nil
}

// ParseCurrencyCodes splits a comma separated list, skipping blanks.
func ParseCurrencyCodes(list string) ([]CurrencyCode, error) {
	var out []CurrencyCode
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		ccy, err := NewCurrencyCode(part)
		if err != nil {
			return nil, err
		}
		out = append(out, ccy)
	}
	return out, nil
}
