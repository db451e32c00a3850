package currencyFreaks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"service-exchange/internal"
	"service-exchange/internal/driver"
)

const Name = "currencyfreaks"

const (
	dateTimeLayout = "2006-01-02 15:04:05Z07"
	dateLayout     = "2006-01-02"
)

// Quote is one entry of the "rates" object: Rate units of Code per one base unit.
type Quote struct {
	Code string
	Rate string
}

type Client struct {
	BaseURL string
	apiKey  string
	base    internal.CurrencyCode
	symbols []internal.CurrencyCode
}

// New builds the provider; an empty base leaves the API default (USD).
func New(apiKey string, base internal.CurrencyCode, symbols []internal.CurrencyCode) *Client {
	return &Client{
		BaseURL: "https://api.currencyfreaks.com/v2.0",
		apiKey:  apiKey,
		base:    base,
		symbols: symbols,
	}
}

func NewDriver(t driver.Transport, apiKey string, base internal.CurrencyCode, symbols []internal.CurrencyCode) (*driver.Driver[Quote], error) {
	return driver.New[Quote](New(apiKey, base, symbols), t)
}

func (c *Client) Name() string     { return Name }
func (c *Client) TimeZone() string { return "UTC" }
func (c *Client) Refresh() string  { return "0 0 * * *" }

func (c *Client) PrepareURL(date time.Time) string {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	if c.base != "" {
		q.Set("base", strings.ToUpper(strings.TrimSpace(string(c.base))))
	}
	if len(c.symbols) > 0 {
		symbolStrs := make([]string, len(c.symbols))
		for i, s := range c.symbols {
			symbolStrs[i] = string(s)
		}
		q.Set("symbols", strings.Join(symbolStrs, ","))
	}

	endpoint := "/rates/latest"
	if !date.IsZero() {
		endpoint = "/rates/historical"
		q.Set("date", date.Format(dateLayout))
	}
	return c.BaseURL + endpoint + "?" + q.Encode()
}

// CreateList keeps the rates in document order and appends the base at rate 1
// when the API leaves it out.
func (c *Client) CreateList(resp *http.Response, dates driver.DateSetter) ([]Quote, error) {
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	var (
		date, base string
		quotes     []Quote
	)
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		switch key {
		case "date":
			if err := dec.Decode(&date); err != nil {
				return nil, fmt.Errorf("unmarshal date: %w", err)
			}
		case "base":
			if err := dec.Decode(&base); err != nil {
				return nil, fmt.Errorf("unmarshal base: %w", err)
			}
		case "rates":
			if quotes, err = decodeRates(dec); err != nil {
				return nil, fmt.Errorf("unmarshal rates: %w", err)
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("unmarshal response: %w", err)
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal response: trailing data after object")
	}

	layout := dateTimeLayout
	if len(date) == len(dateLayout) {
		layout = dateLayout
	}
	if err := dates.SetDate(layout, date); err != nil {
		return nil, err
	}

	base = strings.ToUpper(strings.TrimSpace(base))
	if base != "" {
		hasBase := false
		for _, q := range quotes {
			if q.Code == base {
				hasBase = true
				break
			}
		}
		if !hasBase {
			quotes = append(quotes, Quote{Code: base, Rate: "1"})
		}
	}
	return quotes, nil
}

// CreateProperty prices one unit of Code in the base currency.
func (c *Client) CreateProperty(q Quote) internal.Property {
	code := internal.CurrencyCode(strings.ToUpper(strings.TrimSpace(q.Code)))
	rate, err := decimal.NewFromString(strings.TrimSpace(q.Rate))
	if err != nil || !rate.IsPositive() || !code.IsValid() {
		return internal.Property{Code: code, Unit: 1}
	}
	return internal.Property{Code: code, Rate: decimal.NewFromInt(1).Div(rate).InexactFloat64(), Unit: 1}
}

func decodeRates(dec *json.Decoder) ([]Quote, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var out []Quote
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, err
		}
		code, _ := key.(string)

		val, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := val.(type) {
		case string:
			out = append(out, Quote{Code: code, Rate: v})
		case json.Number:
			out = append(out, Quote{Code: code, Rate: v.String()})
		default:
			return nil, fmt.Errorf("rate for %q is not a string or number", code)
		}
	}
	return out, expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
