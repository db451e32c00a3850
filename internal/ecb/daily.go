// Package ecb parses the European Central Bank eurofxref reference rates.
package ecb

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"service-exchange/internal"
	"service-exchange/internal/driver"
)

const (
	Name = "ecb"

	defaultBaseURL = "https://www.ecb.europa.eu/stats/eurofxref"
	dateLayout     = "2006-01-02"
)

type envelope struct {
	Days []day `xml:"Cube>Cube"`
}

type day struct {
	Time  string `xml:"time,attr"`
	Rates []Cube `xml:"Cube"`
}

// Cube is one EUR reference rate: Rate units of Currency per euro.
type Cube struct {
	Currency string `xml:"currency,attr"`
	Rate     string `xml:"rate,attr"`
}

type Daily struct {
	BaseURL string
}

func New() *Daily {
	return &Daily{BaseURL: defaultBaseURL}
}

func NewDriver(t driver.Transport) (*driver.Driver[Cube], error) {
	return driver.New[Cube](New(), t)
}

func (d *Daily) Name() string     { return Name }
func (d *Daily) TimeZone() string { return "Europe/Berlin" }
func (d *Daily) Refresh() string  { return "0 16 * * *" }

// PrepareURL uses the 90 day history for a given date. The date travels in the
// query so the parser can pick the matching day.
func (d *Daily) PrepareURL(date time.Time) string {
	if date.IsZero() {
		return d.BaseURL + "/eurofxref-daily.xml"
	}
	q := url.Values{}
	q.Set("date", date.Format(dateLayout))
	return d.BaseURL + "/eurofxref-hist-90d.xml?" + q.Encode()
}

func (d *Daily) CreateList(resp *http.Response, dates driver.DateSetter) ([]Cube, error) {
	var env envelope
	if err := xml.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	if len(env.Days) == 0 {
		return nil, fmt.Errorf("no rates in response")
	}

	picked := env.Days[0]
	want := requestedDate(resp)
	if want == "" && len(env.Days) > 1 {
		return nil, fmt.Errorf("history feed of %d days without a requested date", len(env.Days))
	}
	if want != "" {
		found := false
		// newest first; YYYY-MM-DD compares as text
		for _, dd := range env.Days {
			if dd.Time <= want {
				picked, found = dd, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no rates on or before %s", want)
		}
	}

	if err := dates.SetDate(dateLayout, picked.Time); err != nil {
		return nil, err
	}

	out := make([]Cube, 0, len(picked.Rates)+1)
	out = append(out, picked.Rates...)
	out = append(out, Cube{Currency: string(internal.EUR), Rate: "1"})
	return out, nil
}

// CreateProperty prices one unit of the currency in euro.
func (d *Daily) CreateProperty(c Cube) internal.Property {
	code := internal.CurrencyCode(c.Currency)
	r, err := decimal.NewFromString(c.Rate)
	if err != nil || !r.IsPositive() {
		return internal.Property{Code: code, Unit: 1}
	}
	return internal.Property{Code: code, Rate: decimal.NewFromInt(1).Div(r).InexactFloat64(), Unit: 1}
}

func requestedDate(resp *http.Response) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return ""
	}
	return resp.Request.URL.Query().Get("date")
}
