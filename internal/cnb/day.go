// Package cnb reads the Czech National Bank daily fixing.
package cnb

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"service-exchange/internal"
	"service-exchange/internal/driver"
)

const (
	Name = "cnb"

	defaultURL = "https://www.cnb.cz/cs/financni-trhy/devizovy-trh/kurzy-devizoveho-trhu/kurzy-devizoveho-trhu/denni_kurz.txt"
	dateLayout = "02.01.2006"
)

// homeRow replaces the column header line so the stream also carries CZK.
var homeRow = []string{"Česká republika", "koruna", "1", "CZK", "1"}

// Day is the daily fixing provider. Records are the five pipe separated
// columns: country, currency, amount, code, rate.
type Day struct {
	BaseURL string
}

func New() *Day {
	return &Day{BaseURL: defaultURL}
}

func NewDriver(t driver.Transport) (*driver.Driver[[]string], error) {
	return driver.New[[]string](New(), t)
}

func (d *Day) Name() string     { return Name }
func (d *Day) TimeZone() string { return "Europe/Prague" }
func (d *Day) Refresh() string  { return "45 14 * * *" }

func (d *Day) PrepareURL(date time.Time) string {
	if date.IsZero() {
		return d.BaseURL
	}
	q := url.Values{}
	q.Set("date", date.Format(dateLayout))
	return d.BaseURL + "?" + q.Encode()
}

func (d *Day) CreateList(resp *http.Response, dates driver.DateSetter) ([][]string, error) {
	sc := bufio.NewScanner(resp.Body)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}
	// "15.01.2024 #10"
	first, _, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
	if err := dates.SetDate(dateLayout, first); err != nil {
		return nil, err
	}

	var rows [][]string
	if sc.Scan() {
		rows = append(rows, homeRow)
	}
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cols := strings.Split(line, "|")
		if len(cols) != len(homeRow) {
			continue
		}
		rows = append(rows, cols)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

// CreateProperty prices Unit units of Code in CZK. Unparsable rows get rate 0.
func (d *Day) CreateProperty(row []string) internal.Property {
	code := internal.CurrencyCode(strings.ToUpper(strings.TrimSpace(row[3])))

	unit, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil || unit <= 0 {
		return internal.Property{Code: code, Unit: 1}
	}

	rate, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(row[4]), ",", "."))
	if err != nil || !code.IsValid() {
		return internal.Property{Code: code, Unit: unit}
	}
	return internal.Property{Code: code, Rate: rate.InexactFloat64(), Unit: unit}
}
