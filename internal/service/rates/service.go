package rates

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"service-exchange/internal"
	"service-exchange/internal/driver"
	"service-exchange/internal/metrics"
	"service-exchange/internal/models"
	"service-exchange/internal/service/logger"
)

// Fetcher is a configured driver; *driver.Driver satisfies it for any record type.
type Fetcher interface {
	Name() string
	Location() *time.Location
	Clock() *driver.Clock
	Fetch(ctx context.Context, target time.Time) (*driver.Snapshot, error)
}

type Service struct {
	drivers  map[string]Fetcher
	log      *zap.Logger
	metrics  *metrics.Metrics
	fetchLog logger.FetchLogger
	now      func() time.Time
}

// New registers drivers by name. Metrics and fetchLog may be nil.
func New(log *zap.Logger, m *metrics.Metrics, fetchLog logger.FetchLogger, drivers ...Fetcher) *Service {
	s := &Service{
		drivers:  make(map[string]Fetcher, len(drivers)),
		log:      log,
		metrics:  m,
		fetchLog: fetchLog,
		now:      time.Now,
	}
	for _, d := range drivers {
		s.drivers[d.Name()] = d
	}
	return s
}

type Result struct {
	Driver string              `json:"driver"`
	Date   internal.Date       `json:"date"`
	Rates  []internal.Property `json:"rates"`
}

type DriverInfo struct {
	Name        string    `json:"name"`
	TimeZone    string    `json:"time_zone"`
	Refresh     string    `json:"refresh"`
	// RefreshAt is today's publication time in the driver's zone.
	RefreshAt   time.Time `json:"refresh_at"`
	NextRefresh time.Time `json:"next_refresh"`
}

func (s *Service) Drivers() []DriverInfo {
	now := s.now()
	out := make([]DriverInfo, 0, len(s.drivers))
	for _, d := range s.drivers {
		out = append(out, DriverInfo{
			Name:        d.Name(),
			TimeZone:    d.Location().String(),
			Refresh:     d.Clock().Spec(),
			RefreshAt:   d.Clock().Refresh(now),
			NextRefresh: d.Clock().Next(now),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Latest runs one fetch cycle of the named driver. An empty day means the
// latest published rates; empty codes means all of them.
func (s *Service) Latest(ctx context.Context, name, day string, codes []string) (*Result, error) {
	d, err := s.driver(name)
	if err != nil {
		return nil, err
	}

	allowed, err := allowList(codes)
	if err != nil {
		return nil, err
	}

	date, err := internal.ParseDate(day, d.Location())
	if err != nil {
		return nil, models.DriverError(d.Name(), models.CodeInvalidDate, "date must be YYYY-MM-DD")
	}
	if !date.IsZero() && date.After(s.now()) {
		return nil, models.DriverError(d.Name(), models.CodeInvalidDate, "date is in the future")
	}

	snap, err := s.fetch(ctx, d, date.Time)
	if err != nil {
		return nil, err
	}

	props := snap.Collect(allowed)
	s.metrics.RecordProperties(d.Name(), len(props), snap.Date().Unix())

	return &Result{
		Driver: d.Name(),
		Date:   internal.Date{Time: snap.Date()},
		Rates:  props,
	}, nil
}

// PairRate converts through the driver's home currency.
func (s *Service) PairRate(ctx context.Context, name, day, base, quote string) (*internal.PairRate, error) {
	b, err := internal.NewCurrencyCode(base)
	if err != nil {
		return nil, models.BizError(models.CodeUnsupportedCurrency, err.Error())
	}
	q, err := internal.NewCurrencyCode(quote)
	if err != nil {
		return nil, models.BizError(models.CodeUnsupportedCurrency, err.Error())
	}
	if b == q {
		return nil, models.BizError(models.CodeSameCurrency, "base and quote must be different")
	}

	res, err := s.Latest(ctx, name, day, nil)
	if err != nil {
		return nil, err
	}

	out, err := internal.NewRateConverter(res.Rates).GetPairRate(b, q)
	if err != nil {
		if errors.Is(err, internal.ErrRateNotAvailable) {
			return nil, models.DriverError(res.Driver, models.CodeRateNotAvailable, err.Error())
		}
		return nil, err
	}
	out.Date = &res.Date
	return &out, nil
}

func (s *Service) fetch(ctx context.Context, d Fetcher, target time.Time) (*driver.Snapshot, error) {
	cycleID := uuid.NewString()
	log := s.log.With(zap.String("driver", d.Name()), zap.String("cycle_id", cycleID))

	started := time.Now()
	snap, err := d.Fetch(ctx, target)
	elapsed := time.Since(started)

	entry := logger.FetchEntry{CycleID: cycleID, Driver: d.Name(), Duration: elapsed}

	if err != nil {
		kind := ErrorType(err)
		s.metrics.RecordFetch(d.Name(), "error", elapsed.Seconds())
		s.metrics.RecordFetchError(d.Name(), kind)
		log.Warn("fetch failed",
			zap.String("error_type", kind),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)

		entry.Status = kind
		entry.Error = err.Error()
		s.logFetch(ctx, log, entry)
		return nil, fmt.Errorf("fetch %s: %w", d.Name(), err)
	}

	date := internal.Date{Time: snap.Date()}
	s.metrics.RecordFetch(d.Name(), "success", elapsed.Seconds())
	log.Info("rates fetched",
		zap.String("date", date.Format(internal.DateLayout)),
		zap.Int("records", snap.Len()),
		zap.Duration("duration", elapsed),
	)

	entry.Status = "success"
	entry.DateAsOf = &date
	entry.Records = snap.Len()
	s.logFetch(ctx, log, entry)
	return snap, nil
}

func (s *Service) logFetch(ctx context.Context, log *zap.Logger, e logger.FetchEntry) {
	if s.fetchLog == nil {
		return
	}
	if err := s.fetchLog.LogFetch(ctx, e); err != nil {
		log.Error("write fetch log", zap.Error(err))
	}
}

func (s *Service) driver(name string) (Fetcher, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	d, ok := s.drivers[name]
	if !ok {
		known := make([]string, 0, len(s.drivers))
		for k := range s.drivers {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, models.BizError(models.CodeUnknownDriver, fmt.Sprintf("driver %q is not configured, known: %s", name, strings.Join(known, ",")))
	}
	return d, nil
}

func allowList(codes []string) (internal.AllowList, error) {
	var list []internal.CurrencyCode
	for _, c := range codes {
		parsed, err := internal.ParseCurrencyCodes(c)
		if err != nil {
			return nil, models.BizError(models.CodeUnsupportedCurrency, err.Error())
		}
		list = append(list, parsed...)
	}
	return internal.Allow(list...), nil
}

// ErrorType classifies a fetch failure for metrics and the fetch log.
func ErrorType(err error) string {
	var statusErr *driver.StatusError
	switch {
	case errors.As(err, &statusErr):
		return "status"
	case errors.Is(err, driver.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, driver.ErrDateNotSet):
		return "date_not_set"
	case errors.Is(err, driver.ErrParse):
		return "parse"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "transport"
	}
}
