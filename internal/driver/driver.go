package driver

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"sync"
	"time"

	"service-exchange/internal"
)

const maxBodyBytes = 1 << 20

// Provider is the per-source part of a driver. R is the source record type the
// provider's parser produces.
type Provider[R any] interface {
	Name() string
	// TimeZone is an IANA zone name; dates are interpreted and reported in it.
	TimeZone() string
	// Refresh is a five field cron spec of when new rates are published.
	Refresh() string
	// PrepareURL returns the feed URL for date, or the latest feed for the zero time.
	PrepareURL(date time.Time) string
	// CreateList parses a 2xx response into records in provider order and must
	// set the reference date through dates.
	CreateList(resp *http.Response, dates DateSetter) ([]R, error)
	CreateProperty(record R) internal.Property
}

type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// Driver runs the fetch-parse pipeline of one provider and remembers the last
// successful snapshot.
type Driver[R any] struct {
	provider  Provider[R]
	transport Transport
	loc       *time.Location
	clock     *Clock

	mu   sync.RWMutex
	last *Snapshot
}

// New wires p to t; a nil transport uses a plain http.Client.
func New[R any](p Provider[R], t Transport) (*Driver[R], error) {
	tz := p.TimeZone()
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load location %s: %w", tz, err)
	}

	clock, err := NewClock(p.Refresh(), loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}

	if t == nil {
		t = &http.Client{Timeout: 20 * time.Second}
	}

	return &Driver[R]{provider: p, transport: t, loc: loc, clock: clock}, nil
}

func (d *Driver[R]) Name() string             { return d.provider.Name() }
func (d *Driver[R]) Location() *time.Location { return d.loc }
func (d *Driver[R]) Clock() *Clock            { return d.clock }

// Fetch runs one fetch cycle for target (zero means latest). On success the
// snapshot becomes the driver's state; on failure the previous state is kept.
func (d *Driver[R]) Fetch(ctx context.Context, target time.Time) (*Snapshot, error) {
	req, err := d.BuildRequest(ctx, target)
	if err != nil {
		return nil, err
	}

	resp, err := d.transport.Do(req)
	if err != nil {
		return nil, err
	}
	body := resp.Body
	defer func() { _ = body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(body, 4<<10))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	capped := &cappedBody{r: io.LimitReader(body, maxBodyBytes+1), max: maxBodyBytes}
	resp.Body = io.NopCloser(capped)

	state := NewState(d.loc)
	records, err := d.provider.CreateList(resp, state)
	if capped.over {
		return nil, fmt.Errorf("%s: %w: %w", d.provider.Name(), ErrParse, ErrResponseTooLarge)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", d.provider.Name(), ErrParse, err)
	}
	if err := state.Err(); err != nil {
		return nil, err
	}
	date, err := state.Date()
	if err != nil {
		return nil, ErrDateNotSet
	}

	snap := newSnapshot(date, records, d.provider.CreateProperty)

	d.mu.Lock()
	d.last = snap
	d.mu.Unlock()

	return snap, nil
}

func (d *Driver[R]) Snapshot() (*Snapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.last == nil {
		return nil, ErrStateNotInitialized
	}
	return d.last, nil
}

// Date is the reference date of the last successful fetch.
func (d *Driver[R]) Date() (time.Time, error) {
	s, err := d.Snapshot()
	if err != nil {
		return time.Time{}, err
	}
	return s.Date(), nil
}

// Properties streams the last successful fetch.
func (d *Driver[R]) Properties(allowed internal.AllowList) (iter.Seq[internal.Property], error) {
	s, err := d.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.Properties(allowed), nil
}

// cappedBody passes through at most max bytes and fails the read once the
// body goes past that.
type cappedBody struct {
	r    io.Reader
	max  int64
	read int64
	over bool
}

func (b *cappedBody) Read(p []byte) (int, error) {
	if b.over {
		return 0, ErrResponseTooLarge
	}
	n, err := b.r.Read(p)
	b.read += int64(n)
	if b.read > b.max {
		b.over = true
		n -= int(b.read - b.max)
		return n, ErrResponseTooLarge
	}
	return n, err
}
