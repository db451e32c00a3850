package driver

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	ProductID     = "service-exchange"
	PoweredHeader = "X-Powered-By"
)

// ConvertZone re-expresses the instant t in loc, going through UTC.
func ConvertZone(t time.Time, loc *time.Location) time.Time {
	return t.UTC().In(loc)
}

// BuildRequest builds the outbound GET for target. A zero target lets the
// provider pick its default (latest) URL.
func (d *Driver[R]) BuildRequest(ctx context.Context, target time.Time) (*http.Request, error) {
	if !target.IsZero() && target.Location().String() != d.loc.String() {
		target = ConvertZone(target, d.loc)
	}

	u := d.provider.PrepareURL(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set(PoweredHeader, ProductID)
	return req, nil
}
