package driver

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultRefresh fires at midnight.
const DefaultRefresh = "0 0 * * *"

// Clock resolves a provider's refresh schedule in the provider's zone.
type Clock struct {
	spec     string
	loc      *time.Location
	schedule cron.Schedule
}

// NewClock parses a standard five field cron spec, evaluated in loc.
func NewClock(spec string, loc *time.Location) (*Clock, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultRefresh
	}

	full := spec
	if !strings.HasPrefix(spec, "CRON_TZ=") && !strings.HasPrefix(spec, "TZ=") {
		full = "CRON_TZ=" + loc.String() + " " + spec
	}
	schedule, err := cron.ParseStandard(full)
	if err != nil {
		return nil, fmt.Errorf("parse refresh %q: %w", spec, err)
	}
	return &Clock{spec: spec, loc: loc, schedule: schedule}, nil
}

func (c *Clock) Spec() string             { return c.spec }
func (c *Clock) Location() *time.Location { return c.loc }

// Refresh returns the first scheduled instant on now's calendar day (in the
// clock's zone), or the next one after that day for sparser schedules.
func (c *Clock) Refresh(now time.Time) time.Time {
	now = now.In(c.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
	return c.schedule.Next(midnight.Add(-time.Second)).In(c.loc)
}

// Next returns the first scheduled instant strictly after now.
func (c *Clock) Next(now time.Time) time.Time {
	return c.schedule.Next(now).In(c.loc)
}
