package internal

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar day rendered as YYYY-MM-DD; the location of the wrapped
// time is kept so a reference date stays in its provider's zone.
type Date struct{ time.Time }

const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD day in loc. An empty string yields the zero Date.
func ParseDate(s string, loc *time.Location) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}

	s := strings.TrimSpace(strings.Trim(string(b), "\""))
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.Time.Format(DateLayout))), nil
}
