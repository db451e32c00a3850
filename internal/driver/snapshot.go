package driver

import (
	"iter"
	"slices"
	"time"

	"service-exchange/internal"
)

// Snapshot is the result of one fetch cycle: the reference date and the parsed
// source records. It is immutable; properties are built on every pass.
type Snapshot struct {
	date  time.Time
	count int
	build func(i int) internal.Property
}

func newSnapshot[R any](date time.Time, records []R, create func(R) internal.Property) *Snapshot {
	return &Snapshot{
		date:  date,
		count: len(records),
		build: func(i int) internal.Property { return create(records[i]) },
	}
}

func (s *Snapshot) Date() time.Time { return s.date }

// Len is the number of source records, before any filtering.
func (s *Snapshot) Len() int { return s.count }

// Properties lazily yields the properties in provider order, dropping zero
// rates and codes missing from a non-empty allow list. Each range over the
// returned sequence starts a new pass.
func (s *Snapshot) Properties(allowed internal.AllowList) iter.Seq[internal.Property] {
	return func(yield func(internal.Property) bool) {
		for i := 0; i < s.count; i++ {
			p := s.build(i)
			if p.Rate == 0 || !allowed.Allows(p.Code) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

func (s *Snapshot) Collect(allowed internal.AllowList) []internal.Property {
	return slices.Collect(s.Properties(allowed))
}
