package driver

import (
	"time"
)

// DateSetter is handed to Provider.CreateList so the provider can establish the
// reference date of the rates it parses.
type DateSetter interface {
	SetDate(layout, value string) error
}

// State holds a reference date parsed in a fixed zone.
type State struct {
	loc  *time.Location
	date time.Time
	set  bool
	err  error
}

func NewState(loc *time.Location) *State {
	return &State{loc: loc}
}

// SetDate parses value with the Go layout in the state's zone. A failure keeps
// the previously set date.
func (s *State) SetDate(layout, value string) error {
	t, err := time.ParseInLocation(layout, value, s.loc)
	if err != nil {
		e := &InvalidStateError{Value: value, Layout: layout, Err: err}
		if s.err == nil {
			s.err = e
		}
		return e
	}
	s.date = t.In(s.loc)
	s.set = true
	return nil
}

func (s *State) Date() (time.Time, error) {
	if !s.set {
		return time.Time{}, ErrStateNotInitialized
	}
	return s.date, nil
}

// Err returns the first SetDate failure, if any.
func (s *State) Err() error { return s.err }
