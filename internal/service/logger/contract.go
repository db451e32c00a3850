package logger

import (
	"context"
	"time"

	"service-exchange/internal"
)

// RequestEntry is one served API request. Driver and DateAsOf are empty for
// requests that did not reach a rates source.
type RequestEntry struct {
	Path     string
	Driver   string
	Status   int
	DateAsOf *internal.Date
}

type RequestLogger interface {
	LogRequest(ctx context.Context, e RequestEntry) error
}

type RequestLogStorage interface {
	InsertRequest(ctx context.Context, e RequestEntry) error
}

// FetchEntry is one provider fetch cycle. Rates themselves are never stored.
type FetchEntry struct {
	CycleID  string
	Driver   string
	Status   string
	DateAsOf *internal.Date
	Records  int
	Error    string
	Duration time.Duration
}

type FetchLogger interface {
	LogFetch(ctx context.Context, e FetchEntry) error
}

type FetchLogStorage interface {
	InsertFetch(ctx context.Context, e FetchEntry) error
}
