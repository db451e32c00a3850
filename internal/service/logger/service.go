package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type DBRequestLogger struct {
	storage RequestLogStorage
}

func New(storage RequestLogStorage) *DBRequestLogger {
	return &DBRequestLogger{storage: storage}
}

func (l *DBRequestLogger) LogRequest(ctx context.Context, e RequestEntry) error {
	e.Path = strings.Trim(strings.TrimSpace(e.Path), "/")
	if e.Path == "" {
		e.Path = "unknown"
	}
	e.Driver = strings.ToLower(strings.TrimSpace(e.Driver))

	if err := l.storage.InsertRequest(ctx, e); err != nil {
		return fmt.Errorf("log request %s: %w", e.Path, err)
	}
	return nil
}

type DBFetchLogger struct {
	storage FetchLogStorage
}

func NewFetchLogger(storage FetchLogStorage) *DBFetchLogger {
	return &DBFetchLogger{storage: storage}
}

func (l *DBFetchLogger) LogFetch(ctx context.Context, e FetchEntry) error {
	e.Driver = strings.TrimSpace(e.Driver)
	if e.Driver == "" {
		return errors.New("fetch entry without driver")
	}
	if e.Status == "" {
		e.Status = "unknown"
	}
	if r := []rune(e.Error); len(r) > 512 {
		e.Error = string(r[:512])
	}

	if err := l.storage.InsertFetch(ctx, e); err != nil {
		return fmt.Errorf("log fetch %s: %w", e.CycleID, err)
	}
	return nil
}
